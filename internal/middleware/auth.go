package middleware

import (
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"stationops/internal/model"
	"stationops/internal/permission"
	"stationops/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var (
	jwtSecret []byte
	permDB    *gorm.DB
)

// Init wires the middleware package to the database and signing secret.
// Must be called once during startup before any guarded route is served.
func Init(db *gorm.DB, secret []byte) {
	permDB = db
	jwtSecret = secret
}

// JWTSecret exposes the signing secret for the websocket upgrade path.
func JWTSecret() []byte {
	return jwtSecret
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// authenticate parses the JWT from the access_token cookie or the
// Authorization header and stores userID/userRole/userStation on the
// context. Aborts the request itself on failure.
func authenticate(c *gin.Context) (jwt.MapClaims, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return nil, false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return nil, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return nil, false
	}

	c.Set("userID", claims["sub"])
	if role, ok := claims["role"].(string); ok {
		c.Set("userRole", role)
	}
	if station, ok := claims["station"].(string); ok {
		c.Set("userStation", station)
	}

	return claims, true
}

// RequireAuth validates the JWT without any further check. Used for routes
// every signed-in user may call (e.g. /auth/me).
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireRole validates the JWT and checks the user's role against the
// allowed list. Coarse guard; most routes use RequirePermission instead.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c)
		if !ok {
			return
		}

		userRole, ok := claims["role"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

type permCacheEntry struct {
	record    permission.Record
	expiresAt time.Time
}

var (
	permCache    sync.Map // userID -> permCacheEntry
	permCacheTTL = 5 * time.Minute
)

// RequirePermission validates the JWT and checks the caller's effective
// permission record for one page capability. The record comes from the
// user's stored matrix when present, otherwise from the role template,
// cached per user with a short TTL.
func RequirePermission(page string, capability permission.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c)
		if !ok {
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Subject not found in token"))
			return
		}

		rec, err := getPermissionRecord(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
			return
		}

		if !rec.Allows(page, capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden,
				"Access denied: missing permission '"+page+"."+string(capability)+"'"))
			return
		}

		c.Next()
	}
}

func getPermissionRecord(userID string) (permission.Record, error) {
	if entry, ok := permCache.Load(userID); ok {
		cached := entry.(permCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.record, nil
		}
	}

	var user model.User
	if err := permDB.Select("id", "role", "is_active", "detailed_permissions").
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if !user.IsActive {
		// Deactivated accounts keep their token until expiry; grant nothing.
		return permission.Record{}, nil
	}

	rec := permission.Decode(user.DetailedPermissions, user.Role).Record

	permCache.Store(userID, permCacheEntry{
		record:    rec,
		expiresAt: time.Now().Add(permCacheTTL),
	})

	return rec, nil
}

// GetPermissionRecord exposes the cached record lookup for handlers
// (the /auth/me payload includes the caller's effective matrix).
func GetPermissionRecord(userID string) (permission.Record, error) {
	return getPermissionRecord(userID)
}

// ClearPermissionCache drops the cached record for one user, or for every
// user when id is empty. Called after a permission save so the new matrix
// takes effect without waiting out the TTL.
func ClearPermissionCache(userID string) {
	if userID == "" {
		permCache.Range(func(key, _ interface{}) bool {
			permCache.Delete(key)
			return true
		})
		return
	}
	permCache.Delete(userID)
}
