package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config carries everything the server needs from the environment.
type Config struct {
	Port        string
	GinMode     string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins []string

	// Validation knobs for the user module.
	ProtectedAdminEmail string
	MaxAdminsPerStation int

	// Seed account created at startup when no user with this email exists.
	AdminSeedEmail    string
	AdminSeedPassword string

	// Email automation + tank monitoring.
	AlertRecipient string
	LowTankPercent int
}

// Load reads configs/.env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		logrus.Info("no configs/.env file found, using environment")
	}

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "stationops")
	dbSslMode := getEnv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		DatabaseDSN: dsn,
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		CORSOrigins: []string{
			getEnv("FRONTEND_URL", "http://localhost:5173"),
			"http://127.0.0.1:5173",
		},

		ProtectedAdminEmail: getEnv("PROTECTED_ADMIN_EMAIL", "admin@stationops.local"),
		MaxAdminsPerStation: getEnvInt("MAX_ADMINS_PER_STATION", 2),

		AdminSeedEmail:    getEnv("ADMIN_SEED_EMAIL", "admin@stationops.local"),
		AdminSeedPassword: getEnv("ADMIN_SEED_PASSWORD", "ChangeMe123!"),

		AlertRecipient: getEnv("ALERT_RECIPIENT", "operations@stationops.local"),
		LowTankPercent: getEnvInt("LOW_TANK_PERCENT", 20),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid integer %q, using default %d", raw, fallback)
		return fallback
	}
	return value
}
