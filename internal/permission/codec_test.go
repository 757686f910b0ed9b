package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTrip(t *testing.T) {
	rec := ResolveTemplate(RoleStationManager)
	raw, err := Encode(rec)
	require.NoError(t, err)

	res := Decode(raw, RoleCashier)
	assert.Equal(t, DecodeOK, res.Status)
	assert.True(t, res.Record.Equal(rec))
}

func TestDecodeEmptyFallsBackToRoleTemplate(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		res := Decode(raw, RoleEmployee)
		assert.Equal(t, DecodeFallback, res.Status)
		assert.True(t, res.Record.Equal(ResolveTemplate(RoleEmployee)))
	}
}

func TestDecodeMalformedFallsBackToRoleTemplate(t *testing.T) {
	res := Decode("not valid json{", RoleCashier)
	assert.Equal(t, DecodeMalformed, res.Status)
	assert.Equal(t, "not valid json{", res.Raw)
	assert.True(t, res.Record.Equal(ResolveTemplate(RoleCashier)))

	// JSON null is a blob with no pages in it — treat it like corruption.
	res = Decode("null", RoleCashier)
	assert.Equal(t, DecodeMalformed, res.Status)
}

func TestDecodeUnknownKeysIgnoredMissingKeysFalse(t *testing.T) {
	res := Decode(`{"dashboard":{"view":true,"hover":true}}`, RoleAdministrator)
	require.Equal(t, DecodeOK, res.Status)

	assert.True(t, res.Record.Allows(PageDashboard, CapView))
	assert.False(t, res.Record.Allows(PageDashboard, CapEdit))
	// Pages absent from the blob read as all-false rather than erroring.
	assert.Equal(t, PagePermission{}, res.Record.Page(PageSettings))
}
