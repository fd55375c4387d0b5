package provider

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetKey_KnownKey(t *testing.T) {
	reg := Registry{"sidc_ssn_daily": "https://example.org/sn_d.csv"}

	var id ID
	require.NoError(t, id.SetKey(reg, "sidc_ssn_daily"))
	require.Equal(t, "sidc_ssn_daily", id.Key)
	require.Equal(t, "https://example.org/sn_d.csv", id.URL)
}

func TestSetKey_UnknownKeyRejectedAtSelection(t *testing.T) {
	reg := Registry{"sidc_ssn_daily": "https://example.org/sn_d.csv"}

	var id ID
	err := id.SetKey(reg, "mystery_index")
	require.ErrorIs(t, err, ErrUnsupportedKey)
	require.Empty(t, id.Key, "a failed lookup must not mutate the ID")
	require.Empty(t, id.URL)
}

func TestDefaultRegistry_KeysSorted(t *testing.T) {
	keys := DefaultRegistry().Keys()
	require.Contains(t, keys, "sidc_ssn_daily")
	require.Contains(t, keys, "noaa_flux")
	require.IsIncreasing(t, keys)
}
