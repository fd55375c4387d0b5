// Package provider maps symbolic activity-index keys to the upstream
// data sources that serve them. Resolution is pure lookup; all network
// I/O stays with the caller.
package provider

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedKey is returned when a symbolic key has no registered source.
var ErrUnsupportedKey = errors.New("unsupported activity index key")

// Registry maps symbolic keys to provider URL templates.
type Registry map[string]string

// DefaultRegistry lists the upstream sources for the supported indices.
func DefaultRegistry() Registry {
	return Registry{
		"sidc_ssn_daily":   "https://www.sidc.be/SILSO/DATA/SN_d_tot_V2.0.csv",
		"sidc_ssn_monthly": "https://www.sidc.be/SILSO/DATA/SN_m_tot_V2.0.csv",
		"noaa_flux":        "https://services.swpc.noaa.gov/json/solar-cycle/observed-solar-cycle-indices.json",
		"noaa_predicted":   "https://services.swpc.noaa.gov/json/solar-cycle/predicted-solar-cycle.json",
		"gfz_kp":           "https://kp.gfz-potsdam.de/app/files/Kp_ap_Ap_SN_F107_since_1932.txt",
	}
}

// ID holds a resolved key and its source URL.
// The zero value is unresolved; call SetKey before use.
type ID struct {
	Key string
	URL string
}

// SetKey resolves key against the registry and stores the result.
// Unknown keys return ErrUnsupportedKey; the ID is left unchanged.
func (id *ID) SetKey(reg Registry, key string) error {
	url, ok := reg[key]
	if !ok {
		return fmt.Errorf("%w: %q (known: %v)", ErrUnsupportedKey, key, reg.Keys())
	}
	id.Key = key
	id.URL = url
	return nil
}

// Keys returns the registered keys in sorted order.
func (r Registry) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
