package config

import (
	"encoding/json"
	"os"

	"github.com/mkaranov/brospace/internal/flagx"
	"github.com/mkaranov/brospace/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify durations either as strings like "15m"
// or as integer nanoseconds. Pointer fields distinguish "absent" from
// zero values so partial files only override what they mention.
type jsonConfig struct {
	EndpointAddr          *string         `json:"endpoint_addr"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	AccessTokenValidity   *timex.Duration `json:"access_token_validity"`
	RefreshTokenValidity  *timex.Duration `json:"refresh_token_validity"`
	ProfileProvisionDelay *timex.Duration `json:"profile_provision_delay"`
	AllowedOrigins        []string        `json:"allowed_origins"`
}

// parseJSON overlays cfg with values from the JSON file named by the
// -c/-config flag. No flag, no overlay. Read or decode errors panic, as a
// misnamed config file should not silently fall back to defaults.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	jc := &jsonConfig{}
	if err := json.Unmarshal(data, jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddr != nil {
		cfg.EndpointAddr = *jc.EndpointAddr
	}
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.SecretKey != nil {
		cfg.SecretKey = *jc.SecretKey
	}
	if jc.AccessTokenValidity != nil {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidity.Duration
	}
	if jc.RefreshTokenValidity != nil {
		cfg.RefreshTokenValidityDuration = jc.RefreshTokenValidity.Duration
	}
	if jc.ProfileProvisionDelay != nil {
		cfg.ProfileProvisionDelay = jc.ProfileProvisionDelay.Duration
	}
	if jc.AllowedOrigins != nil {
		cfg.AllowedOrigins = jc.AllowedOrigins
	}
}
