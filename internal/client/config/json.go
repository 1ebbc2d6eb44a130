package config

import (
	"encoding/json"
	"os"

	"github.com/mkaranov/brospace/internal/flagx"
	"github.com/mkaranov/brospace/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero values so partial files only
// override what they mention.
type jsonConfig struct {
	ServerEndpointURL *string         `json:"server_endpoint_url"`
	DatabasePath      *string         `json:"database_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
}

// parseJSON overlays cfg with values from the JSON file named by the
// -c/-config flag. No flag, no overlay.
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

	if jc.ServerEndpointURL != nil {
		cfg.ServerEndpointURL = *jc.ServerEndpointURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
