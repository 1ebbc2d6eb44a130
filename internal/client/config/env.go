package config

import env "github.com/caarlos0/env/v11"

// parseEnv overlays cfg with BROSPACE_-prefixed environment variables,
// e.g. BROSPACE_SERVER_ENDPOINT_URL, BROSPACE_REQUEST_TIMEOUT=30s.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "BROSPACE_"}); err != nil {
		panic(err)
	}
}
