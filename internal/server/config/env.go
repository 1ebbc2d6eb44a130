package config

import env "github.com/caarlos0/env/v11"

// parseEnv overlays cfg with BROSPACE_-prefixed environment variables,
// e.g. BROSPACE_DATABASE_DSN, BROSPACE_ACCESS_TOKEN_VALIDITY=15m.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "BROSPACE_"}); err != nil {
		panic(err)
	}
}
