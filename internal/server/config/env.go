package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name in the Config env tags.
const EnvPrefix = "GOPHAUTH_"

// loadEnvFile loads the file passed with -env into the process environment.
// Variables that are already set are not overridden. Panics if the file
// cannot be read.
func loadEnvFile() {
	path := flagx.EnvFileFlag()
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

// parseEnv overlays GOPHAUTH_* environment variables. Unset variables leave
// the current values alone.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
