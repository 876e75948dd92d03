package config

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

// DotEnvTryLoad forcefully overrides ENV variables through the file at absolutePathToEnvFile.
// A missing file is not an error. setEnvFn defaults to os.Setenv.
func DotEnvTryLoad(absolutePathToEnvFile string, setEnvFn func(key string, value string) error) {
	if setEnvFn == nil {
		setEnvFn = os.Setenv
	}

	f, err := os.Open(filepath.Clean(absolutePathToEnvFile))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("envFile", absolutePathToEnvFile).Msg("Failed to open .env file")
		}
		return
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		log.Error().Err(err).Str("envFile", absolutePathToEnvFile).Msg("Failed to parse .env file")
		return
	}

	for key, value := range env {
		if err := setEnvFn(key, value); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to set env variable from .env file")
		}
	}

	log.Warn().Str("envFile", absolutePathToEnvFile).Int("count", len(env)).Msg("Applied .env file overrides")
}

func testing() bool {
	return flag.Lookup("test.v") != nil
}
