package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config keys recognized in the config file and CURATOR_* environment.
const (
	cfgKeyAPIURL    = "api_url"
	cfgKeyToken     = "token"
	cfgKeyCacheTTL  = "cache_ttl"
	cfgKeyCachePath = "cache_path"
	cfgKeyVerbose   = "verbose"
)

// loadConfig reads configuration from an explicit file, the working
// directory, or ~/.curator/. A missing config file is fine; environment
// variables and defaults still apply.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(cfgKeyAPIURL, "http://127.0.0.1:8090")
	v.SetDefault(cfgKeyCacheTTL, "5m")
	v.SetDefault(cfgKeyVerbose, false)

	v.SetEnvPrefix("CURATOR")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".curator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".curator"))
		}
	}

	// A missing file from the search path is fine; an explicit --config path
	// that fails to read is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return v, nil
}
