package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

/* Process-level settings from the environment or an optional .env file.
 * Run-level settings (users, record counts, validation rules) live in the
 * suite file; see suite.go.
 */

type Config struct {
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	BonzoAPIBase string `mapstructure:"BONZO_API_BASE"`
	BonzoAPIKey  string `mapstructure:"BONZO_API_KEY"`
	SchemasPath  string `mapstructure:"SCHEMAS_PATH"`
	MockhookPort string `mapstructure:"MOCKHOOK_PORT"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("BONZO_API_BASE", "https://app.getbonzo.com")
	viper.SetDefault("BONZO_API_KEY", "")
	viper.SetDefault("SCHEMAS_PATH", "schemas")
	viper.SetDefault("MOCKHOOK_PORT", "8080")

	if err := viper.ReadInConfig(); err != nil {
		// The .env file is optional; environment variables alone are fine.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}
