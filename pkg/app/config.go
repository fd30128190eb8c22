package app

import (
	"github.com/spf13/viper"
)

// Config is the application specific configuration, decoded by the
// application itself with viper.Unmarshal or mapstructure.
type Config map[string]interface{}

// BaseConfig contains the configuration shared by every binary.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is either "text" or "json"
	LogFormat string `mapstructure:"log_format"`

	AppName string `mapstructure:"app_name"`

	// Metrics configuration across many providers
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	// Arbitrary configuration that the binary can define / implement.
	AppConfig Config `mapstructure:"app"`
}

var defaultConfig = BaseConfig{
	LogLevel:  "warn",
	LogFormat: "text",
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("log_format", "LOG_FORMAT")

	_ = viper.BindEnv("app_name", "APP_NAME")

	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
}
