package app

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/code-payments/counter-program/pkg/metrics"
)

const defaultShutdownTimeout = 5 * time.Second

// Environment is the process wide setup produced by Load.
type Environment struct {
	Config          BaseConfig
	MetricsProvider *newrelic.Application
}

// Context returns a context carrying the metrics provider, if any.
func (e *Environment) Context(ctx context.Context) context.Context {
	if e.MetricsProvider == nil {
		return ctx
	}
	return metrics.NewContext(ctx, e.MetricsProvider)
}

// Shutdown flushes any buffered metrics.
func (e *Environment) Shutdown() {
	if e.MetricsProvider != nil {
		e.MetricsProvider.Shutdown(defaultShutdownTimeout)
	}
}

// Load reads the configuration at configPath, if it exists, along with the
// environment, and configures logging and metrics accordingly.
func Load(configPath string) (*Environment, error) {
	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we do it ourselves.
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err == nil {
			viper.SetConfigFile(configPath)
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to check if config exists")
		}
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return nil, errors.Wrap(err, "failed to load config")
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	var metricsProvider *newrelic.Application
	if len(config.NewRelicLicenseKey) > 0 {
		if len(config.AppName) == 0 {
			return nil, errors.New("must specify an application name when metrics are enabled")
		}

		nr, err := newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			return nil, errors.Wrap(err, "error connecting to new relic")
		}

		metricsProvider = nr
	}

	configureLogger(config, metricsProvider)

	return &Environment{
		Config:          config,
		MetricsProvider: metricsProvider,
	}, nil
}

func configureLogger(config BaseConfig, metricsProvider *newrelic.Application) {
	var formatter logrus.Formatter = &logrus.TextFormatter{}
	if strings.ToLower(config.LogFormat) == "json" {
		formatter = &logrus.JSONFormatter{}
	}

	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewLogFormatter(metricsProvider, formatter))
	} else {
		logrus.SetFormatter(formatter)
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}
