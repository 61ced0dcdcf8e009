package config

import (
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/at-ishikawa/eventcal/internal/cache"
	"github.com/at-ishikawa/eventcal/internal/source"
)

type Config struct {
	Source SourceConfig `mapstructure:"source"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Server ServerConfig `mapstructure:"server"`
}

type SourceConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Retry   RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	Attempts uint            `mapstructure:"attempts" validate:"min=1"`
	Delays   []time.Duration `mapstructure:"delays" validate:"min=1"`
}

// Policy converts the retry settings for the fetcher.
func (c RetryConfig) Policy() source.RetryPolicy {
	return source.RetryPolicy{
		Attempts: c.Attempts,
		Delays:   c.Delays,
	}
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/eventcal")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	defaultPolicy := source.DefaultRetryPolicy()
	v.SetDefault("source.url", source.DefaultURL)
	v.SetDefault("source.timeout", source.DefaultRequestTimeout)
	v.SetDefault("source.retry.attempts", defaultPolicy.Attempts)
	v.SetDefault("source.retry.delays", defaultPolicy.Delays)
	v.SetDefault("cache.ttl", cache.DefaultTTL)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	if err := v.BindEnv("source.url", "EVENTCAL_SOURCE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind EVENTCAL_SOURCE_URL environment variable: %w", err)
	}
	if err := v.BindEnv("server.port", "EVENTCAL_SERVER_PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind EVENTCAL_SERVER_PORT environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
