// Package config loads the ticker settings from a JSON file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultPath is where the settings file is looked up.
const DefaultPath = "ticker_settings.json"

const (
	DefaultDisplayBrightness = 7
	DefaultDisplayModules    = 4
	DefaultInterCharSpacing  = 1
	DefaultScrollPeriod      = 50 // milliseconds
)

// Config holds all configuration for the ticker.
type Config struct {
	APIKeyID          string `mapstructure:"apcaApiKeyId" validate:"nonblank"`
	APISecretKey      string `mapstructure:"apcaApiSecretKey" validate:"nonblank"`
	Symbols           string `mapstructure:"symbols" validate:"symbols"`
	SourceFeed        string `mapstructure:"sourceFeed" validate:"oneof=sip iex delayed_sip boats overnight otc"`
	RequestPeriod     int    `mapstructure:"requestPeriod" validate:"min=1"` // seconds
	ScrollPeriod      int    `mapstructure:"scrollPeriod" validate:"min=1"`  // milliseconds
	DisplayBrightness int    `mapstructure:"displayBrightness" validate:"min=1,max=15"`
	DisplayModules    int    `mapstructure:"displayModules" validate:"min=1"`
	InterCharSpacing  int    `mapstructure:"interCharSpacing" validate:"min=0"`
	BaseURL           string `mapstructure:"baseURL" validate:"omitempty,url"`
	GRPCAddr          string `mapstructure:"grpcAddr"`
	HTTPAddr          string `mapstructure:"httpAddr"`
	RedisAddr         string `mapstructure:"redisAddr"`
	Env               string `mapstructure:"env"` // "dev" or "prod"
}

// envBindings maps settings keys to their environment variables.
var envBindings = map[string]string{
	"apcaApiKeyId":      "TICKER_API_KEY_ID",
	"apcaApiSecretKey":  "TICKER_API_SECRET_KEY",
	"symbols":           "TICKER_SYMBOLS",
	"sourceFeed":        "TICKER_SOURCE_FEED",
	"requestPeriod":     "TICKER_REQUEST_PERIOD",
	"scrollPeriod":      "TICKER_SCROLL_PERIOD",
	"displayBrightness": "TICKER_DISPLAY_BRIGHTNESS",
	"displayModules":    "TICKER_DISPLAY_MODULES",
	"interCharSpacing":  "TICKER_INTER_CHAR_SPACING",
	"baseURL":           "TICKER_BASE_URL",
	"grpcAddr":          "TICKER_GRPC_ADDR",
	"httpAddr":          "TICKER_HTTP_ADDR",
	"redisAddr":         "TICKER_REDIS_ADDR",
	"env":               "TICKER_ENV",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("apcaApiKeyId", "")
	v.SetDefault("apcaApiSecretKey", "")
	v.SetDefault("symbols", "AAPL,MSFT,GOOG")
	v.SetDefault("sourceFeed", "iex")
	v.SetDefault("requestPeriod", 60)
	v.SetDefault("scrollPeriod", DefaultScrollPeriod)
	v.SetDefault("displayBrightness", DefaultDisplayBrightness)
	v.SetDefault("displayModules", DefaultDisplayModules)
	v.SetDefault("interCharSpacing", DefaultInterCharSpacing)
	v.SetDefault("baseURL", "https://data.alpaca.markets")
	v.SetDefault("grpcAddr", ":9090")
	v.SetDefault("httpAddr", ":8080")
	v.SetDefault("redisAddr", "")
	v.SetDefault("env", "prod")
}

// Load reads the settings at path. A missing file is reported with an error
// matching fs.ErrNotExist so the caller can write defaults; the returned
// Config still carries defaults and environment overrides in that case.
func Load(path string, logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, relying on environment")
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			logger.Warn("could not bind env var", zap.String("key", key), zap.Error(err))
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	readErr := v.ReadInConfig()
	if readErr != nil && !errors.Is(readErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("read settings %s: %w", path, readErr)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if readErr != nil {
		return &cfg, fmt.Errorf("read settings %s: %w", path, readErr)
	}
	return &cfg, nil
}

// WriteDefaults writes a settings file with default values to path. It
// refuses to overwrite an existing file.
func WriteDefaults(path string) error {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("json")
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("write default settings: %w", err)
	}
	return nil
}

func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestPeriod) * time.Second
}

func (c *Config) ScrollInterval() time.Duration {
	return time.Duration(c.ScrollPeriod) * time.Millisecond
}

// Panel returns the display settings, falling back to the default for each
// value that is out of range. Use it to drive the panel while the rest of the
// settings are still invalid.
func (c *Config) Panel() (modules, brightness, spacing int) {
	modules, brightness, spacing = c.DisplayModules, c.DisplayBrightness, c.InterCharSpacing
	if modules < 1 {
		modules = DefaultDisplayModules
	}
	if brightness < 1 || brightness > 15 {
		brightness = DefaultDisplayBrightness
	}
	if spacing < 0 {
		spacing = DefaultInterCharSpacing
	}
	return modules, brightness, spacing
}

// Watch calls onChange with the reloaded and validated settings every time
// the file at path is written. The file must exist when Watch is called.
func Watch(path string, logger *zap.Logger, onChange func(*Config, error)) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("settings file changed", zap.String("file", e.Name), zap.Stringer("op", e.Op))
		cfg, err := Load(path, logger)
		if err == nil {
			err = cfg.Validate()
		}
		onChange(cfg, err)
	})
	v.WatchConfig()
}
