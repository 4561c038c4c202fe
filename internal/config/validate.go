package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxSymbols is the largest symbol list the ticker accepts.
const MaxSymbols = 32

var (
	ErrInvalidAPIKeyID          = errors.New("invalid apcaApiKeyId")
	ErrInvalidAPISecretKey      = errors.New("invalid apcaApiSecretKey")
	ErrInvalidSymbols           = errors.New("invalid symbols")
	ErrInvalidSourceFeed        = errors.New("invalid sourceFeed")
	ErrInvalidRequestPeriod     = errors.New("invalid requestPeriod")
	ErrInvalidScrollPeriod      = errors.New("invalid scrollPeriod")
	ErrInvalidDisplayBrightness = errors.New("invalid displayBrightness")
	ErrInvalidDisplayModules    = errors.New("invalid displayModules")
	ErrInvalidBaseURL           = errors.New("invalid baseURL")
)

// fieldErrors maps each validated Config field to the error reported for it.
var fieldErrors = map[string]error{
	"APIKeyID":          ErrInvalidAPIKeyID,
	"APISecretKey":      ErrInvalidAPISecretKey,
	"Symbols":           ErrInvalidSymbols,
	"SourceFeed":        ErrInvalidSourceFeed,
	"RequestPeriod":     ErrInvalidRequestPeriod,
	"ScrollPeriod":      ErrInvalidScrollPeriod,
	"DisplayBrightness": ErrInvalidDisplayBrightness,
	"DisplayModules":    ErrInvalidDisplayModules,
	"InterCharSpacing":  ErrInvalidDisplayModules,
	"BaseURL":           ErrInvalidBaseURL,
}

var validate, validateSetupErr = newValidator()

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		return nil, fmt.Errorf("register nonblank: %w", err)
	}
	if err := v.RegisterValidation("symbols", func(fl validator.FieldLevel) bool {
		return validSymbols(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register symbols: %w", err)
	}
	return v, nil
}

// Validate returns the error for the first invalid setting, in field order,
// or nil.
func (c *Config) Validate() error {
	if validateSetupErr != nil {
		return fmt.Errorf("validator setup: %w", validateSetupErr)
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate settings: %w", err)
	}
	if sentinel, ok := fieldErrors[ve[0].StructField()]; ok {
		return sentinel
	}
	return fmt.Errorf("validate settings: %w", err)
}

func validSymbols(csv string) bool {
	parts := strings.Split(csv, ",")
	if len(parts) > MaxSymbols {
		return false
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t") {
			return false
		}
	}
	return true
}

// Hint is the message scrolled on the display when err stops the ticker
// from starting.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAPIKeyID):
		return `Invalid Alpaca Markets API Key ID, modify "apcaApiKeyId" in ticker_settings.json to finish.`
	case errors.Is(err, ErrInvalidAPISecretKey):
		return `Invalid Alpaca Markets API Secret Key, modify "apcaApiSecretKey" in ticker_settings.json to finish.`
	case errors.Is(err, ErrInvalidSymbols):
		return `Invalid symbols, modify "symbols" (must be comma separated list of 1 to 32 stock symbols) in ticker_settings.json to finish.`
	case errors.Is(err, ErrInvalidSourceFeed):
		return `Invalid source feed, modify "sourceFeed" (must be "sip", "iex", "delayed_sip", "boats", "overnight", or "otc") in ticker_settings.json to finish.`
	case errors.Is(err, ErrInvalidRequestPeriod):
		return `Invalid request period, modify "requestPeriod" (must be a natural number) in ticker_settings.json to finish.`
	case errors.Is(err, ErrInvalidScrollPeriod):
		return `Invalid scroll period, modify "scrollPeriod" (must be a natural number) in ticker_settings.json to finish.`
	case errors.Is(err, ErrInvalidDisplayBrightness):
		return `Invalid display brightness, modify "displayBrightness" (must be a natural number between 1 and 15 inclusive) in ticker_settings.json to finish.`
	case errors.Is(err, ErrInvalidDisplayModules):
		return `Invalid display layout, modify "displayModules" (at least 1) and "interCharSpacing" (not negative) in ticker_settings.json to finish.`
	case errors.Is(err, ErrInvalidBaseURL):
		return `Invalid base URL, modify "baseURL" in ticker_settings.json to finish.`
	case errors.Is(err, fs.ErrNotExist):
		return "Modify ticker_settings.json to finish."
	default:
		return "Failed to load ticker_settings.json, fix it to finish."
	}
}
