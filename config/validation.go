package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks structural constraints via validator tags plus the
// cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if err := validateToken(&cfg.Token); err != nil {
		return fmt.Errorf("token config: %w", err)
	}

	return nil
}

// validateToken rejects half-configured credentials: either both key and
// secret are present, or neither. Absent credentials only disable issuance.
func validateToken(cfg *TokenConfig) error {
	if (cfg.APIKey == "") != (cfg.APISecret == "") {
		return fmt.Errorf("apikey and apisecret must be set together")
	}
	return nil
}
