package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/agexparts/freight-service/internal/domain"
)

var validate = validator.New()

// LoadDefaults overlays the YAML file at path, if any, on the built-in
// defaults. A non-empty account replaces the payment account.
func LoadDefaults(path, account string) (domain.Defaults, error) {
	defaults := domain.DefaultDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Defaults{}, fmt.Errorf("failed to read defaults file: %w", err)
		}
		if err := yaml.Unmarshal(data, &defaults); err != nil {
			return domain.Defaults{}, fmt.Errorf("failed to parse defaults file %s: %w", path, err)
		}
	}

	if account != "" {
		defaults.Payment.Account = account
	}

	if err := validate.Struct(defaults); err != nil {
		return domain.Defaults{}, fmt.Errorf("invalid quote defaults: %w", err)
	}
	return defaults, nil
}
