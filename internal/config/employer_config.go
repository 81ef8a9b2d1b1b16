package config

import (
	"fmt"

	"github.com/medjoblist/pipeline/internal/models"
)

type EmployerConfig struct {
	Slug        string `mapstructure:"slug"`
	Name        string `mapstructure:"name"`
	DisplayName string `mapstructure:"display_name"`
	Adapter     string `mapstructure:"adapter"`
	BaseURL     string `mapstructure:"base_url"`
}

func (config EmployerConfig) validate() error {

	if config.Slug == "" || config.BaseURL == "" {
		return fmt.Errorf("employer needs both slug and base_url")
	}

	switch models.AdapterKind(config.Adapter) {
	case models.AdapterParamPage, models.AdapterCursor, models.AdapterIndexed:
		return nil
	default:
		return fmt.Errorf("employer %s: unknown adapter %q", config.Slug, config.Adapter)
	}
}

// ToModel converts the config entry into the seedable employer record.
func (config EmployerConfig) ToModel() models.Employer {
	displayName := config.DisplayName
	if displayName == "" {
		displayName = config.Name
	}
	return models.Employer{
		Slug:        config.Slug,
		Name:        config.Name,
		DisplayName: displayName,
		AdapterKind: models.AdapterKind(config.Adapter),
		BaseURL:     config.BaseURL,
	}
}
