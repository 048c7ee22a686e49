package config

import (
	"encoding/json"
	"fmt"
	"os"

	"wmgateway/internal/constants"
	"wmgateway/internal/models"
	"wmgateway/internal/security"
)

var (
	ErrMissingDBPath       = models.ConfigError{Message: "missing database path"}
	ErrMissingAccessToken  = models.ConfigError{Message: "capi is enabled but access token is missing"}
	ErrMissingDatasourceID = models.ConfigError{Message: "capi is enabled but datasource id is missing"}
	ErrMissingPageID       = models.ConfigError{Message: "capi is enabled but page id is missing"}
)

// LoadConfig reads and validates the JSON configuration file. Secrets may be
// supplied or overridden through the environment.
func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - path validated above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(c *models.Config) {
	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec == 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if c.Capi.AttributionWindowDays == 0 {
		c.Capi.AttributionWindowDays = constants.DefaultAttributionWindowDays
	}
	if c.Capi.APIBaseURL == "" {
		c.Capi.APIBaseURL = constants.DefaultCapiAPIBaseURL
	}
	if c.Capi.TimeoutSec == 0 {
		c.Capi.TimeoutSec = constants.DefaultCapiTimeoutSec
	}
}

func applyEnvironmentOverrides(c *models.Config) {
	if token := os.Getenv("WMGATEWAY_CAPI_ACCESS_TOKEN"); token != "" {
		c.Capi.AccessToken = token
	}
	if token := os.Getenv("WMGATEWAY_AUTH_TOKEN"); token != "" {
		c.Auth.Token = token
	}
	if token := os.Getenv("WMGATEWAY_WEBHOOK_VERIFY_TOKEN"); token != "" {
		c.Webhook.VerifyToken = token
	}
}

func validate(c *models.Config) error {
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	if c.Capi.Enabled {
		if c.Capi.AccessToken == "" {
			return ErrMissingAccessToken
		}
		if c.Capi.DatasourceID == "" {
			return ErrMissingDatasourceID
		}
		if c.Capi.PageID == "" {
			return ErrMissingPageID
		}
	}

	if c.Capi.AttributionWindowDays < 0 {
		return models.ConfigError{Message: "attribution window must not be negative"}
	}

	return nil
}
