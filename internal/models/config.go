package models

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Capi     CapiConfig     `json:"capi"`
	Webhook  WebhookConfig  `json:"webhook"`
	Auth     AuthConfig     `json:"auth"`
	Tracing  TracingConfig  `json:"tracing"`
	LogLevel string         `json:"log_level"`
}

// ServerConfig holds HTTP server related configurations
type ServerConfig struct {
	Port            int `json:"port"`
	ReadTimeoutSec  int `json:"read_timeout_sec"`
	WriteTimeoutSec int `json:"write_timeout_sec"`
	IdleTimeoutSec  int `json:"idle_timeout_sec"`
}

// DatabaseConfig holds database related configurations
type DatabaseConfig struct {
	Path string `json:"path"`
}

// CapiConfig holds the Conversions API integration settings. The pipeline
// treats every field as a read-only input supplied at startup.
type CapiConfig struct {
	Enabled               bool   `json:"enabled"`
	AccessToken           string `json:"access_token"`
	PageID                string `json:"page_id"`
	DatasourceID          string `json:"datasource_id"`
	AttributionWindowDays int    `json:"attribution_window_days"`
	APIBaseURL            string `json:"api_base_url"`
	TimeoutSec            int    `json:"timeout_sec"`
}

// WebhookConfig holds inbound webhook settings
type WebhookConfig struct {
	VerifyToken string `json:"verify_token"`
}

// AuthConfig holds the shared token guarding the management endpoints
type AuthConfig struct {
	Token string `json:"token"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseStdout      bool    `json:"use_stdout"`
}

// ConfigError represents a configuration validation failure
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
