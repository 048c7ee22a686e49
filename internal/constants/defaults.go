package constants

// Default server configuration values
const (
	DefaultServerPort            = 8080
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
)

// Default CAPI configuration values
const (
	DefaultAttributionWindowDays = 7
	DefaultCapiAPIBaseURL        = "https://graph.facebook.com/v18.0"
	DefaultCapiTimeoutSec        = 10
)

// Default database configuration values
const (
	DefaultDatabaseRetryAttempts = 3
	DefaultBackoffInitialMs      = 500
	DefaultBackoffMaxMs          = 5000
)

// Default paging values for the signals listing endpoint
const (
	DefaultSignalsPageSize = 10
	MaxSignalsPageSize     = 100
)

// Encryption salts for the optional at-rest column encryption.
// Changing these invalidates previously written ciphertext.
const (
	EncryptionSalt       = "wmgateway-signal-store-v1"
	EncryptionLookupSalt = "wmgateway-lookup-v1"
)

// ServerErrorChannelSize bounds the server error channel in main.
const ServerErrorChannelSize = 1
