package constants

// Default queue configuration values
const (
	DefaultPageSize           = 25
	MaxPageSize               = 100
	DefaultOwner              = "marai-business"
	DefaultReleaseIntervalSec = 60
	DefaultRetentionDays      = 30
	DefaultDurationSeconds    = 30
	DefaultCampaignDelaySec   = 3600
	DefaultCampaignBrand      = "MarAI Business"
	DefaultCampaignObjective  = "awareness"
)

// Default poller configuration values
const (
	DefaultPollIntervalSec = 60
	DefaultPollTimeoutSec  = 30
	DefaultPollLimit       = DefaultPageSize
)

// Default retry configuration values
const (
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultMaxAttempts           = 5
	DefaultDatabaseRetryAttempts = 3
)

// Default server configuration values
const (
	DefaultServerPort          = 8080
	DefaultServerReadTimeout   = 15
	DefaultServerWriteTimeout  = 15
	DefaultServerIdleTimeout   = 60
	DefaultGracefulShutdownSec = 30
	ServerErrorChannelSize     = 1
)

// Request limits
const (
	MaxRequestBodyBytes = 1 << 20
)
