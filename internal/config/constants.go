package config

import "time"

// Common constants shared between daemon and client
const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "ptxswitch"

	// SystemConfigDir is used as-is when XDG_CONFIG_HOME points at it (system service)
	SystemConfigDir = "/etc/ptxswitch"

	// DaemonConfigFilename is the base filename for daemon config
	DaemonConfigFilename = "ptxswitchd.yaml"

	// ClientConfigFilename is the base filename for client config
	ClientConfigFilename = "ptxctl.yaml"

	// EnvPrefix is the prefix for environment overrides, e.g. PTXSWITCH_POLL_INTERVAL
	EnvPrefix = "PTXSWITCH"

	// DefaultAPIListenAddress is the default HTTP API listen address
	DefaultAPIListenAddress = ":9130"

	// DefaultAPIURL is where the client expects the daemon
	DefaultAPIURL = "http://localhost:9130"

	// DefaultRateLimit is the default number of API requests per minute per IP
	DefaultRateLimit = 120

	// DefaultTransport is used for devices that do not name one
	DefaultTransport = "simulated"

	// TokenLength is the length of a device token in hex characters
	TokenLength = 32

	// TokenLogPrefix is how much of a token may appear in logs
	TokenLogPrefix = 5
)

// Default timeouts and intervals
const (
	// DefaultPollInterval is the default interval between channel refreshes
	DefaultPollInterval = 30 * time.Second

	// MinPollInterval is the minimum allowed poll interval
	MinPollInterval = 5 * time.Second

	// DefaultDiscoveryInterval is the default interval for mDNS discovery
	DefaultDiscoveryInterval = 5 * time.Minute

	// MinDiscoveryInterval is the minimum allowed discovery interval
	MinDiscoveryInterval = 30 * time.Second

	// DefaultDiscoveryTimeout bounds a single mDNS browse
	DefaultDiscoveryTimeout = 5 * time.Second
)

// MQTT defaults
const (
	DefaultMQTTBroker      = "tcp://localhost:1883"
	DefaultMQTTTopicPrefix = "ptxswitch"
	DefaultMQTTQoS         = 1
)

// Logging constants
const (
	// LogLevelDebug represents debug log level
	LogLevelDebug = "debug"

	// LogLevelInfo represents info log level
	LogLevelInfo = "info"

	// LogLevelWarn represents warning log level
	LogLevelWarn = "warn"

	// LogLevelError represents error log level
	LogLevelError = "error"

	// LogFormatText represents text log format
	LogFormatText = "text"

	// LogFormatJSON represents JSON log format
	LogFormatJSON = "json"
)
