package config

import (
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ptxhome/ptxswitchd/internal/errors"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// Config represents the application configuration
type Config struct {
	Devices   []DeviceConfig  `mapstructure:"devices"`
	Poll      PollConfig      `mapstructure:"poll"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	API       APIConfig       `mapstructure:"api"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Client    ClientConfig    `mapstructure:"client"`

	// Internal viper instance
	v *viper.Viper
}

// DeviceConfig describes one physical switch
type DeviceConfig struct {
	Host      string `mapstructure:"host"`
	Token     string `mapstructure:"token"`
	Name      string `mapstructure:"name"`
	Model     string `mapstructure:"model"`     // optional, detected when empty
	Transport string `mapstructure:"transport"` // registered transport name
}

// PollConfig controls the refresh worker
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// DiscoveryConfig controls the mDNS discovery worker
type DiscoveryConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// APIConfig represents the HTTP API configuration
type APIConfig struct {
	ListenAddress string   `mapstructure:"listen_address"`
	Keys          []string `mapstructure:"keys"`
	RateLimit     int      `mapstructure:"rate_limit"` // requests per minute per IP, 0 disables
}

// MQTTConfig represents the MQTT bridge configuration
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         byte   `mapstructure:"qos"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ClientConfig is read by ptxctl
type ClientConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("poll.interval", DefaultPollInterval)
	v.SetDefault("discovery.enabled", false)
	v.SetDefault("discovery.interval", DefaultDiscoveryInterval)
	v.SetDefault("discovery.timeout", DefaultDiscoveryTimeout)
	v.SetDefault("api.listen_address", DefaultAPIListenAddress)
	v.SetDefault("api.keys", []string{})
	v.SetDefault("api.rate_limit", DefaultRateLimit)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", DefaultMQTTBroker)
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.topic_prefix", DefaultMQTTTopicPrefix)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", DefaultMQTTQoS)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)
	v.SetDefault("client.url", DefaultAPIURL)
	v.SetDefault("client.api_key", "")
}

// New builds a Config from an existing viper instance, applying defaults.
func New(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	for i := range cfg.Devices {
		if cfg.Devices[i].Transport == "" {
			cfg.Devices[i].Transport = DefaultTransport
		}
	}
	return cfg, nil
}

// Load loads configuration from a file and environment variables. A missing
// file is not an error; defaults apply.
func Load(configName, configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
		slog.Info("config: using config file from command line", "path", configFile)
	} else {
		v.SetConfigFile(GetConfigPath(configName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		slog.Debug("config: no config file, using defaults", "path", v.ConfigFileUsed())
	} else {
		slog.Info("config: loaded", "path", v.ConfigFileUsed())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return New(v)
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if strings.TrimSpace(d.Host) == "" {
			return errors.InvalidInputf("devices[%d]: host is required", i)
		}
		if seen[d.Host] {
			return errors.InvalidInputf("devices[%d]: duplicate host %s", i, d.Host)
		}
		seen[d.Host] = true

		if len(d.Token) != TokenLength {
			return errors.InvalidInputf("devices[%d]: token must be %d characters, got %d", i, TokenLength, len(d.Token))
		}
		if _, err := hex.DecodeString(d.Token); err != nil {
			return errors.InvalidInputf("devices[%d]: token must be hexadecimal", i)
		}
		if d.Model != "" && !ptx.Model(d.Model).Valid() {
			return errors.InvalidInputf("devices[%d]: unsupported model %q", i, d.Model)
		}
	}

	if c.Poll.Interval < MinPollInterval {
		return errors.InvalidInputf("poll.interval must be at least %s", MinPollInterval)
	}

	switch c.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return errors.InvalidInputf("logging.format must be %q or %q", LogFormatText, LogFormatJSON)
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return errors.InvalidInputf("mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.QoS > 2 {
			return errors.InvalidInputf("mqtt.qos must be 0, 1 or 2")
		}
	}
	return nil
}

// Viper returns the underlying viper instance, used for WatchConfig.
func (c *Config) Viper() *viper.Viper {
	return c.v
}

// Get retrieves a value from the configuration
func (c *Config) Get(key string) any {
	if c.v == nil {
		return nil
	}
	return c.v.Get(key)
}

// Set sets a value in the configuration
func (c *Config) Set(key string, value any) {
	if c.v == nil {
		return
	}
	c.v.Set(key, value)
}
