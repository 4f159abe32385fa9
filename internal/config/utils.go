package config

import (
	"os"
	"path/filepath"
	"time"
)

// GetConfigBaseDir returns the base directory for configuration files
func GetConfigBaseDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		// The system service points XDG_CONFIG_HOME at /etc/ptxswitch
		if dir == SystemConfigDir {
			return dir
		}
		return filepath.Join(dir, ConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", ConfigDirName)
}

// GetConfigPath returns the full path to a configuration file
func GetConfigPath(filename string) string {
	return filepath.Join(GetConfigBaseDir(), filename)
}

// GetDaemonConfigPath returns the full path to the daemon configuration file
func GetDaemonConfigPath() string {
	return GetConfigPath(DaemonConfigFilename)
}

// GetClientConfigPath returns the full path to the client configuration file
func GetClientConfigPath() string {
	return GetConfigPath(ClientConfigFilename)
}

// ClampInterval returns d, raised to minimum when it is shorter.
func ClampInterval(d, minimum time.Duration) time.Duration {
	if d < minimum {
		return minimum
	}
	return d
}

// MaskToken returns the part of a device token that is safe to log.
func MaskToken(token string) string {
	if len(token) <= TokenLogPrefix {
		return token
	}
	return token[:TokenLogPrefix] + "..."
}
