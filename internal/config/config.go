// Package config loads server and client settings from TOML files and the
// environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// DefaultPort is the well-known port shared by server and client.
const DefaultPort = 56700

// Environment overrides, applied after the config file.
const (
	EnvLogLevel  = "WEATHER_LOG_LEVEL"
	EnvZipkinURL = "WEATHER_ZIPKIN_URL"
)

// ErrInvalidPort is returned for ports outside 1..65535.
var ErrInvalidPort = errors.New("config: port must be between 1 and 65535")

// ErrInvalidOrigin is returned for a cors_origins entry the admin router
// cannot serve: it must be "*" or start with http:// or https://.
var ErrInvalidOrigin = errors.New("config: invalid cors origin")

// ServerConfig holds the weather server settings.
type ServerConfig struct {
	Port          int
	Network       string
	ReusePort     bool
	ReverseLookup bool
	LookupTimeout time.Duration
	AdminAddr     string
	CORSOrigins   []string
	ZipkinURL     string
	LogLevel      string
}

// ClientConfig holds the weather client settings.
type ClientConfig struct {
	Server   string
	Port     int
	LogLevel string
}

// DefaultServerConfig returns the settings used when no file or
// environment override applies.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:          DefaultPort,
		Network:       "udp4",
		ReverseLookup: true,
		LookupTimeout: time.Second,
		LogLevel:      "info",
	}
}

// DefaultClientConfig returns the client settings used when no file or
// environment override applies.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Server:   "localhost",
		Port:     DefaultPort,
		LogLevel: "info",
	}
}

type serverFile struct {
	Port          int      `toml:"port"`
	Network       string   `toml:"network"`
	ReusePort     bool     `toml:"reuse_port"`
	ReverseLookup bool     `toml:"reverse_lookup"`
	LookupTimeout string   `toml:"lookup_timeout"`
	AdminAddr     string   `toml:"admin_addr"`
	CORSOrigins   []string `toml:"cors_origins"`
	ZipkinURL     string   `toml:"zipkin_url"`
	LogLevel      string   `toml:"log_level"`
}

type clientFile struct {
	Server   string `toml:"server"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

// LoadServer returns the defaults overlaid with the file at path (if path
// is not empty) and then with the environment.
func LoadServer(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		var raw serverFile
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return ServerConfig{}, errors.Wrap(err, "load server config")
		}

		if meta.IsDefined("port") {
			cfg.Port = raw.Port
		}
		if meta.IsDefined("network") {
			cfg.Network = strings.TrimSpace(raw.Network)
		}
		if meta.IsDefined("reuse_port") {
			cfg.ReusePort = raw.ReusePort
		}
		if meta.IsDefined("reverse_lookup") {
			cfg.ReverseLookup = raw.ReverseLookup
		}
		if meta.IsDefined("lookup_timeout") {
			d, err := time.ParseDuration(strings.TrimSpace(raw.LookupTimeout))
			if err != nil {
				return ServerConfig{}, errors.Wrap(err, "parse lookup_timeout")
			}
			cfg.LookupTimeout = d
		}
		if meta.IsDefined("admin_addr") {
			cfg.AdminAddr = strings.TrimSpace(raw.AdminAddr)
		}
		if meta.IsDefined("cors_origins") {
			cfg.CORSOrigins = raw.CORSOrigins
		}
		if meta.IsDefined("zipkin_url") {
			cfg.ZipkinURL = strings.TrimSpace(raw.ZipkinURL)
		}
		if meta.IsDefined("log_level") {
			cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
		}
	}

	if v, ok := lookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookupEnv(EnvZipkinURL); ok {
		cfg.ZipkinURL = v
	}
	return cfg, nil
}

// LoadClient returns the defaults overlaid with the file at path (if path
// is not empty) and then with the environment.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		var raw clientFile
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return ClientConfig{}, errors.Wrap(err, "load client config")
		}

		if meta.IsDefined("server") {
			cfg.Server = strings.TrimSpace(raw.Server)
		}
		if meta.IsDefined("port") {
			cfg.Port = raw.Port
		}
		if meta.IsDefined("log_level") {
			cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
		}
	}

	if v, ok := lookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	return cfg, nil
}

// Validate checks the values a server cannot start without.
func (c ServerConfig) Validate() error {
	if err := ValidatePort(c.Port); err != nil {
		return err
	}
	switch c.Network {
	case "udp", "udp4", "udp6":
	default:
		return errors.Errorf("config: unsupported network %q", c.Network)
	}
	if c.LookupTimeout < 0 {
		return errors.Errorf("config: negative lookup_timeout %v", c.LookupTimeout)
	}
	for _, origin := range c.CORSOrigins {
		if err := validateOrigin(origin); err != nil {
			return err
		}
	}
	return nil
}

func validateOrigin(origin string) error {
	if origin == "*" || strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
		return nil
	}
	return errors.Wrapf(ErrInvalidOrigin, "%q", origin)
}

// Validate checks the values a client cannot run without.
func (c ClientConfig) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return errors.New("config: empty server")
	}
	return ValidatePort(c.Port)
}

// ValidatePort returns ErrInvalidPort unless port is in 1..65535.
func ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return errors.Wrapf(ErrInvalidPort, "got %d", port)
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}
