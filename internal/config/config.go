// Package config loads server configuration from the environment, the
// Go-native rendition of the original server's hardcoded constants. The
// functional-option shape mirrors the teacher's pkg/jimi.Options/Option
// pair.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the accept loop and its connections need.
type Config struct {
	// Port is the TCP listen port. Spec default: 5023.
	Port int
	// LogDir is where server_log.txt and location_log.txt are appended.
	LogDir string
	// BufferSize is the per-read chunk size.
	BufferSize int
	// GeolocationTimeout bounds the geolocation collaborator call.
	GeolocationTimeout time.Duration
	// GMapsAPIKey authenticates the geolocation collaborator. Required for
	// HTTPLocator; a StaticLocator doesn't need it.
	GMapsAPIKey string
}

// Option is a functional option for Config.
type Option func(*Config)

// Default returns the spec's §6 defaults: port 5023, logs/ directory,
// 4096-byte buffer, 10-second geolocation timeout.
func Default() Config {
	return Config{
		Port:               5023,
		LogDir:             "logs",
		BufferSize:         4096,
		GeolocationTimeout: 10 * time.Second,
	}
}

// WithPort overrides the listen port.
func WithPort(port int) Option {
	return func(c *Config) { c.Port = port }
}

// WithLogDir overrides the log directory.
func WithLogDir(dir string) Option {
	return func(c *Config) { c.LogDir = dir }
}

// WithBufferSize overrides the per-read chunk size.
func WithBufferSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BufferSize = n
		}
	}
}

// WithGeolocationTimeout overrides the geolocation call timeout.
func WithGeolocationTimeout(d time.Duration) Option {
	return func(c *Config) { c.GeolocationTimeout = d }
}

// WithGMapsAPIKey sets the geolocation API credential.
func WithGMapsAPIKey(key string) Option {
	return func(c *Config) { c.GMapsAPIKey = key }
}

// Load builds a Config from a .env file (ignored if absent, matching the
// teacher's non-fatal godotenv.Load() handling) layered under the process
// environment, then applies any opts on top. GMAPS_API_KEY is the spec's
// single mandated option; TOPIN_PORT, TOPIN_LOG_DIR, TOPIN_BUFFER_SIZE and
// TOPIN_GEOLOCATE_TIMEOUT are additive convenience overrides.
func Load(opts ...Option) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	cfg.GMapsAPIKey = os.Getenv("GMAPS_API_KEY")

	if v := os.Getenv("TOPIN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid TOPIN_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("TOPIN_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("TOPIN_BUFFER_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid TOPIN_BUFFER_SIZE %q: %w", v, err)
		}
		cfg.BufferSize = size
	}
	if v := os.Getenv("TOPIN_GEOLOCATE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid TOPIN_GEOLOCATE_TIMEOUT %q: %w", v, err)
		}
		cfg.GeolocationTimeout = d
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, nil
}
