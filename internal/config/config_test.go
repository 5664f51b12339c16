package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("GMAPS_API_KEY")
	os.Unsetenv("TOPIN_PORT")
	os.Unsetenv("TOPIN_LOG_DIR")
	os.Unsetenv("TOPIN_BUFFER_SIZE")
	os.Unsetenv("TOPIN_GEOLOCATE_TIMEOUT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 5023 {
		t.Errorf("Port = %d, want 5023", cfg.Port)
	}
	if cfg.LogDir != "logs" {
		t.Errorf("LogDir = %q, want logs", cfg.LogDir)
	}
	if cfg.BufferSize != 4096 {
		t.Errorf("BufferSize = %d, want 4096", cfg.BufferSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TOPIN_PORT", "6000")
	t.Setenv("TOPIN_LOG_DIR", "/tmp/topin-logs")
	t.Setenv("TOPIN_GEOLOCATE_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 6000 {
		t.Errorf("Port = %d, want 6000", cfg.Port)
	}
	if cfg.LogDir != "/tmp/topin-logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.GeolocationTimeout != 3*time.Second {
		t.Errorf("GeolocationTimeout = %v, want 3s", cfg.GeolocationTimeout)
	}
}

func TestLoad_OptionsOverrideEnv(t *testing.T) {
	t.Setenv("TOPIN_PORT", "6000")

	cfg, err := Load(WithPort(7000))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want 7000 (option should win)", cfg.Port)
	}
}
