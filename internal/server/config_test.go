package server

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/sacracalc/pkg/constants"
)

func writeServerConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%q) error = %v", path, err)
		}

		if cfg.Address != constants.DefaultServerAddress {
			t.Errorf("expected default address, got %q", cfg.Address)
		}
		if cfg.RequestSizeBytes() != constants.DefaultMaxRequestSizeBytes {
			t.Errorf("expected default request size, got %d", cfg.RequestSizeBytes())
		}
		if cfg.ReadTimeout != constants.DefaultServerReadTimeout ||
			cfg.WriteTimeout != constants.DefaultServerWriteTimeout ||
			cfg.ShutdownTimeout != constants.DefaultServerShutdownTimeout {
			t.Errorf("unexpected default timeouts %s/%s/%s", cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout)
		}
		if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
			t.Errorf("expected empty logging defaults, got %+v", cfg.Logging)
		}
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeServerConfig(t, `address: 127.0.0.1:9000
maxRequestSize: 16K
readTimeout: 2s
shutdownTimeout: 1m
logging:
  level: debug
  format: console
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Errorf("expected address override, got %s", cfg.Address)
	}
	if cfg.RequestSizeBytes() != 16*1024 {
		t.Errorf("expected 16K request size, got %d", cfg.RequestSizeBytes())
	}
	if cfg.ReadTimeout != 2*time.Second {
		t.Errorf("expected read timeout 2s, got %s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != constants.DefaultServerWriteTimeout {
		t.Errorf("expected default write timeout to survive, got %s", cfg.WriteTimeout)
	}
	if cfg.ShutdownTimeout != time.Minute {
		t.Errorf("expected shutdown timeout 1m, got %s", cfg.ShutdownTimeout)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadConfigExample(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "server-config.yaml.example"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.RequestSizeBytes() != constants.DefaultMaxRequestSizeBytes {
		t.Errorf("expected the example to use the default size, got %d", cfg.RequestSizeBytes())
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		fragment string
	}{
		{"Invalid size", "maxRequestSize: invalid", "maxRequestSize"},
		{"Zero size", "maxRequestSize: 0", "maxRequestSize"},
		{"Address without port", "address: localhost", "address"},
		{"Negative timeout", "writeTimeout: -1s", "writeTimeout"},
		{"Malformed YAML", "address: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeServerConfig(t, tt.contents))
			if err == nil {
				t.Fatal("expected error but got nil")
			}
			if !strings.Contains(err.Error(), tt.fragment) {
				t.Errorf("expected error mentioning %q, got %v", tt.fragment, err)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.ApplyOverrides("", ""); err != nil {
		t.Fatalf("ApplyOverrides() with no flags error = %v", err)
	}
	if cfg.Address != constants.DefaultServerAddress || cfg.RequestSizeBytes() != constants.DefaultMaxRequestSizeBytes {
		t.Errorf("empty overrides changed the config: %+v", cfg)
	}

	if err := cfg.ApplyOverrides(":9090", "2K"); err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}
	if cfg.Address != ":9090" {
		t.Errorf("expected address :9090, got %s", cfg.Address)
	}
	if cfg.RequestSizeBytes() != 2048 {
		t.Errorf("expected 2048 bytes, got %d", cfg.RequestSizeBytes())
	}

	if err := cfg.ApplyOverrides("", "lots"); err == nil {
		t.Error("expected error for an invalid size flag")
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxRequestSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"10 kb":     10 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, input := range []string{"1GB", "abc", "-5", "1.5M"} {
		if _, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q) expected error", input)
		}
	}
}

func TestParseSizeOverflow(t *testing.T) {
	// 2^54 KB wraps to exactly 0 and 2^53+1 MB wraps to a positive value.
	for _, input := range []string{
		strconv.FormatInt(1<<54, 10) + "K",
		strconv.FormatInt(1<<53+1, 10) + "M",
		strconv.FormatInt(math.MaxInt64/1024+1, 10) + "K",
	} {
		if _, err := ParseSize(input); err == nil || !strings.Contains(err.Error(), "overflow") {
			t.Errorf("ParseSize(%q) expected overflow error, got %v", input, err)
		}
	}

	maxKB := strconv.FormatInt(math.MaxInt64/1024, 10) + "K"
	if _, err := ParseSize(maxKB); err != nil {
		t.Errorf("ParseSize(%q) should fit, got %v", maxKB, err)
	}
}
