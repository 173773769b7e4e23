package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/sacracalc/internal/config"
	"github.com/iwvelando/sacracalc/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for sacracalc-server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxRequestSize  string               `yaml:"maxRequestSize"`
	ReadTimeout     time.Duration        `yaml:"readTimeout"`
	WriteTimeout    time.Duration        `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration        `yaml:"shutdownTimeout"`
	Logging         config.LoggingConfig `yaml:"logging"`

	requestSizeBytes int64
}

// DefaultConfig returns the settings used when no server config file exists.
func DefaultConfig() *Config {
	return &Config{
		Address:          constants.DefaultServerAddress,
		MaxRequestSize:   strconv.FormatInt(constants.DefaultMaxRequestSizeBytes, 10),
		ReadTimeout:      constants.DefaultServerReadTimeout,
		WriteTimeout:     constants.DefaultServerWriteTimeout,
		ShutdownTimeout:  constants.DefaultServerShutdownTimeout,
		requestSizeBytes: constants.DefaultMaxRequestSizeBytes,
	}
}

// LoadConfig reads the server configuration from YAML on top of
// DefaultConfig. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides applies command line values; empty strings keep the
// configured value.
func (c *Config) ApplyOverrides(address, maxRequestSize string) error {
	if address != "" {
		c.Address = address
	}
	if maxRequestSize != "" {
		c.MaxRequestSize = maxRequestSize
	}
	return c.resolve()
}

// RequestSizeBytes is the request body limit in bytes.
func (c *Config) RequestSizeBytes() int64 {
	return c.requestSizeBytes
}

func (c *Config) resolve() error {
	var errs []error

	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		errs = append(errs, fmt.Errorf("address %q: %w", c.Address, err))
	}

	size, err := ParseSize(c.MaxRequestSize)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("maxRequestSize: %w", err))
	case size <= 0:
		errs = append(errs, fmt.Errorf("maxRequestSize must be positive, got %q", c.MaxRequestSize))
	default:
		c.requestSizeBytes = size
	}

	for name, d := range map[string]time.Duration{
		"readTimeout":     c.ReadTimeout,
		"writeTimeout":    c.WriteTimeout,
		"shutdownTimeout": c.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}

	return errors.Join(errs...)
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
}

// ParseSize converts a byte count such as "4096", "256K" or "1MB" into bytes.
// An empty value yields the default request size.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxRequestSizeBytes, nil
	}

	unitStart := strings.IndexFunc(trimmed, func(r rune) bool { return !unicode.IsDigit(r) })
	if unitStart == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	digits, unit := trimmed, ""
	if unitStart > 0 {
		digits, unit = trimmed[:unitStart], strings.ToUpper(strings.TrimSpace(trimmed[unitStart:]))
	}

	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
