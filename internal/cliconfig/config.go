package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gtopo/markship/internal/domain"
)

// Defaults for the remote-control port of the map viewer.
const (
	DefaultGPXPath     = "carrie.gpx"
	DefaultAddr        = "localhost:5555"
	DefaultListenAddr  = ":5555"
	DefaultInterval    = 100 * time.Millisecond
	DefaultDialTimeout = 5 * time.Second
	DefaultAckSize     = 16
	DefaultLogLevel    = "info"
)

// Config holds CLI configuration for markship.
type Config struct {
	GPXPath string
	Addr    string
	Listen  string

	Interval    time.Duration
	DialTimeout time.Duration
	AckTimeout  time.Duration // zero waits for the acknowledgment forever
	AckSize     int

	Reconnect bool
	NoCenter  bool

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		GPXPath:     DefaultGPXPath,
		Addr:        DefaultAddr,
		Listen:      DefaultListenAddr,
		Interval:    DefaultInterval,
		DialTimeout: DefaultDialTimeout,
		AckSize:     DefaultAckSize,
		LogLevel:    DefaultLogLevel,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.GPXPath == "" {
		return fmt.Errorf("%w: gpx path is required", domain.ErrInvalidConfig)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr is required", domain.ErrInvalidConfig)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", domain.ErrInvalidConfig)
	}
	if c.DialTimeout < 0 || c.AckTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", domain.ErrInvalidConfig)
	}
	if c.AckSize <= 0 {
		return fmt.Errorf("%w: ack size must be positive", domain.ErrInvalidConfig)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return nil
}

// Verb returns the command verb for marks: "MC", or "M" when the map
// should not be re-centered.
func (c Config) Verb() string {
	if c.NoCenter {
		return domain.VerbMark
	}
	return domain.VerbMarkCenter
}

// configSetter applies values only where the matching flag was not set
// explicitly on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt applies any explicit value, including zero or negatives, so
// Validate sees exactly what the user wrote.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses value with time.ParseDuration. Zero is a valid
// setting (it disables the ack timeout and the pause).
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	s.setInt(flag, &i, dst)
	return nil
}

// setBoolFromString accepts anything strconv.ParseBool does.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
