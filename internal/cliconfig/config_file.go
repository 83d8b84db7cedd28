package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with durations as strings so the TOML file
// can say "100ms".
type FileConfig struct {
	GPXPath     string `toml:"gpx"`
	Addr        string `toml:"addr"`
	Listen      string `toml:"listen"`
	Interval    string `toml:"interval"`
	DialTimeout string `toml:"dial_timeout"`
	AckTimeout  string `toml:"ack_timeout"`
	AckSize     *int   `toml:"ack_size"`
	Reconnect   *bool  `toml:"reconnect"`
	NoCenter    *bool  `toml:"no_center"`
	LogLevel    string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.markship/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".markship", "config.toml")
	}
	return ""
}

// ApplyFileConfig copies file values into cfg, skipping flags in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("gpx", fc.GPXPath, &cfg.GPXPath)
	s.setString("addr", fc.Addr, &cfg.Addr)
	s.setString("listen", fc.Listen, &cfg.Listen)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("interval", fc.Interval, &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", fc.DialTimeout, &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("ack-timeout", fc.AckTimeout, &cfg.AckTimeout); err != nil {
		return err
	}

	s.setInt("ack-size", fc.AckSize, &cfg.AckSize)

	s.setBool("reconnect", fc.Reconnect, &cfg.Reconnect)
	s.setBool("no-center", fc.NoCenter, &cfg.NoCenter)

	return nil
}

// FileExists reports whether p exists.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
