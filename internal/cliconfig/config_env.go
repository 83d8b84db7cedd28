package cliconfig

import "os"

// ApplyEnvConfig applies MARKSHIP_* environment variables to cfg,
// skipping flags in changed. It fails on the first malformed value.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("gpx", os.Getenv("MARKSHIP_GPX"), &cfg.GPXPath)
	s.setString("addr", os.Getenv("MARKSHIP_ADDR"), &cfg.Addr)
	s.setString("listen", os.Getenv("MARKSHIP_LISTEN"), &cfg.Listen)
	s.setString("log-level", os.Getenv("MARKSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("interval", os.Getenv("MARKSHIP_INTERVAL"), &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", os.Getenv("MARKSHIP_DIAL_TIMEOUT"), &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("ack-timeout", os.Getenv("MARKSHIP_ACK_TIMEOUT"), &cfg.AckTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("ack-size", os.Getenv("MARKSHIP_ACK_SIZE"), &cfg.AckSize); err != nil {
		return err
	}
	if err := s.setBoolFromString("reconnect", os.Getenv("MARKSHIP_RECONNECT"), &cfg.Reconnect); err != nil {
		return err
	}
	if err := s.setBoolFromString("no-center", os.Getenv("MARKSHIP_NO_CENTER"), &cfg.NoCenter); err != nil {
		return err
	}

	return nil
}
