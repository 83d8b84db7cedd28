package cliconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/gtopo/markship/internal/domain"
)

func TestApplyEnvConfig_ZeroAckSizeFailsValidation(t *testing.T) {
	t.Setenv("MARKSHIP_ACK_SIZE", "0")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
	}
}

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"MARKSHIP_GPX":         "/tracks/azt.gpx",
				"MARKSHIP_ADDR":        "viewer:5555",
				"MARKSHIP_INTERVAL":    "250ms",
				"MARKSHIP_ACK_TIMEOUT": "2s",
				"MARKSHIP_ACK_SIZE":    "32",
				"MARKSHIP_RECONNECT":   "true",
				"MARKSHIP_NO_CENTER":   "1",
				"MARKSHIP_LOG_LEVEL":   "debug",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				GPXPath:    "/tracks/azt.gpx",
				Addr:       "viewer:5555",
				Interval:   250 * time.Millisecond,
				AckTimeout: 2 * time.Second,
				AckSize:    32,
				Reconnect:  true,
				NoCenter:   true,
				LogLevel:   "debug",
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"MARKSHIP_ADDR":     "viewer:5555",
				"MARKSHIP_INTERVAL": "1s",
			},
			changed: map[string]bool{"addr": true},
			initial: Config{Addr: "flag:1"},
			expected: Config{
				Addr:     "flag:1",
				Interval: time.Second,
			},
		},
		{
			name:     "returns error for invalid duration",
			envVars:  map[string]string{"MARKSHIP_INTERVAL": "soon"},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name:     "returns error for invalid int",
			envVars:  map[string]string{"MARKSHIP_ACK_SIZE": "many"},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name:     "returns error for invalid bool",
			envVars:  map[string]string{"MARKSHIP_RECONNECT": "sometimes"},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name:     "keeps explicit zero ack size",
			envVars:  map[string]string{"MARKSHIP_ACK_SIZE": "0"},
			changed:  map[string]bool{},
			initial:  Config{AckSize: 16},
			expected: Config{AckSize: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
