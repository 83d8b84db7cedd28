package app

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/gtopo/markship/internal/domain"
	"github.com/gtopo/markship/internal/ports"
)

// fakeSender records every session it opens.
type fakeSender struct {
	opens    int
	closes   int
	sent     []string
	failOpen error
	failAt   int // 1-based send number to fail, 0 never
}

func (f *fakeSender) Open(ctx context.Context) (ports.MarkSession, error) {
	if f.failOpen != nil {
		return nil, f.failOpen
	}
	f.opens++
	return &fakeSession{f: f}, nil
}

type fakeSession struct {
	f *fakeSender
}

func (s *fakeSession) Send(ctx context.Context, cmd string) error {
	s.f.sent = append(s.f.sent, cmd)
	if s.f.failAt > 0 && len(s.f.sent) == s.f.failAt {
		return domain.ErrConnection
	}
	return nil
}

func (s *fakeSession) Close() error {
	s.f.closes++
	return nil
}

func testTrack() domain.Track {
	return domain.NewTrack([]domain.Mark{
		{Lat: "52.1", Lon: "4.3"},
		{Lat: "52.2", Lon: "4.4"},
		{Lat: "52.3", Lon: "4.5"},
	})
}

func newTestShipper(cfg ShipperConfig, f *fakeSender, out *bytes.Buffer) (*Shipper, *[]time.Duration) {
	s := NewShipper(cfg, f, nil, out)
	var sleeps []time.Duration
	s.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return s, &sleeps
}

func TestShipper_SendOne(t *testing.T) {
	f := &fakeSender{}
	var out bytes.Buffer
	s, sleeps := newTestShipper(ShipperConfig{Interval: DefaultInterval}, f, &out)

	if err := s.SendOne(context.Background(), testTrack(), 1); err != nil {
		t.Fatalf("SendOne: %v", err)
	}

	if f.opens != 1 || f.closes != 1 {
		t.Errorf("opens/closes = %d/%d, want 1/1", f.opens, f.closes)
	}
	if want := []string{"MC 4.4 52.2"}; !reflect.DeepEqual(f.sent, want) {
		t.Errorf("sent = %v, want %v", f.sent, want)
	}
	if len(*sleeps) != 0 {
		t.Errorf("SendOne slept %v", *sleeps)
	}
	if out.String() != "1\n" {
		t.Errorf("progress = %q, want %q", out.String(), "1\n")
	}
}

func TestShipper_SendOne_OutOfRange(t *testing.T) {
	tests := []int{3, 100, -1}
	for _, i := range tests {
		f := &fakeSender{}
		s, _ := newTestShipper(ShipperConfig{}, f, &bytes.Buffer{})

		err := s.SendOne(context.Background(), testTrack(), i)
		if !errors.Is(err, domain.ErrIndexOutOfRange) {
			t.Errorf("SendOne(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
		if f.opens != 0 || len(f.sent) != 0 {
			t.Errorf("SendOne(%d) touched the network: opens=%d sent=%v", i, f.opens, f.sent)
		}
	}
}

func TestShipper_SendAll(t *testing.T) {
	tests := []struct {
		name       string
		cfg        ShipperConfig
		wantOpens  int
		wantCloses int
		wantSent   []string
	}{
		{
			name:       "one connection for the run",
			cfg:        ShipperConfig{Interval: DefaultInterval},
			wantOpens:  1,
			wantCloses: 1,
			wantSent:   []string{"MC 4.3 52.1", "MC 4.4 52.2", "MC 4.5 52.3"},
		},
		{
			name:       "reconnect per mark",
			cfg:        ShipperConfig{Interval: DefaultInterval, Reconnect: true},
			wantOpens:  3,
			wantCloses: 3,
			wantSent:   []string{"MC 4.3 52.1", "MC 4.4 52.2", "MC 4.5 52.3"},
		},
		{
			name:       "mark without centering",
			cfg:        ShipperConfig{Interval: DefaultInterval, Verb: domain.VerbMark},
			wantOpens:  1,
			wantCloses: 1,
			wantSent:   []string{"M 4.3 52.1", "M 4.4 52.2", "M 4.5 52.3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSender{}
			var out bytes.Buffer
			s, sleeps := newTestShipper(tt.cfg, f, &out)

			if err := s.SendAll(context.Background(), testTrack()); err != nil {
				t.Fatalf("SendAll: %v", err)
			}
			if f.opens != tt.wantOpens || f.closes != tt.wantCloses {
				t.Errorf("opens/closes = %d/%d, want %d/%d", f.opens, f.closes, tt.wantOpens, tt.wantCloses)
			}
			if !reflect.DeepEqual(f.sent, tt.wantSent) {
				t.Errorf("sent = %v, want %v", f.sent, tt.wantSent)
			}
			wantSleeps := []time.Duration{DefaultInterval, DefaultInterval}
			if !reflect.DeepEqual(*sleeps, wantSleeps) {
				t.Errorf("sleeps = %v, want %v", *sleeps, wantSleeps)
			}
			if out.String() != "3\n0\n1\n2\n" {
				t.Errorf("progress = %q", out.String())
			}
		})
	}
}

func TestShipper_SendAll_AbortsOnFirstFailure(t *testing.T) {
	f := &fakeSender{failAt: 2}
	s, _ := newTestShipper(ShipperConfig{}, f, &bytes.Buffer{})

	err := s.SendAll(context.Background(), testTrack())
	if !errors.Is(err, domain.ErrConnection) {
		t.Fatalf("SendAll error = %v, want ErrConnection", err)
	}
	if len(f.sent) != 2 {
		t.Errorf("sent %d commands after failure, want 2", len(f.sent))
	}
	if f.closes != 1 {
		t.Errorf("closes = %d, want 1", f.closes)
	}
}

func TestShipper_SendAll_OpenFailure(t *testing.T) {
	f := &fakeSender{failOpen: domain.ErrConnection}
	s, _ := newTestShipper(ShipperConfig{}, f, &bytes.Buffer{})

	if err := s.SendAll(context.Background(), testTrack()); !errors.Is(err, domain.ErrConnection) {
		t.Errorf("SendAll error = %v, want ErrConnection", err)
	}
}

func TestShipper_SendAll_Empty(t *testing.T) {
	f := &fakeSender{}
	var out bytes.Buffer
	s, _ := newTestShipper(ShipperConfig{}, f, &out)

	if err := s.SendAll(context.Background(), domain.NewTrack(nil)); err != nil {
		t.Fatalf("SendAll: %v", err)
	}
	if f.opens != 0 {
		t.Errorf("opens = %d, want 0", f.opens)
	}
	if out.String() != "0\n" {
		t.Errorf("progress = %q, want %q", out.String(), "0\n")
	}
}

func TestShipper_SendAll_Canceled(t *testing.T) {
	f := &fakeSender{}
	s := NewShipper(ShipperConfig{Interval: time.Hour}, f, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.SendAll(ctx, testTrack()); !errors.Is(err, context.Canceled) {
		t.Errorf("SendAll error = %v, want context.Canceled", err)
	}
	if len(f.sent) != 1 {
		t.Errorf("sent = %v, want only the first command", f.sent)
	}
}

func TestShipper_SendPath(t *testing.T) {
	f := &fakeSender{}
	s, sleeps := newTestShipper(ShipperConfig{Interval: DefaultInterval}, f, &bytes.Buffer{})

	if err := s.SendPath(context.Background(), testTrack()); err != nil {
		t.Fatalf("SendPath: %v", err)
	}

	want := []string{"E", "P 4.3 52.1", "P 4.4 52.2", "P 4.5 52.3", "D"}
	if !reflect.DeepEqual(f.sent, want) {
		t.Errorf("sent = %v, want %v", f.sent, want)
	}
	if f.opens != 1 {
		t.Errorf("opens = %d, want 1", f.opens)
	}
	if len(*sleeps) != len(want)-1 {
		t.Errorf("sleeps = %d, want %d", len(*sleeps), len(want)-1)
	}
}
