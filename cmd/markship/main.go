package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gtopo/markship"
	"github.com/gtopo/markship/internal/cliconfig"
	"github.com/gtopo/markship/pkg/log"
)

const longHelp = `Replay a GPX track onto a map viewer's remote-control port.

Each trackpoint becomes "MC <lon> <lat>" and is sent over TCP; markship waits
for the viewer's reply before pausing and sending the next one. Give an index
to send a single mark, or no argument to send the whole track.

Configuration is read from the config file, then MARKSHIP_* environment
variables, then flags; later sources win.`

var exampleUsage = strings.TrimSpace(`
  markship                      # send every mark in carrie.gpx to localhost:5555
  markship 42                   # send only mark 42
  markship --gpx azt.gpx --interval 250ms --reconnect
  markship path --gpx azt.gpx   # draw the track as a path
  markship receive --listen :5555
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries state shared by the root command and its subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  zerolog.Logger
	stderr  io.Writer
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *cli) {
	c := &cli{
		cfg:    cliconfig.DefaultConfig(),
		logger: log.NewConsoleLogger(stderr, cliconfig.DefaultLogLevel),
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:           "markship [index]",
		Short:         "Replay a GPX track onto a map viewer's remote-control port",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			index := -1
			if len(args) == 1 {
				i, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q: %w", args[0], err)
				}
				if i < 0 {
					return fmt.Errorf("%w: %d", markship.ErrIndexOutOfRange, i)
				}
				index = i
			}

			ctx := cmd.Context()
			track, err := markship.LoadTrack(ctx, c.cfg, c.adapter())
			if err != nil {
				return err
			}

			s := markship.NewShipper(c.cfg, c.adapter(), cmd.OutOrStdout())
			if index >= 0 {
				return s.SendOne(ctx, track, index)
			}
			return s.SendAll(ctx, track)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.PersistentFlags()
	f.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.markship/config.toml)")
	f.StringVar(&c.cfg.GPXPath, "gpx", c.cfg.GPXPath, "GPX track file")
	f.StringVar(&c.cfg.Addr, "addr", c.cfg.Addr, "remote-control address of the map viewer")
	f.DurationVar(&c.cfg.Interval, "interval", c.cfg.Interval, "pause between consecutive sends")
	f.DurationVar(&c.cfg.DialTimeout, "dial-timeout", c.cfg.DialTimeout, "TCP connect timeout")
	f.DurationVar(&c.cfg.AckTimeout, "ack-timeout", c.cfg.AckTimeout, "acknowledgment read timeout (0 waits forever)")
	f.IntVar(&c.cfg.AckSize, "ack-size", c.cfg.AckSize, "bytes read for each acknowledgment")
	f.BoolVar(&c.cfg.Reconnect, "reconnect", c.cfg.Reconnect, "open a new connection for every mark")
	f.BoolVar(&c.cfg.NoCenter, "no-center", c.cfg.NoCenter, "place marks without re-centering the map")
	f.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(c.pathCmd(), c.listCmd(), c.receiveCmd())
	return root, c
}

func (c *cli) pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Replace the viewer's path with the track (erase, add points, draw)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			track, err := markship.LoadTrack(ctx, c.cfg, c.adapter())
			if err != nil {
				return err
			}
			return markship.NewShipper(c.cfg, c.adapter(), cmd.OutOrStdout()).SendPath(ctx, track)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the commands parsed from the track without sending them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := markship.LoadTrack(cmd.Context(), c.cfg, c.adapter())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, m := range track.Marks() {
				fmt.Fprintf(out, "%d\t%s\n", i, m.CommandVerb(c.cfg.Verb()))
			}
			return nil
		},
	}
}

func (c *cli) receiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Listen for remote-control commands and log them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := c.adapter()
			r := markship.NewReceiver(c.cfg, func(m markship.Command) {
				logger.Info("received",
					log.String("kind", m.Kind.String()),
					log.Float64("lon", m.Lon),
					log.Float64("lat", m.Lat),
				)
			}, logger)
			return r.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&c.cfg.Listen, "listen", c.cfg.Listen, "address to listen on")
	return cmd
}

func (c *cli) adapter() log.Logger {
	return log.NewZerologAdapter(c.logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, c := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		c.logger.Error().Err(err).Msg("markship")
		stop()
		os.Exit(1)
	}
}
