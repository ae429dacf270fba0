// Package cli implements the crossfader command line.
package cli

import (
	"context"
	"errors"

	"github.com/crossfader-relay/crossfader/internal/console"
	"github.com/crossfader-relay/crossfader/internal/midi"
	"github.com/spf13/cobra"
)

// Version is printed in the banner.
const Version = "1.0.0"

type options struct {
	configPath string
	host       string
	port       int
	mock       bool
	relearn    bool
}

// NewRootCommand builds the crossfader command. Operator output goes to con.
func NewRootCommand(con *console.Console) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "crossfader [device]",
		Short: "Relay a MIDI crossfader to WebSocket clients",
		Long: `crossfader learns which control on a MIDI controller is the crossfader,
then streams its position as a percentage to every connected WebSocket
client at ws://<host>:<port>/ws.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			device := ""
			if len(args) == 1 {
				device = args[0]
			}
			return run(cmd.Context(), con, opts, device)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "config.yaml", "Path to config file")
	f.StringVar(&opts.host, "host", "", "Override server host")
	f.IntVarP(&opts.port, "port", "p", 0, "Override server port")
	f.BoolVar(&opts.mock, "mock", false, "Use a synthetic controller instead of a MIDI device")
	f.BoolVar(&opts.relearn, "relearn", false, "Ignore the saved control and learn again")
	return cmd
}

// Execute runs the command on the terminal. A fatal error is reported on the
// console and returned for the exit status.
func Execute(ctx context.Context) error {
	con := console.New()
	return execute(ctx, NewRootCommand(con), con)
}

func execute(ctx context.Context, cmd *cobra.Command, con *console.Console) error {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		reportError(con, err)
	}
	return err
}

func reportError(con *console.Console, err error) {
	if errors.Is(err, midi.ErrDevice) {
		con.Error("MIDI device error: %v", err)
		return
	}
	con.Error("Error: %v", err)
}
