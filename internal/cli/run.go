package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crossfader-relay/crossfader/internal/config"
	"github.com/crossfader-relay/crossfader/internal/console"
	"github.com/crossfader-relay/crossfader/internal/fader"
	"github.com/crossfader-relay/crossfader/internal/learn"
	"github.com/crossfader-relay/crossfader/internal/logging"
	"github.com/crossfader-relay/crossfader/internal/midi"
	"github.com/crossfader-relay/crossfader/internal/mock"
	"github.com/crossfader-relay/crossfader/internal/state"
	"github.com/crossfader-relay/crossfader/internal/tracker"
	"github.com/crossfader-relay/crossfader/internal/ws"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const (
	mockDevice  = "mock controller"
	mockControl = 8
	mockPeriod  = 4 * time.Second
)

// ui is the slice of the console the command drives.
type ui interface {
	learn.Operator
	SelectDevice(names []string, saved string) (string, error)
	Instructions()
	LearnProgress(phase learn.Phase, controls int)
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

func run(ctx context.Context, con *console.Console, opts options, device string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	closer := logging.Setup(cfg.Log)
	defer closer.Close()

	con.Header(Version)

	store := state.NewStore(cfg.StateDir)
	clock := clockwork.NewRealClock()

	value := &fader.Value{}
	hub := ws.NewHub(value, cfg.Server.MaxConnections)
	server := ws.NewServer(cfg.Server, hub, value, clock)

	ln, err := ws.Listen(cfg.Server.Host, cfg.Server.Port)
	if err != nil {
		return err
	}

	// Clients may connect while the operator is still learning; they get
	// the baseline now and values once tracking starts.
	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()
	g, gctx := errgroup.WithContext(serveCtx)
	g.Go(func() error {
		return ws.Serve(gctx, ln, server.Handler())
	})
	con.Info("WebSocket server started on ws://%s:%d/ws", cfg.Server.Host, cfg.Server.Port)

	abort := func(err error) error {
		stopServing()
		g.Wait()
		return err
	}

	var (
		source midi.Source
		name   string
	)
	if opts.mock {
		name = mockDevice
		source = mock.NewGenerator(clock, mockControl, mockPeriod)
		con.Info("Using %s (sweeping control %d)", name, mockControl)
	} else {
		name, err = resolveDevice(con, store, midi.InputNames(), device, cfg.MIDI.Device)
		if err != nil {
			return abort(err)
		}
		port, err := midi.Open(name, cfg.MIDI.Buffer)
		if err != nil {
			return abort(err)
		}
		defer port.Close()
		source = port
		con.Info("Listening on %s", name)
	}

	control, err := learnControl(ctx, con, store, source, clock, cfg, opts.relearn)
	if err != nil {
		return abort(err)
	}
	if err := store.SaveControl(control); err != nil {
		con.Warn("Could not save control: %v", err)
	}
	server.SetTracking(name, control)

	trk := tracker.New(source, control, value, hub, clock, cfg.MIDI.PollInterval)
	trk.OnChange = con.FaderStatus

	sigCtx, stop := signal.NotifyContext(gctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(sigCtx, stopServing)

	con.Info("Tracking control %d.", control)
	g.Go(func() error {
		return trk.Run(sigCtx)
	})

	err = g.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		con.Info("Stopped.")
		return nil
	}
	return err
}

// loadConfig reads the config file, applies flag overrides and validates
// the result.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.configPath, err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
}

// resolveDevice picks the input port: the command line argument, then the
// configured device, then an interactive choice. Interactive choices are
// remembered.
func resolveDevice(u ui, store *state.Store, names []string, arg, configured string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if configured != "" {
		return configured, nil
	}

	saved, _, err := store.LoadDevice()
	if err != nil {
		u.Warn("Ignoring saved state: %v", err)
	}
	name, err := u.SelectDevice(names, saved)
	if err != nil {
		return "", err
	}
	if err := store.SaveDevice(name); err != nil {
		u.Warn("Could not save device: %v", err)
	}
	return name, nil
}

// learnControl runs the learner until it yields a control or the operator
// gives up. Interrupting during observation only ends the window.
func learnControl(ctx context.Context, u ui, store *state.Store, source midi.Source, clock clockwork.Clock, cfg *config.Config, relearn bool) (int, error) {
	var saved *int
	if !relearn {
		control, ok, err := store.LoadControl()
		if err != nil {
			u.Warn("Ignoring saved state: %v", err)
		}
		if ok {
			saved = &control
		}
	}

	l := learn.New(source, u, clock, learn.Options{
		Window:       cfg.Learn.Window,
		PollInterval: cfg.MIDI.PollInterval,
		Thresholds:   learn.Thresholds{MinSpan: cfg.Learn.MinRange, MinChanges: cfg.Learn.MinChanges},
	})
	l.OnProgress = func(p learn.Phase, controls int) {
		if p == learn.Observing && controls == 0 {
			u.Instructions()
		}
		u.LearnProgress(p, controls)
	}

	for {
		observeCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		control, err := l.Learn(observeCtx, saved)
		stop()
		if err == nil {
			log.Printf("learned control %d", control)
			return control, nil
		}
		if !errors.Is(err, learn.ErrNoSignificantMovement) {
			return 0, err
		}

		u.Warn("No significant movement detected. Move the crossfader across its full range.")
		retry, cerr := u.Confirm("Would you like to try again?", true)
		if cerr != nil || !retry {
			return 0, fmt.Errorf("learn: %w", err)
		}
		saved = nil
	}
}
