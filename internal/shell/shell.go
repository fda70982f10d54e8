package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/soyeahso/duckshell/internal/hooks"
	"github.com/soyeahso/duckshell/internal/logging"
)

// Options configures a Shell. History and Hooks may be nil.
type Options struct {
	Dispatcher *Dispatcher
	Reader     LineReader
	History    History
	Hooks      *hooks.Manager
	Out        io.Writer
	Log        *logging.Logger
}

// Shell is the interactive read-dispatch loop.
type Shell struct {
	dispatcher *Dispatcher
	reader     LineReader
	history    History
	hooks      *hooks.Manager
	out        io.Writer
	log        *logging.Logger
}

// New creates a shell.
func New(opts Options) *Shell {
	return &Shell{
		dispatcher: opts.Dispatcher,
		reader:     opts.Reader,
		history:    opts.History,
		hooks:      opts.Hooks,
		out:        opts.Out,
		log:        opts.Log.Sub("shell"),
	}
}

// Run reads and dispatches lines until the input ends or the user types
// exit. Only a broken line reader makes it return an error.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, Banner())
	s.hooks.Emit(ctx, hooks.EventShellStart, nil)
	s.log.Info().Msg("shell started")

	lines := 0
	defer func() {
		s.hooks.Emit(ctx, hooks.EventShellStop, map[string]any{"lines": lines})
		s.log.Info().Int("lines", lines).Msg("shell stopped")
	}()

	for {
		line, err := s.reader.ReadLine()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(s.out, "Quack! Exiting DuckShell.")
				return nil
			}
			s.log.Error().Err(err).Msg("reading input")
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		lines++
		s.record(ctx, line)

		if err := s.dispatcher.Dispatch(ctx, line); errors.Is(err, ErrExit) {
			fmt.Fprintln(s.out, "Quack! Exiting DuckShell.")
			return nil
		}
	}
}

func (s *Shell) record(ctx context.Context, line string) {
	if s.history == nil {
		return
	}
	if err := s.history.AddHistory(ctx, line); err != nil {
		s.log.Warn().Err(err).Msg("recording history")
	}
}
