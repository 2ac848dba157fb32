package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/internal/presentation/tui"
	"github.com/aretw0/keypad/pkg/runner"
	"github.com/muesli/termenv"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	SessionID    string
	JSON         bool
	Headless     bool // no banner, prompt or styling (piped input)
	Fresh        bool // clear the session before starting
	MaxInputSize int
}

// Execute runs the interactive keypad loop over in/out.
func Execute(ctx context.Context, host *Host, opts RunOptions, in io.Reader, out io.Writer) error {
	if opts.Fresh && opts.SessionID != "" {
		if err := host.Engine.Reset(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session %s: %w", opts.SessionID, err)
		}
	}

	rOpts := []runner.Option{
		runner.WithEngine(host.Engine),
		runner.WithLogger(host.Logger),
		runner.WithSessionID(opts.SessionID),
		runner.WithInputHandler(createHandler(opts, in, out)),
	}

	if !opts.JSON && !opts.Headless {
		tui.PrintBanner(out, keypad.Version)
		rOpts = append(rOpts, runner.WithHelp(tui.RenderHelp()))
		if opts.SessionID != "" {
			printSystemMessage(out, "Session '%s' active. Type 'help' for keys.", opts.SessionID)
		} else {
			printSystemMessage(out, "Type 'help' for keys.")
		}
	}

	r := runner.NewRunner(rOpts...)
	state, err := r.Run(ctx)
	if err != nil {
		return err
	}

	host.Logger.Debug("Run finished", "session_id", opts.SessionID, "display", state.Current())
	return nil
}

func createHandler(opts RunOptions, in io.Reader, out io.Writer) runner.IOHandler {
	if opts.JSON {
		h := runner.NewJSONHandler(in, out)
		h.MaxInputSize = opts.MaxInputSize
		return h
	}

	hOpts := []runner.TextHandlerOption{runner.WithTextHandlerMaxInputSize(opts.MaxInputSize)}
	if opts.Headless {
		hOpts = append(hOpts, runner.WithTextHandlerPrompt(""))
	} else {
		hOpts = append(hOpts, runner.WithTextHandlerRenderer(tui.NewDisplayRenderer(termenv.ColorProfile())))
	}
	return runner.NewTextHandler(in, out, hOpts...)
}
