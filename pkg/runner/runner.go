package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

// KeyHelp is the markdown reference printed by the "help" command.
const KeyHelp = `# Keys

| Key | Action |
|-----|--------|
| ` + "`0`-`9`" + ` | append a digit |
| ` + "`.`" + ` | decimal point (once per operand) |
| ` + "`+` `-` `*` `/`" + ` | choose an operator (` + "`x` `×` `÷` `−`" + ` also work) |
| ` + "`=`" + ` | evaluate |
| ` + "`AC` `C`" + ` | clear everything |
| ` + "`DEL` `<`" + ` | delete the last digit |

Several keys may be typed on one line, e.g. ` + "`12+3=`" + `.
Type ` + "`exit`" + ` or ` + "`quit`" + ` to leave.
`

// Runner handles the read-dispatch-display loop of a keypad engine using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// SessionID binds the run to a stored session. Empty means ephemeral.
	SessionID string

	// Help is printed for the "help" command.
	Help string

	engine        ports.StatelessEngine
	initialState  *domain.State
	handleSignals bool
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
		Help:   KeyHelp,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the loop until the input ends, the user exits or ctx is done.
// It returns the last displayed state.
func (r *Runner) Run(ctx context.Context) (domain.State, error) {
	if r.engine == nil {
		return domain.State{}, fmt.Errorf("runner has no engine (use WithEngine)")
	}
	handler := r.resolveHandler()

	if r.handleSignals {
		signals := NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	state, err := r.resolveInitialState(ctx)
	if err != nil {
		return state, err
	}

	for {
		if err := handler.Output(ctx, NewFrame(r.SessionID, state)); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}

		for {
			actions, done, err := r.readActions(ctx, handler)
			if err != nil || done {
				return state, err
			}

			next, err := r.apply(ctx, state, actions)
			if errors.Is(err, domain.ErrInvalidAction) {
				if err := handler.SystemOutput(ctx, err.Error()); err != nil {
					return state, err
				}
				continue
			}
			if err != nil {
				return state, err
			}

			r.Logger.Debug("Keys applied", "session_id", r.SessionID, "keys", FormatKeys(actions))
			state = next
			break
		}
	}
}

// readActions reads lines until one holds keys. Commands and input errors are
// answered through handler.SystemOutput. done reports that the run should end.
func (r *Runner) readActions(ctx context.Context, handler IOHandler) (actions []domain.Action, done bool, err error) {
	for {
		line, err := handler.Input(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil, true, nil
			case ctx.Err() != nil:
				r.Logger.Debug("Runner input: Context cancelled", "err", ctx.Err())
				return nil, true, nil
			case errors.Is(err, ErrInputTooLarge), errors.Is(err, ErrInvalidUTF8):
				if err := handler.SystemOutput(ctx, err.Error()); err != nil {
					return nil, true, err
				}
				continue
			}
			return nil, true, fmt.Errorf("input error: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "exit", "quit":
			return nil, true, nil
		case "help", "?":
			if err := handler.SystemOutput(ctx, r.Help); err != nil {
				return nil, true, err
			}
			continue
		}

		actions, err := ParseKeys(line)
		if err != nil {
			if err := handler.SystemOutput(ctx, err.Error()); err != nil {
				return nil, true, err
			}
			continue
		}
		return actions, false, nil
	}
}

func (r *Runner) apply(ctx context.Context, state domain.State, actions []domain.Action) (domain.State, error) {
	if sessions, ok := r.sessions(); ok {
		return sessions.Apply(ctx, r.SessionID, actions...)
	}
	return DispatchActions(ctx, r.engine, state, actions...)
}

func (r *Runner) sessions() (ports.SessionEngine, bool) {
	if r.SessionID == "" {
		return nil, false
	}
	s, ok := r.engine.(ports.SessionEngine)
	return s, ok
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r.Handler
}

func (r *Runner) resolveInitialState(ctx context.Context) (domain.State, error) {
	if sessions, ok := r.sessions(); ok {
		state, err := sessions.Start(ctx, r.SessionID)
		if err != nil {
			return domain.State{}, fmt.Errorf("failed to start session %s: %w", r.SessionID, err)
		}
		return state, nil
	}
	if r.initialState != nil {
		return *r.initialState, nil
	}
	return domain.State{}, nil
}
