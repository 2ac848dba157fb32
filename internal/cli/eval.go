package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/aretw0/keypad/pkg/runner"
)

// Eval applies a key line to an empty display and prints the result.
// With jsonOut the whole frame is printed instead of the current line.
func Eval(ctx context.Context, engine ports.StatelessEngine, keys string, jsonOut bool, out io.Writer) error {
	frame, err := runner.DispatchKeys(ctx, engine, domain.State{}, keys)
	if err != nil {
		return err
	}
	return printFrame(out, *frame, jsonOut)
}

func printFrame(out io.Writer, frame runner.Frame, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		return enc.Encode(frame)
	}
	if frame.Display.Previous != "" {
		if _, err := fmt.Fprintln(out, frame.Display.Previous); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out, frame.Display.Current)
	return err
}
