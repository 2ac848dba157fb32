package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/keypad/internal/runtime"
	"github.com/aretw0/keypad/pkg/domain"
)

func TestNewDisplay(t *testing.T) {
	tests := []struct {
		name  string
		state domain.State
		want  Display
	}{
		{"Empty", domain.State{}, Display{}},
		{"Typing", domain.State{CurrentOperand: domain.Operand("12")}, Display{Current: "12"}},
		{"Pending", domain.State{PreviousOperand: domain.Operand("12"), Operator: domain.OperatorDivide}, Display{Previous: "12 ÷"}},
		{"Full", domain.State{
			PreviousOperand: domain.Operand("3"),
			Operator:        domain.OperatorAdd,
			CurrentOperand:  domain.Operand("4"),
		}, Display{Previous: "3 +", Current: "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewDisplay(tt.state); got != tt.want {
				t.Errorf("NewDisplay() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out,
		WithTextHandlerRenderer(func(d Display) string {
			return "Rendered: " + d.Current
		}),
	)

	err := handler.Output(context.Background(), NewFrame("", domain.State{CurrentOperand: domain.Operand("7")}))
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if out.String() != "Rendered: 7\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  1+2  \n"), out, WithTextHandlerMaxInputSize(3))

	val, err := handler.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if val != "1+2" {
		t.Errorf("Expected '1+2', got %q", val)
	}

	if _, err := handler.Input(context.Background()); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
	if !strings.HasPrefix(out.String(), "> ") {
		t.Errorf("Expected prompt, got %q", out.String())
	}
}

func TestTextHandler_InputTooLargeRetries(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("123456\n12\n"), out, WithTextHandlerMaxInputSize(4))

	val, err := handler.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if val != "12" {
		t.Errorf("Expected retry to return '12', got %q", val)
	}
	if !strings.Contains(out.String(), "Please try again") {
		t.Errorf("Expected retry hint, got %q", out.String())
	}
}

func TestJSONHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), out)
	ctx := context.Background()

	state := domain.State{PreviousOperand: domain.Operand("8"), Operator: domain.OperatorDivide}
	if err := handler.Output(ctx, NewFrame("s1", state)); err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if err := handler.SystemOutput(ctx, "hello"); err != nil {
		t.Fatalf("SystemOutput failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 JSON lines, got %d: %q", len(lines), out.String())
	}

	var frame JSONMessage
	if err := json.Unmarshal([]byte(lines[0]), &frame); err != nil {
		t.Fatalf("invalid JSON %q: %v", lines[0], err)
	}
	if frame.Type != MessageFrame || frame.Frame == nil || frame.SessionID != "s1" || frame.Display.Previous != "8 ÷" {
		t.Errorf("unexpected frame %+v", frame)
	}
	if !strings.Contains(lines[0], `"previous_operand":"8"`) {
		t.Errorf("Expected state fields on the wire, got %s", lines[0])
	}

	var sys JSONMessage
	if err := json.Unmarshal([]byte(lines[1]), &sys); err != nil {
		t.Fatalf("invalid JSON %q: %v", lines[1], err)
	}
	if sys.Type != MessageSystem || sys.Message != "hello" {
		t.Errorf("unexpected system message %+v", sys)
	}
}

func TestJSONHandler_Input(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"Raw Keys", "12+3=", "12+3="},
		{"JSON String", `"4/2="`, "4/2="},
		{"Action Object", `{"type":"choose-operation","operator":"÷"}`, "÷"},
		{"Action Array", `[{"type":"clear"},{"type":"add-digit","digit":"5"},{"type":"evaluate"}]`, "AC 5="},
		{"Malformed Action", `{"type":"add-digit","digit":"12"}`, `{"type":"add-digit","digit":"12"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewJSONHandler(strings.NewReader(tt.line+"\n"), &bytes.Buffer{})
			got, err := handler.Input(context.Background())
			if err != nil {
				t.Fatalf("Input failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Input() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSONHandler_Run(t *testing.T) {
	input := strings.NewReader(`"9-"` + "\n" + `{"type":"add-digit","digit":"4"}` + "\n" + `{"type":"evaluate"}` + "\n")
	out := &bytes.Buffer{}

	r := NewRunner(
		WithEngine(runtime.NewEngine()),
		WithInputHandler(NewJSONHandler(input, out)),
	)
	state := runWithTimeout(t, r)

	if state.Current() != "5" {
		t.Errorf("Expected 5, got %+v", state)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Errorf("Expected one frame per line plus the initial frame, got %d", len(lines))
	}
}
