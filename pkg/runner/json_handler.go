package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/keypad/pkg/domain"
)

// Message types emitted by JSONHandler.
const (
	MessageFrame  = "frame"
	MessageSystem = "system"
)

// JSONMessage is one line of JSONHandler output.
type JSONMessage struct {
	Type string `json:"type"`
	*Frame
	Message string `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// Each input line may be a JSON string of keys ("12+3="), a single action
// object ({"type":"add-digit","digit":"1"}), an array of action objects, or
// raw key text.
type JSONHandler struct {
	Reader       *bufio.Reader
	Writer       io.Writer
	Encoder      *json.Encoder
	MaxInputSize int
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: enc,
	}
}

func (h *JSONHandler) Output(ctx context.Context, frame Frame) error {
	return h.Encoder.Encode(JSONMessage{Type: MessageFrame, Frame: &frame})
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}

	text, err = SanitizeInputLimit(strings.TrimSpace(text), h.MaxInputSize)
	if err != nil {
		return "", err
	}
	return decodeKeyLine(text), nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(JSONMessage{Type: MessageSystem, Message: msg})
}

// decodeKeyLine normalizes a JSON input line into key notation.
// Lines that are not JSON, or carry malformed actions, are returned unchanged
// and rejected later by ParseKeys.
func decodeKeyLine(text string) string {
	if text == "" {
		return text
	}

	switch text[0] {
	case '"':
		var keys string
		if err := json.Unmarshal([]byte(text), &keys); err == nil {
			return keys
		}
	case '{':
		var action domain.Action
		if err := json.Unmarshal([]byte(text), &action); err == nil && action.Validate() == nil {
			return FormatKeys([]domain.Action{action})
		}
	case '[':
		var actions []domain.Action
		if err := json.Unmarshal([]byte(text), &actions); err == nil && validActions(actions) {
			return FormatKeys(actions)
		}
	}
	return text
}

func validActions(actions []domain.Action) bool {
	for _, a := range actions {
		if a.Validate() != nil {
			return false
		}
	}
	return true
}
