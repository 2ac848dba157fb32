package runner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/keypad/pkg/domain"
)

// keyWords maps named keys (case-insensitive) to actions.
var keyWords = map[string]domain.Action{
	"ac":        domain.Clear(),
	"c":         domain.Clear(),
	"clear":     domain.Clear(),
	"del":       domain.DeleteDigit(),
	"delete":    domain.DeleteDigit(),
	"backspace": domain.DeleteDigit(),
	"bs":        domain.DeleteDigit(),
	"x":         domain.ChooseOperation(domain.OperatorMultiply),
	"eq":        domain.Evaluate(),
}

// ParseKeys turns a line of key presses into actions.
//
// Digits and "." are one key each, operators accept their aliases
// (see domain.ParseOperator), "=" evaluates and "<" deletes. Letter runs are
// named keys such as AC, C, DEL or x. Spaces and commas separate keys.
// An unrecognised key fails the whole line with domain.ErrUnknownKey.
func ParseKeys(line string) ([]domain.Action, error) {
	var actions []domain.Action
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r) || r == ',':
			continue
		case (r >= '0' && r <= '9') || r == '.':
			actions = append(actions, domain.AddDigit(string(r)))
		case r == '=':
			actions = append(actions, domain.Evaluate())
		case r == '<':
			actions = append(actions, domain.DeleteDigit())
		case unicode.IsLetter(r):
			j := i
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			action, ok := keyWords[strings.ToLower(word)]
			if !ok {
				return nil, fmt.Errorf("%w: %q at position %d", domain.ErrUnknownKey, word, i+1)
			}
			actions = append(actions, action)
			i = j - 1
		default:
			op, err := domain.ParseOperator(string(r))
			if err != nil {
				return nil, fmt.Errorf("%w: %q at position %d", domain.ErrUnknownKey, string(r), i+1)
			}
			actions = append(actions, domain.ChooseOperation(op))
		}
	}
	return actions, nil
}

// FormatKeys renders actions back into the key notation accepted by ParseKeys.
func FormatKeys(actions []domain.Action) string {
	var b strings.Builder
	prevWord := false
	for i, a := range actions {
		s := a.String()
		word := utf8.RuneCountInString(s) > 1
		if i > 0 && (word || prevWord) {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		prevWord = word
	}
	return b.String()
}
