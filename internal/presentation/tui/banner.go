package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the keypad banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _                               _ ", "#818cf8"},
		{"| | _____ _   _ _ __   __ _  __| |", "#a78bfa"},
		{"| |/ / _ \\ | | | '_ \\ / _` |/ _` |", "#c084fc"},
		{"|   <  __/ |_| | |_) | (_| | (_| |", "#e879f9"},
		{"|_|\\_\\___|\\__, | .__/ \\__,_|\\__,_|", "#f472b6"},
		{"          |___/|_|                ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, p.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
