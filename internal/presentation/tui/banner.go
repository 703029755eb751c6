package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Arbor banner and version to w.
func PrintBanner(w io.Writer, version string) {
	o := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"     _         _             ", "#86efac"},
		{"    / \\   _ __| |__   ___  _ __", "#4ade80"},
		{"   / _ \\ | '__| '_ \\ / _ \\| '__|", "#22c55e"},
		{"  / ___ \\| |  | |_) | (_) | |", "#16a34a"},
		{" /_/   \\_\\_|  |_.__/ \\___/|_|", "#15803d"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, o.String(l.text).Foreground(o.Color(l.color)))
	}
	fmt.Fprintln(w, o.String("  dialogue tree explorer "+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
