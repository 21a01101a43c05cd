package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ACT ASCII art banner to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"     _    ____ _____ ", "#34d399"},
		{"    / \\  / ___|_   _|", "#2dd4bf"},
		{"   / _ \\| |     | |  ", "#22d3ee"},
		{"  / ___ \\ |___  | |  ", "#38bdf8"},
		{" /_/   \\_\\____| |_|  ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  avatar pose editor v"+version).Faint())
	}
	fmt.Fprintln(w)
}
