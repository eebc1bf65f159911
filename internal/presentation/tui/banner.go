package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{"  _        _", "#818cf8"},
	{" | |_ __ _| | ___", "#a78bfa"},
	{" | __/ _` | |/ _ \\", "#c084fc"},
	{" | || (_| | |  __/", "#e879f9"},
	{"  \\__\\__,_|_|\\___|", "#f472b6"},
}

// PrintBanner writes the Tale ASCII art banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
