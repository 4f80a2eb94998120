package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ntmtrace banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct{ text, color string }{
		{"        _             _", "#818cf8"},
		{"  _ __ | |_ _ __ ___ | |_ _ __ __ _  ___ ___", "#a78bfa"},
		{" | '_ \\| __| '_ ` _ \\| __| '__/ _` |/ __/ _ \\", "#c084fc"},
		{" | | | | |_| | | | | | |_| | | (_| | (_|  __/", "#e879f9"},
		{" |_| |_|\\__|_| |_| |_|\\__|_|  \\__,_|\\___\\___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
