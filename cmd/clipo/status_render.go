package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var titleCaser = cases.Title(language.English)

// titleLabel renders service identifiers (plan names, export styles, task
// states) for human output.
func titleLabel(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return "-"
	}
	return titleCaser.String(raw)
}

func colorizeOutput(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func stateColor(state string) string {
	switch strings.ToUpper(state) {
	case "SUCCESS":
		return ansiGreen
	case "FAILURE":
		return ansiRed
	case "PROCESSING":
		return ansiBlue
	case "PENDING":
		return ansiYellow
	default:
		return ""
	}
}

func renderState(state string, colorize bool) string {
	label := strings.ToUpper(strings.TrimSpace(state))
	if label == "" {
		label = "UNKNOWN"
	}
	if colorize {
		if color := stateColor(label); color != "" {
			return color + label + ansiReset
		}
	}
	return label
}

func renderStateLine(w io.Writer, state, detail string, colorize bool) {
	if detail != "" {
		fmt.Fprintf(w, "%s %s\n", renderState(state, colorize), detail)
		return
	}
	fmt.Fprintln(w, renderState(state, colorize))
}
