// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the CLI's colorized, isatty-aware presentation
// helpers: headers, status lines, and number formatting. It mirrors the
// surface cmd/cie's verbs call (ui.Header, ui.Info, ui.Success, ui.Warning,
// ui.CountText, ui.DimText, ui.Label, ui.Cyan) even though the teacher's
// own internal/ui source was not present in the retrieval pack — this is
// a from-usage reconstruction built on the same fatih/color + go-isatty
// stack the teacher's go.mod declares.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	Cyan   = color.New(color.FgCyan)
	Green  = color.New(color.FgGreen, color.Bold)
	Yellow = color.New(color.FgYellow, color.Bold)
	Red    = color.New(color.FgRed, color.Bold)
	Dim    = color.New(color.Faint)
	Bold   = color.New(color.Bold)
)

// Init configures global color behavior: disabled when noColor is set or
// stdout is not a terminal, matching the teacher's --no-color flag +
// isatty detection pattern.
func Init(noColor bool) {
	if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Header prints a bold section title.
func Header(title string) {
	fmt.Println()
	Bold.Println(title)
	Dim.Println(dashes(len(title)))
}

// SubHeader prints a smaller, unboxed section title.
func SubHeader(title string) {
	Bold.Println(title)
}

func dashes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}

// Info prints an informational line.
func Info(msg string) { fmt.Println(msg) }

// Infof prints a formatted informational line.
func Infof(format string, args ...any) { fmt.Printf(format+"\n", args...) }

// Success prints a green confirmation line.
func Success(msg string) { Green.Println(msg) }

// Successf prints a formatted green confirmation line.
func Successf(format string, args ...any) { Green.Printf(format+"\n", args...) }

// Warning prints a yellow warning line to stderr.
func Warning(msg string) { Yellow.Fprintln(os.Stderr, msg) }

// Warningf prints a formatted yellow warning line to stderr.
func Warningf(format string, args ...any) { Yellow.Fprintf(os.Stderr, format+"\n", args...) }

// Error prints a red error line to stderr.
func Error(msg string) { Red.Fprintln(os.Stderr, msg) }

// Errorf prints a formatted red error line to stderr.
func Errorf(format string, args ...any) { Red.Fprintf(os.Stderr, format+"\n", args...) }

// Label renders a bold field label (e.g. "Project ID:").
func Label(text string) string { return Bold.Sprint(text) }

// DimText renders de-emphasized supporting text.
func DimText(text string) string { return Dim.Sprint(text) }

// CountText renders a count, dimmed when zero to de-emphasize empty results.
func CountText(n int) string {
	s := fmt.Sprintf("%d", n)
	if n == 0 {
		return Dim.Sprint(s)
	}
	return s
}
