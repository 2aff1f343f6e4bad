// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// NewProgressBar creates a terminal progress bar for a build of total
// files, silent when stdout is not a terminal (e.g. piped CI output).
func NewProgressBar(total int, description string) *progressbar.ProgressBar {
	if color.NoColor {
		return progressbar.DefaultSilent(int64(total), description)
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
