// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// Package main is the entry point for the tracepointctl admin binary.
package main

import (
	"os"

	"github.com/tomtom215/tracepoint/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
