// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command pacerdemo animates a scene through a frame-paced Redrawer.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/pacer/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
