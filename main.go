// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// whiteprint turns a natural-language house description into a floor plan
// image using a large language model.
package main

import (
	"os"

	"github.com/jeranaias/whiteprint/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
