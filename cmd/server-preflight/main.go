// Package main provides the entry point for the server-preflight CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/serverpreflight/cmd/server-preflight/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
