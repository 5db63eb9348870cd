// This is the main entry point for the mozcgo CLI.
// Build with: go build -o bin/mozcgo ./cmd/mozcgo
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
