// Command tool is a developer helper for local testing: it mints activation
// links and JWTs with the configured secret, and hashes passwords for seeding.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
