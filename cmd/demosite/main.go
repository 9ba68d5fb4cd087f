// Command demosite starts a local target site with deliberate defects for
// demonstrating the scanner.
// Usage: go run ./cmd/demosite [port]
// Default port: 9999
package main

import (
	"log"
	"os"
	"strconv"

	"github.com/SercanAkan88/siteguard/internal/demosite"
)

func main() {
	cfg := demosite.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	site := demosite.NewDemoSite(cfg)
	if err := site.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
