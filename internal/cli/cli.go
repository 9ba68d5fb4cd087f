package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// CLIArgs are the command-line arguments for a one-shot scan.
type CLIArgs struct {
	// URL is the website to scan (required, positional).
	URL string

	// Quick limits the run to a reachability check.
	Quick bool

	// JSON prints the raw result instead of the human-readable report.
	JSON bool

	// EmailTo, when set, sends the findings to this address after the scan.
	EmailTo string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by
// passing arbitrary slices. The function is deterministic and does not
// read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("siteguard-scan", flag.ContinueOnError)
	var (
		quick   = fs.Bool("quick", false, "Quick check only (just verify site is online)")
		jsonOut = fs.Bool("json", false, "Output results as JSON")
		emailTo = fs.String("email", "", "Send results to this email address")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() < 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return nil, fmt.Errorf("missing required website URL argument")
	}

	return &CLIArgs{
		URL:     fs.Arg(0),
		Quick:   *quick,
		JSON:    *jsonOut,
		EmailTo: *emailTo,
		RawArgs: args,
	}, nil
}
