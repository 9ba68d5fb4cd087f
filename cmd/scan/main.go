// Command scan runs a one-shot website health scan from the command line.
// Usage:
//
//	go run ./cmd/scan https://example.com
//	go run ./cmd/scan -quick example.com
//	go run ./cmd/scan -json example.com
//	go run ./cmd/scan -email owner@example.com example.com
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/SercanAkan88/siteguard/internal/analyzer"
	"github.com/SercanAkan88/siteguard/internal/cli"
	"github.com/SercanAkan88/siteguard/internal/config"
	"github.com/SercanAkan88/siteguard/internal/engine"
	"github.com/SercanAkan88/siteguard/internal/fetcher"
	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/model"
	"github.com/SercanAkan88/siteguard/internal/notifier"
	"github.com/SercanAkan88/siteguard/internal/validator"
	"github.com/SercanAkan88/siteguard/internal/webclient"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "siteguard-scan: %v\n\n", err)
		fmt.Fprintln(os.Stderr, "Usage: scan [-quick] [-json] [-email address] <website-url>")
		os.Exit(2)
	}

	target := args.URL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}

	// The CLI keeps its own output clean; component logs are suppressed
	// unless -json is off and something goes wrong.
	logger := &quietLogger{}

	wc, err := webclient.NewNetHTTPClient(logger, nil)
	if err != nil {
		fatal(err)
	}
	defer wc.Close()

	f, err := fetcher.New(fetcher.DefaultConfig(), wc, logger)
	if err != nil {
		fatal(err)
	}

	if args.Quick {
		result := f.QuickCheck(context.Background(), target)
		if args.JSON {
			printJSON(result)
			return
		}
		if result.Online {
			fmt.Printf("%s is online (status %d, %dms)\n", target, result.StatusCode, result.LoadTimeMs)
		} else {
			fmt.Printf("%s is NOT reachable: %s\n", target, result.Error)
			os.Exit(1)
		}
		return
	}

	a, err := analyzer.New(logger)
	if err != nil {
		fatal(err)
	}
	v, err := validator.New(validator.DefaultConfig(), wc, logger)
	if err != nil {
		fatal(err)
	}
	eng, err := engine.New(f, a, v, logger)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Scanning %s ...\n\n", target)
	result := eng.Scan(context.Background(), target)

	if args.JSON {
		printJSON(result)
	} else {
		printReport(result)
	}

	if args.EmailTo != "" {
		sendReport(args.EmailTo, target, result)
	}

	if result.Status == model.ScanCritical || result.Status == model.ScanError {
		os.Exit(1)
	}
}

func printReport(result *model.ScanResult) {
	fmt.Printf("Overall status: %s\n", strings.ToUpper(string(result.Status)))
	fmt.Printf("Load time:      %dms\n", result.Checks.LoadTime)
	fmt.Printf("Links found:    %d\n", result.Summary.TotalLinks)
	fmt.Printf("Images found:   %d\n", result.Summary.TotalImages)
	fmt.Printf("Forms found:    %d\n", result.Summary.TotalForms)
	fmt.Println()

	if len(result.Issues) == 0 {
		fmt.Println("No issues found. Looking good!")
		return
	}

	fmt.Printf("Found %d issue(s):\n\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Printf("[%s] %s\n", strings.ToUpper(string(issue.Severity)), issue.Title)
		fmt.Printf("    %s\n\n", issue.Description)
	}
}

func sendReport(to, target string, result *model.ScanResult) {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "email not sent: %v\n", err)
		return
	}
	not, err := notifier.NewSMTPNotifier(&notifier.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.SMTP.FromName,
	}, logging.NewStdoutLogger("scan-cli"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "email not sent: %v\n", err)
		return
	}
	if len(result.Issues) == 0 {
		fmt.Println("No issues found; no email sent.")
		return
	}
	if err := not.SendAlertEmail(context.Background(), to, target, target, result.Issues); err != nil {
		fmt.Fprintf(os.Stderr, "email not sent: %v\n", err)
		return
	}
	fmt.Printf("Report sent to %s\n", to)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "siteguard-scan: %v\n", err)
	os.Exit(1)
}

// quietLogger drops debug/info noise and keeps warnings and errors on
// stderr so CLI output stays readable.
type quietLogger struct{}

func (q *quietLogger) Debug(msg string, fields ...logging.Field) {}
func (q *quietLogger) Info(msg string, fields ...logging.Field)  {}
func (q *quietLogger) Warn(msg string, fields ...logging.Field) {
	fmt.Fprintf(os.Stderr, "warn: %s\n", msg)
}
func (q *quietLogger) Error(msg string, fields ...logging.Field) {
	fmt.Fprintf(os.Stderr, "error: %s\n", msg)
}
func (q *quietLogger) With(fields ...logging.Field) logging.Logger { return q }
