// Command server runs the SiteGuard API together with the recurring scan
// scheduler.
// Usage: go run ./cmd/server [-config config.yaml]
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SercanAkan88/siteguard/internal/analyzer"
	"github.com/SercanAkan88/siteguard/internal/config"
	"github.com/SercanAkan88/siteguard/internal/engine"
	"github.com/SercanAkan88/siteguard/internal/fetcher"
	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/notifier"
	"github.com/SercanAkan88/siteguard/internal/orchestrator"
	"github.com/SercanAkan88/siteguard/internal/scheduler"
	"github.com/SercanAkan88/siteguard/internal/server"
	"github.com/SercanAkan88/siteguard/internal/store"
	"github.com/SercanAkan88/siteguard/internal/validator"
	"github.com/SercanAkan88/siteguard/internal/webclient"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logging.NewStdoutLogger("siteguard")

	wc, err := webclient.NewNetHTTPClient(logger, nil)
	if err != nil {
		log.Fatalf("creating webclient: %v", err)
	}
	defer wc.Close()

	f, err := fetcher.New(fetcher.DefaultConfig(), wc, logger)
	if err != nil {
		log.Fatalf("creating fetcher: %v", err)
	}
	a, err := analyzer.New(logger)
	if err != nil {
		log.Fatalf("creating analyzer: %v", err)
	}
	vcfg := validator.DefaultConfig()
	vcfg.Concurrency = cfg.ProbeConcurrency
	v, err := validator.New(vcfg, wc, logger)
	if err != nil {
		log.Fatalf("creating validator: %v", err)
	}
	eng, err := engine.New(f, a, v, logger)
	if err != nil {
		log.Fatalf("creating engine: %v", err)
	}

	st, err := store.NewSQLiteStore(cfg.DBPath, logger)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	not, err := notifier.NewSMTPNotifier(&notifier.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.SMTP.FromName,
	}, logger)
	if err != nil {
		log.Fatalf("creating notifier: %v", err)
	}

	orch, err := orchestrator.New(eng, st, not, logger)
	if err != nil {
		log.Fatalf("creating orchestrator: %v", err)
	}

	sched, err := scheduler.New(cfg.ScanInterval, orch, logger)
	if err != nil {
		log.Fatalf("creating scheduler: %v", err)
	}

	srv, err := server.NewServer(server.Config{ListenAddr: cfg.ListenAddr}, eng, orch, st, logger)
	if err != nil {
		log.Fatalf("creating server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sched.Run(ctx)

	httpSrv := srv.HTTPServer()
	go func() {
		<-ctx.Done()
		_ = httpSrv.Shutdown(context.Background())
	}()

	logger.Info("siteguard listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
