package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/income_converter/internal/adapters/dateparse"
	"github.com/SscSPs/income_converter/internal/adapters/nbp"
	"github.com/SscSPs/income_converter/internal/core/services"
	"github.com/SscSPs/income_converter/internal/handlers"
	"github.com/SscSPs/income_converter/internal/platform/logger"
	"github.com/SscSPs/income_converter/pkg/config"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitRowsSkipped = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prompts := term.IsTerminal(int(os.Stdin.Fd()))
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, prompts)
	stop()
	os.Exit(code)
}

// run wires the converter and processes one session. It returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, prompts bool) int {
	cfg, err := config.LoadConfig(args)
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	mode := "interactive"
	if cfg.BatchMode() {
		mode = "batch"
	}
	log, _ := logger.WithRun(logger.New(stderr, cfg.LogLevel, cfg.IsProduction), mode)
	slog.SetDefault(log)
	ctx = logger.WithLogger(ctx, log)
	log.Debug("Configuration loaded",
		slog.String("api_url", cfg.APIBaseURL),
		slog.String("table", cfg.Table),
		slog.Int("max_lookback_days", cfg.MaxLookbackDays),
		slog.Int("service_retries", cfg.ServiceRetries),
		slog.Int("rate_cache_size", cfg.RateCacheSize))

	client, err := nbp.NewClient(nbp.Config{
		BaseURL:   cfg.APIBaseURL,
		Table:     cfg.Table,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.RateLimit,
	}, log)
	if err != nil {
		log.Error("Failed to create rate service client", slog.String("error", err.Error()))
		return exitFailure
	}

	dates := dateparse.NewParser()
	svc, err := services.NewContainer(cfg, client, dates)
	if err != nil {
		log.Error("Failed to create services", slog.String("error", err.Error()))
		return exitFailure
	}
	parser, accumulator := svc.Parser, svc.Accumulator
	console := handlers.NewConsole(stdout, cfg.LocalCurrency)

	var source handlers.Source
	if cfg.BatchMode() {
		f, err := os.Open(cfg.IncomeFile)
		if err != nil {
			log.Error("Failed to open income file", slog.String("file", cfg.IncomeFile), slog.String("error", err.Error()))
			return exitFailure
		}
		defer f.Close()
		source = handlers.NewBatchSource(f, console)
	} else {
		source = handlers.NewInteractiveSource(stdin, console, dates, handlers.InteractiveOptions{
			Total:           accumulator.GrandTotal,
			DefaultCurrency: parser.DefaultCurrency,
			Prompts:         prompts,
		})
	}

	log.Info("Run started")
	stats, err := handlers.NewRunner(source, parser, accumulator).Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Warn("Run interrupted", slog.Int("recorded", stats.Recorded))
		} else {
			log.Error("Run aborted", slog.String("error", err.Error()))
		}
		return exitFailure
	}

	console.Report(accumulator.Report())

	if cfg.Strict && stats.Skipped > 0 {
		log.Warn("Rows were skipped in strict mode", slog.Int("skipped", stats.Skipped))
		return exitRowsSkipped
	}
	return exitOK
}
