// Command kasir-worker consumes ledger change notifications and keeps
// an up-to-date cashflow workbook for the changed month on disk, so
// the counter always has a current statement without asking the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"kasir/internal/amqp"
	"kasir/internal/backend"
	"kasir/internal/catalog"
	"kasir/internal/config"
	"kasir/internal/core"
	"kasir/internal/export"
	applog "kasir/internal/log"
	"kasir/internal/reports"
	"kasir/internal/services"
)

func main() {
	_ = godotenv.Load()

	outDir := flag.String("out-dir", "./exports", "directory for refreshed workbooks")
	flag.Parse()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: "kasir-worker",
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required: the worker is driven by ledger change notifications")
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Error("Failed to create output directory", "error", err, "dir", *outDir)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		DataDir:      cfg.DataDir,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	}()

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := events.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	}()

	cat := catalog.New(cfg.CatalogPath)
	sales := services.NewSalesService(cat, result.Store, nil)
	expenses := services.NewExpenseService(result.Store, nil)
	cash := services.NewCashService(result.Store, result.Store, result.Store, nil)
	builder := reports.NewBuilder(cat, sales, expenses, cash)

	logger.Info("Starting kasir-worker", "queue", cfg.AMQPQueue, "out_dir", *outDir)

	handler := func(msg *amqp.LedgerChangedMessage) error {
		return refreshMonth(ctx, builder, msg, *outDir)
	}
	if err := events.ConsumeLedgerChanged(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

// refreshMonth rewrites the cashflow workbook covering the changed
// date's month up to that date. Errors requeue the message.
func refreshMonth(ctx context.Context, builder *reports.Builder, msg *amqp.LedgerChangedMessage, outDir string) error {
	day, err := core.ParseDate(msg.Date)
	if err != nil {
		return fmt.Errorf("message date %q: %w", msg.Date, err)
	}
	window := core.DateRange{
		Start: core.NewDate(day.Year(), int(day.Month()), 1),
		End:   day,
	}

	lines, err := builder.CashflowStatement(ctx, window)
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	raw, err := export.CashflowStatement(lines, window)
	if err != nil {
		return fmt.Errorf("render workbook: %w", err)
	}

	name := fmt.Sprintf("cashflow_%04d-%02d.xlsx", day.Year(), int(day.Month()))
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
