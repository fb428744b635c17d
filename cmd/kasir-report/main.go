// Command kasir-report renders a report window as an xlsx workbook
// straight from the ledger, without going through the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

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

	var (
		startFlag  = flag.String("start", "", "window start date (YYYY-MM-DD)")
		endFlag    = flag.String("end", "", "window end date (YYYY-MM-DD)")
		outFlag    = flag.String("out", "report.xlsx", "output file path")
		reportFlag = flag.String("report", "sales", "report kind: sales or cashflow")
		detailFlag = flag.Bool("detail", false, "one row per sale entry instead of the per-product summary")
	)
	flag.Parse()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: "kasir-report",
	})
	applog.SetDefault(logger)

	if err := run(*startFlag, *endFlag, *outFlag, *reportFlag, *detailFlag, logger); err != nil {
		logger.Error("Report failed", "error", err)
		os.Exit(1)
	}
}

func run(startStr, endStr, out, kind string, detail bool, logger *applog.Logger) error {
	start, err := core.ParseDate(startStr)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := core.ParseDate(endStr)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	window := core.DateRange{Start: start, End: end}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	ctx := context.Background()
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		DataDir:      cfg.DataDir,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		return fmt.Errorf("initialize ledger backend: %w", err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	}()

	cat := catalog.New(cfg.CatalogPath)
	sales := services.NewSalesService(cat, result.Store, nil)
	expenses := services.NewExpenseService(result.Store, nil)
	cash := services.NewCashService(result.Store, result.Store, result.Store, nil)
	builder := reports.NewBuilder(cat, sales, expenses, cash)

	var (
		raw   []byte
		total int64
	)
	switch kind {
	case "sales":
		if detail {
			rows, err := builder.DetailedSales(ctx, window)
			if err != nil {
				return err
			}
			for _, row := range rows {
				total += row.Total
			}
			raw, err = export.DetailedSales(rows, window)
			if err != nil {
				return err
			}
		} else {
			report, err := builder.SalesReport(ctx, window)
			if err != nil {
				return err
			}
			total = report.GrandTotal
			raw, err = export.SalesSummary(report, window)
			if err != nil {
				return err
			}
		}
	case "cashflow":
		lines, err := builder.CashflowStatement(ctx, window)
		if err != nil {
			return err
		}
		total = lines[len(lines)-1].Amount
		raw, err = export.CashflowStatement(lines, window)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown report kind %q", kind)
	}

	if err := os.WriteFile(out, raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	logger.Info("Report written",
		"report", kind,
		"start", window.Start.ISO(),
		"end", window.End.ISO(),
		"out", out,
		"total", core.FormatAmount(total),
		"bytes", len(raw))
	return nil
}
