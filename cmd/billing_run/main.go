package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/bootstrap"
	"github.com/SpacksD/dulmar1-sub001/internal/config"
	"github.com/SpacksD/dulmar1-sub001/pkg/billing"
	"github.com/SpacksD/dulmar1-sub001/pkg/database"

	"github.com/fatih/color"
)

// Runs one billing period by hand, e.g. to re-send a month the cron job missed.
func main() {
	now := time.Now().UTC()
	month := flag.Int("month", int(now.Month()), "billing month (1-12)")
	year := flag.Int("year", now.Year(), "billing year")
	overdue := flag.Bool("overdue", false, "also flag unpaid invoices past their due date")
	flag.Parse()

	cfg := config.Load()
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection,
		database.WithPool(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()
	defer container.Logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	color.Cyan("Billing run for %s\n", billing.PeriodLabel(*month, *year))

	summary, err := container.BillingService.GenerateInvoices(ctx, *month, *year)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	for _, item := range summary.Items {
		switch item.Status {
		case billing.ItemGenerated:
			color.Green("  + %s %s (email sent: %t)", item.SubscriptionId, item.InvoiceNumber, item.EmailSent)
		case billing.ItemSkipped:
			color.Yellow("  = %s skipped: %s", item.SubscriptionId, item.Reason)
		case billing.ItemFailed:
			color.Red("  ! %s failed: %s", item.SubscriptionId, item.Reason)
		}
	}

	color.Cyan("\nSubscriptions: %d  Generated: %d  Emails: %d  Skipped: %d  Errors: %d",
		summary.TotalSubscriptions, summary.GeneratedCount, summary.EmailsSent, len(summary.Skipped), len(summary.Errors))

	if *overdue {
		result, err := container.BillingService.MarkOverdue(ctx)
		if err != nil {
			color.Red("Overdue sweep failed: %v", err)
			os.Exit(1)
		}
		color.Yellow("Invoices marked overdue: %d", result.Marked)
	}

	if len(summary.Errors) > 0 {
		os.Exit(2)
	}
}
