// Package billing generates the monthly invoices of active subscriptions.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/mailer"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/pdf"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultDueDays = 7
	MinBillingYear = 2000
)

var (
	ErrInvalidPeriod   = errors.New("invalid billing period")
	ErrServiceNotFound = errors.New("service not found")
)

type ItemStatus string

const (
	ItemGenerated ItemStatus = "generated"
	ItemSkipped   ItemStatus = "skipped"
	ItemFailed    ItemStatus = "failed"
)

type SkipEntry struct {
	SubscriptionId        uuid.UUID `json:"subscription_id"`
	Reason                string    `json:"reason"`
	ExistingInvoiceNumber string    `json:"existing_invoice_number,omitempty"`
}

type ItemResult struct {
	SubscriptionId uuid.UUID  `json:"subscription_id"`
	Status         ItemStatus `json:"status"`
	InvoiceId      *uuid.UUID `json:"invoice_id,omitempty"`
	InvoiceNumber  string     `json:"invoice_number,omitempty"`
	EmailSent      bool       `json:"email_sent"`
	Reason         string     `json:"reason,omitempty"`
}

// RunSummary is what a billing run reports back. It is returned even when
// some subscriptions failed.
type RunSummary struct {
	Month              int          `json:"month"`
	Year               int          `json:"year"`
	GeneratedCount     int          `json:"generated_count"`
	EmailsSent         int          `json:"emails_sent"`
	TotalSubscriptions int          `json:"total_subscriptions"`
	Skipped            []SkipEntry  `json:"skipped"`
	Errors             []string     `json:"errors"`
	Items              []ItemResult `json:"items"`
	StartedAt          time.Time    `json:"started_at"`
	FinishedAt         time.Time    `json:"finished_at"`
}

type Config struct {
	DueDays    int
	CenterName string
	Currency   string
}

type Generator struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	logger     logger.ILogger
	renderer   pdf.Renderer
	mailer     mailer.IEmailService
	publisher  events.Publisher
	cfg        Config
}

func NewGenerator(
	uowFactory unitofwork.RepositoryFactory,
	clk clock.Clock,
	logger logger.ILogger,
	renderer pdf.Renderer,
	mailer mailer.IEmailService,
	publisher events.Publisher,
	cfg Config,
) *Generator {
	if cfg.DueDays <= 0 {
		cfg.DueDays = DefaultDueDays
	}
	return &Generator{
		uowFactory: uowFactory,
		clock:      clk,
		logger:     logger,
		renderer:   renderer,
		mailer:     mailer,
		publisher:  publisher,
		cfg:        cfg,
	}
}

func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d is outside 1..12", ErrInvalidPeriod, month)
	}
	if year < MinBillingYear {
		return fmt.Errorf("%w: year %d is before %d", ErrInvalidPeriod, year, MinBillingYear)
	}
	return nil
}

func PeriodLabel(month, year int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

// InvoiceNumber is INV-<yyyymm>-<first 8 hex chars of the invoice id>.
func InvoiceNumber(id uuid.UUID, month, year int) string {
	return fmt.Sprintf("INV-%04d%02d-%s", year, month, strings.ToUpper(id.String()[:8]))
}

// billed carries what the post-commit steps need.
type billed struct {
	invoice *entity.Invoice
	user    *entity.User
	service *entity.Service
	sub     *entity.Subscription
}

// Generate bills every active subscription for (month, year). Each
// subscription's check-and-insert is its own transaction, and PDF or email
// failures after commit only land in Errors.
func (g *Generator) Generate(ctx context.Context, month, year int) (*RunSummary, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	summary := &RunSummary{
		Month:     month,
		Year:      year,
		Skipped:   []SkipEntry{},
		Errors:    []string{},
		Items:     []ItemResult{},
		StartedAt: g.clock.Now(),
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.SubscriptionStatusActive)},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("load active subscriptions: %w", err)
	}
	summary.TotalSubscriptions = len(subs)

	g.logger.Info("BILLING", "Billing run started", map[string]interface{}{
		"period":        PeriodLabel(month, year),
		"subscriptions": len(subs),
	})

	for _, sub := range subs {
		item := ItemResult{SubscriptionId: sub.Id}

		result, skip, err := g.billSubscription(ctx, sub.Id, month, year)
		switch {
		case err != nil:
			item.Status = ItemFailed
			item.Reason = err.Error()
			summary.Errors = append(summary.Errors, fmt.Sprintf("subscription %s: %v", sub.Id, err))
			g.logger.Error("BILLING", "Failed to bill subscription", map[string]interface{}{
				"subscriptionId": sub.Id.String(),
				"error":          err.Error(),
			})
		case skip != nil:
			item.Status = ItemSkipped
			item.Reason = skip.Reason
			summary.Skipped = append(summary.Skipped, *skip)
		default:
			item.Status = ItemGenerated
			item.InvoiceId = &result.invoice.Id
			item.InvoiceNumber = result.invoice.InvoiceNumber
			summary.GeneratedCount++

			g.publisher.PublishInvoiceGenerated(ctx, result.invoice)

			if err := g.deliver(ctx, result, month, year); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("invoice %s: %v", result.invoice.InvoiceNumber, err))
				g.logger.Warn("BILLING", "Invoice delivery failed", map[string]interface{}{
					"invoiceNumber": result.invoice.InvoiceNumber,
					"error":         err.Error(),
				})
			} else {
				item.EmailSent = true
				summary.EmailsSent++
			}
		}
		summary.Items = append(summary.Items, item)
	}

	summary.FinishedAt = g.clock.Now()
	g.logger.Info("BILLING", "Billing run finished", map[string]interface{}{
		"period":    PeriodLabel(month, year),
		"generated": summary.GeneratedCount,
		"skipped":   len(summary.Skipped),
		"errors":    len(summary.Errors),
		"emails":    summary.EmailsSent,
	})

	return summary, nil
}

func (g *Generator) billSubscription(ctx context.Context, subscriptionId uuid.UUID, month, year int) (*billed, *SkipEntry, error) {
	skip := func(reason string) (*billed, *SkipEntry, error) {
		return nil, &SkipEntry{SubscriptionId: subscriptionId, Reason: reason}, nil
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByID{ID: subscriptionId},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load subscription: %w", err)
	}
	if sub == nil || sub.Status != entity.SubscriptionStatusActive {
		return skip("subscription is no longer active")
	}

	if sub.StartsAfter(month, year) {
		return skip(fmt.Sprintf("period %02d/%d precedes subscription start %02d/%d", month, year, sub.StartMonth, sub.StartYear))
	}

	existing, err := uow.InvoiceRepository().FindOne(ctx,
		specification.BySubscriptionID{SubscriptionID: sub.Id},
		specification.ForPeriod{Month: month, Year: year},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("check existing invoice: %w", err)
	}
	if existing != nil {
		return nil, &SkipEntry{
			SubscriptionId:        sub.Id,
			Reason:                fmt.Sprintf("already billed for %s by %s invoice %s", PeriodLabel(month, year), existing.InvoiceType, existing.InvoiceNumber),
			ExistingInvoiceNumber: existing.InvoiceNumber,
		}, nil
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: sub.UserId})
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return skip("subscription has no user with a reachable email")
	}

	service, err := uow.ServiceRepository().FindOne(ctx, specification.ByID{ID: sub.ServiceId})
	if err != nil {
		return nil, nil, fmt.Errorf("load service: %w", err)
	}
	if service == nil {
		return nil, nil, ErrServiceNotFound
	}

	now := g.clock.Now()
	amount := sub.FinalMonthlyPrice.Round(2)
	invoiceId := uuid.New()
	invoice := &entity.Invoice{
		Id:             invoiceId,
		InvoiceNumber:  InvoiceNumber(invoiceId, month, year),
		SubscriptionId: &sub.Id,
		UserId:         sub.UserId,
		InvoiceType:    entity.InvoiceTypeMonthly,
		BillingMonth:   month,
		BillingYear:    year,
		DueDate:        DueDate(now, g.cfg.DueDays),
		Subtotal:       amount,
		TaxAmount:      decimal.Zero,
		TotalAmount:    amount,
		PaymentStatus:  entity.InvoicePaymentStatusUnpaid,
		PaidAmount:     decimal.Zero,
	}

	inserted, err := uow.InvoiceRepository().CreateIfPeriodFree(ctx, invoice)
	if err != nil {
		return nil, nil, fmt.Errorf("create invoice: %w", err)
	}
	if !inserted {
		return skip(fmt.Sprintf("%s was billed concurrently", PeriodLabel(month, year)))
	}

	item := entity.InvoiceItem{
		Id:          uuid.New(),
		InvoiceId:   invoice.Id,
		ServiceId:   &service.Id,
		Description: fmt.Sprintf("Monthly fee — %s — %s", service.Name, PeriodLabel(month, year)),
		Quantity:    1,
		UnitPrice:   amount,
		TotalPrice:  amount,
	}
	if err := uow.InvoiceRepository().CreateItem(ctx, &item); err != nil {
		return nil, nil, fmt.Errorf("create invoice item: %w", err)
	}
	invoice.Items = []entity.InvoiceItem{item}

	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}

	return &billed{invoice: invoice, user: user, service: service, sub: sub}, nil, nil
}

// DueDate is the UTC calendar day `days` after now.
func DueDate(now time.Time, days int) time.Time {
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (g *Generator) deliver(ctx context.Context, b *billed, month, year int) error {
	doc := &pdf.InvoiceDocument{
		CenterName:    g.cfg.CenterName,
		Currency:      g.cfg.Currency,
		InvoiceNumber: b.invoice.InvoiceNumber,
		InvoiceType:   string(b.invoice.InvoiceType),
		IssuedAt:      g.clock.Now(),
		DueDate:       b.invoice.DueDate,
		ParentName:    b.user.FullName,
		ParentEmail:   b.user.Email,
		ChildName:     b.sub.ChildName,
		PeriodLabel:   PeriodLabel(month, year),
		Subtotal:      b.invoice.Subtotal,
		TaxAmount:     b.invoice.TaxAmount,
		TotalAmount:   b.invoice.TotalAmount,
	}
	for _, it := range b.invoice.Items {
		doc.Lines = append(doc.Lines, pdf.InvoiceLine{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}

	body, err := g.renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	err = g.mailer.SendInvoice(b.user.Email, mailer.InvoiceEmail{
		ParentName:    b.user.FullName,
		ChildName:     b.sub.ChildName,
		InvoiceNumber: b.invoice.InvoiceNumber,
		ServiceName:   b.service.Name,
		PeriodLabel:   PeriodLabel(month, year),
		TotalAmount:   strings.TrimSpace(g.cfg.Currency + " " + b.invoice.TotalAmount.StringFixed(2)),
		DueDate:       b.invoice.DueDate,
	}, body)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

type OverdueResult struct {
	Marked int      `json:"marked"`
	Errors []string `json:"errors"`
}

// MarkOverdue moves unpaid invoices whose due date has passed to overdue.
func (g *Generator) MarkOverdue(ctx context.Context) (*OverdueResult, error) {
	now := g.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	uow := g.uowFactory.NewUnitOfWork(ctx)
	candidates, err := uow.InvoiceRepository().FindAll(ctx,
		specification.Filter("payment_status", string(entity.InvoicePaymentStatusUnpaid)),
		specification.Before{Field: "due_date", At: today},
	)
	if err != nil {
		return nil, fmt.Errorf("load unpaid invoices: %w", err)
	}

	result := &OverdueResult{Errors: []string{}}
	for _, candidate := range candidates {
		invoice, err := g.markOverdue(ctx, candidate.Id)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("invoice %s: %v", candidate.InvoiceNumber, err))
			continue
		}
		if invoice == nil {
			continue
		}
		result.Marked++
		g.publisher.PublishInvoiceOverdue(ctx, invoice)
	}

	if result.Marked > 0 {
		g.logger.Info("BILLING", "Invoices marked overdue", map[string]interface{}{
			"marked": result.Marked,
			"errors": len(result.Errors),
		})
	}
	return result, nil
}

func (g *Generator) markOverdue(ctx context.Context, invoiceId uuid.UUID) (*entity.Invoice, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	invoice, err := uow.InvoiceRepository().FindOne(ctx, specification.ByID{ID: invoiceId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	// Paid or cancelled since the candidate query.
	if invoice == nil || !entity.CanTransitionInvoice(invoice.PaymentStatus, entity.InvoicePaymentStatusOverdue) {
		return nil, nil
	}
	if err := entity.TransitionInvoice(invoice, entity.InvoicePaymentStatusOverdue); err != nil {
		return nil, err
	}
	if err := uow.InvoiceRepository().Update(ctx, invoice); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return invoice, nil
}
