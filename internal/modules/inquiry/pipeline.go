package inquiry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/shipzone-backend/internal/async"
)

// DefaultDedupWindow bounds how long a repeat no-match request from the
// same customer email updates the existing lead instead of creating a
// new one.
const DefaultDedupWindow = 60 * time.Minute

// stepTimeout bounds each store or gateway call inside a pipeline run.
// A timed-out run is logged and abandoned, never retried.
const stepTimeout = 20 * time.Second

// Pipeline records sales leads and best-effort opens draft orders,
// detached from the rate request that triggered it. Every step is
// best-effort: failures end that single run and are only visible in
// logs, never to the customer whose response was already sent.
type Pipeline struct {
	repo    Repository
	gateway OrderGateway
	pool    *async.Pool
	window  time.Duration
	log     *slog.Logger
}

// NewPipeline wires the lead pipeline onto a worker pool. A window of
// zero uses DefaultDedupWindow.
func NewPipeline(repo Repository, gateway OrderGateway, pool *async.Pool, window time.Duration, log *slog.Logger) *Pipeline {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Pipeline{repo: repo, gateway: gateway, pool: pool, window: window, log: log}
}

// Enqueue hands a lead to the worker pool without blocking. When the pool
// is saturated the lead is dropped and logged; the rate response was
// already decided and must not wait.
func (p *Pipeline) Enqueue(lead Lead) error {
	err := p.pool.Submit(func(ctx context.Context) {
		p.process(ctx, lead)
	})
	if err != nil {
		return fmt.Errorf("enqueue inquiry: %w", err)
	}
	return nil
}

// process runs the dedup-then-persist flow for one lead.
func (p *Pipeline) process(ctx context.Context, lead Lead) {
	summary := lead.Summary()

	// Dedup keys on email only. Without one, every request creates a new
	// lead (known gap for guest checkouts).
	if lead.Email != "" {
		existing, err := p.findRecent(ctx, lead.Email)
		if err != nil {
			p.log.Warn("inquiry dedup lookup failed, creating a new lead",
				"error", err, "email", lead.Email)
		} else if existing != nil {
			p.updateExisting(ctx, existing, lead, summary)
			return
		}
	}

	// Open the draft order first, so a new lead can carry its reference.
	// Gateway failure is independent of persistence: the lead must never
	// be lost because the platform call failed, while the reverse gap
	// (an external order with no lead) is prevented by creating the order
	// only on this create path.
	var draftRef *string
	if ref, err := p.createDraftOrder(ctx, lead, summary); err != nil {
		p.log.Warn("draft order creation failed, persisting lead without reference",
			"error", err, "postcode", lead.Postcode)
	} else {
		draftRef = &ref
	}

	inq := &Inquiry{
		ID:             uuid.New(),
		Email:          lead.Email,
		Phone:          lead.Phone,
		CustomerName:   lead.CustomerName,
		Postcode:       lead.Postcode,
		Address:        lead.Address,
		ProductSummary: summary,
		DraftOrderRef:  draftRef,
		Status:         StatusNew,
	}
	stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	if err := p.repo.Create(stepCtx, inq); err != nil {
		p.log.Error("failed to persist inquiry, lead lost",
			"error", err, "email", lead.Email, "postcode", lead.Postcode)
		return
	}
	p.log.Info("inquiry recorded",
		"inquiry_id", inq.ID, "postcode", inq.Postcode, "has_draft_order", draftRef != nil)
}

func (p *Pipeline) findRecent(ctx context.Context, email string) (*Inquiry, error) {
	stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	return p.repo.FindRecentNewByEmail(stepCtx, email, time.Now().Add(-p.window))
}

// updateExisting refreshes the open lead with the latest address,
// postcode and cart; no new row and no new external order. A customer
// editing their address mid-checkout must not spawn duplicate staff work.
func (p *Pipeline) updateExisting(ctx context.Context, existing *Inquiry, lead Lead, summary string) {
	stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	if err := p.repo.UpdateLeadFields(stepCtx, existing.ID, lead.Postcode, lead.Address, summary); err != nil {
		p.log.Error("failed to update existing inquiry",
			"error", err, "inquiry_id", existing.ID)
		return
	}
	p.log.Info("inquiry updated in place",
		"inquiry_id", existing.ID, "postcode", lead.Postcode)
}

func (p *Pipeline) createDraftOrder(ctx context.Context, lead Lead, summary string) (string, error) {
	if p.gateway == nil {
		return "", fmt.Errorf("no order gateway configured")
	}
	stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	note := "Shipping inquiry: no zone covers postcode " + lead.Postcode
	if summary != "" {
		note += ". Cart: " + summary
	}
	return p.gateway.CreateDraftOrder(stepCtx, lead, note)
}
