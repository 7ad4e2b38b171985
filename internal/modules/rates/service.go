package rates

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/georgemunganga/shipzone-backend/internal/modules/inquiry"
)

// LeadSink accepts a lead for detached processing. Enqueue must not block
// and must not perform network or store I/O on the calling path.
type LeadSink interface {
	Enqueue(lead inquiry.Lead) error
}

// Config carries the flat-rate pricing presented for serviceable zones.
type Config struct {
	ServiceName     string // e.g. "Standard Delivery"
	FlatRateCents   int64
	DefaultCurrency string // used when the request carries no currency
}

// Service is the synchronous rate decision engine. Quote always returns
// a well-formed response: any internal failure degrades to the inquiry
// fallback, because an error status here can abandon the whole checkout.
type Service interface {
	Quote(ctx context.Context, req RateRequest) RateResponse
}

type service struct {
	cache *ZoneCache
	leads LeadSink
	cfg   Config
	log   *slog.Logger
}

// NewService creates the rate decision engine.
func NewService(cache *ZoneCache, leads LeadSink, cfg Config, log *slog.Logger) Service {
	return &service{cache: cache, leads: leads, cfg: cfg, log: log}
}

func (s *service) Quote(ctx context.Context, req RateRequest) (resp RateResponse) {
	// Boundary guard: whatever goes wrong below, the caller gets a valid
	// fallback response, never an error.
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("rate decision panicked", "panic", r)
			resp = s.fallback(req, "Shipping for this destination needs a manual quote. Our team will be in touch.")
		}
	}()

	dest := req.Rate.Destination
	if dest == nil {
		return s.fallback(req, "Missing postcode information. Our team will contact you with a shipping quote.")
	}

	// Malformed postcodes resolve immediately, without paying for (or
	// depending on) cache access.
	postcode, err := NormalizePostcode(dest.PostalCode)
	if err != nil {
		return s.fallback(req, "Missing or invalid postcode. Our team will contact you with a shipping quote.")
	}

	s.cache.EnsureFresh()
	decision := s.cache.Match(postcode)
	if decision.Matched {
		return RateResponse{Rates: []Rate{{
			ServiceName: s.cfg.ServiceName,
			ServiceCode: "ZONE_" + decision.WarehouseID.String(),
			TotalPrice:  strconv.FormatInt(s.cfg.FlatRateCents, 10),
			Currency:    s.currency(req),
			Description: "Dispatched from " + decision.WarehouseName,
		}}}
	}

	// No zone covers this destination: hand the lead off and answer
	// immediately. The pipeline's outcome is never awaited.
	lead := buildLead(dest, postcode, req)
	if err := s.leads.Enqueue(lead); err != nil {
		s.log.Error("failed to enqueue shipping inquiry", "error", err, "postcode", postcode)
	}
	return s.fallback(req, "No instant rate for this area. Our team will contact you with a custom shipping quote.")
}

func (s *service) fallback(req RateRequest, description string) RateResponse {
	return RateResponse{Rates: []Rate{{
		ServiceName: "Shipping Quote Required",
		ServiceCode: ServiceCodeInquiry,
		TotalPrice:  "0",
		Currency:    s.currency(req),
		Description: description,
	}}}
}

func (s *service) currency(req RateRequest) string {
	if req.Rate.Currency != "" {
		return req.Rate.Currency
	}
	return s.cfg.DefaultCurrency
}

func buildLead(dest *Destination, postcode string, req RateRequest) inquiry.Lead {
	items := make([]inquiry.LeadItem, 0, len(req.Rate.Items))
	for _, it := range req.Rate.Items {
		items = append(items, inquiry.LeadItem{
			Title:    it.Title,
			Quantity: it.Quantity,
			Price:    it.Price,
			Grams:    it.Grams,
		})
	}
	return inquiry.Lead{
		Email:        dest.Email,
		Phone:        dest.Phone,
		CustomerName: dest.CustomerName(),
		Postcode:     postcode,
		Address:      dest.AddressLine(),
		Currency:     req.Rate.Currency,
		Items:        items,
	}
}
