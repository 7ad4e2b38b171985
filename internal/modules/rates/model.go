package rates

import (
	"strings"

	"github.com/google/uuid"
)

// ServiceCodeInquiry is the stable service code the checkout UI keys on
// to block payment and show the manual-quote message. Do not change it.
const ServiceCodeInquiry = "INQUIRY"

// RateRequest is the carrier-service callback payload sent by the
// commerce platform during checkout.
type RateRequest struct {
	Rate RatePayload `json:"rate"`
}

// RatePayload carries the destination, cart contents and currency.
type RatePayload struct {
	Destination *Destination `json:"destination"`
	Items       []LineItem   `json:"items"`
	Currency    string       `json:"currency"`
}

// Destination is the shipping address under quote. Depending on checkout
// stage the platform sends either a single name or first/last split, and
// email/phone may be absent.
type Destination struct {
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Province   string `json:"province"`
	City       string `json:"city"`
	Name       string `json:"name"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// CustomerName resolves the single-name and split-name variants.
func (d *Destination) CustomerName() string {
	if d.Name != "" {
		return d.Name
	}
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// AddressLine renders the free-text address captured on a lead.
func (d *Destination) AddressLine() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.City, d.Province, d.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// LineItem is one cart line. Price is in minor units (cents).
type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Grams    int    `json:"grams"`
}

// RateResponse is the carrier-service reply. It always carries exactly
// one rate: either a zone flat rate or the inquiry fallback.
type RateResponse struct {
	Rates []Rate `json:"rates"`
}

// Rate is a single shipping option as the platform expects it, with
// total_price as a string of minor units.
type Rate struct {
	ServiceName string `json:"service_name"`
	ServiceCode string `json:"service_code"`
	TotalPrice  string `json:"total_price"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// MatchType distinguishes how a postcode hit its zone.
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchPrefix MatchType = "prefix"
)

// Decision is the ephemeral outcome of a zone lookup.
type Decision struct {
	Matched       bool
	WarehouseID   uuid.UUID
	WarehouseName string
	MatchType     MatchType
}
