package inquiry

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status tracks the staff-facing lifecycle of a lead. Transitions move
// forward only; the background pipeline creates NEW rows and never
// touches status afterwards.
type Status string

const (
	StatusNew      Status = "NEW"
	StatusReviewed Status = "REVIEWED"
	StatusClosed   Status = "CLOSED"
)

// validTransitions defines the allowed status state machine. Backward
// transitions are rejected.
var validTransitions = map[Status][]Status{
	StatusNew:      {StatusReviewed, StatusClosed},
	StatusReviewed: {StatusClosed},
	StatusClosed:   {},
}

// CanTransition reports whether moving from one status to another is
// allowed.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Inquiry is the persisted sales lead created when no zone matches a
// destination. DraftOrderRef is nil when the external order could not be
// opened; the lead survives regardless.
type Inquiry struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	CustomerName   string    `json:"customer_name,omitempty"`
	Postcode       string    `json:"postcode"`
	Address        string    `json:"address,omitempty"`
	ProductSummary string    `json:"product_summary,omitempty"`
	DraftOrderRef  *string   `json:"draft_order_ref,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LeadItem is one cart line captured on a lead. Price is in minor units.
type LeadItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Grams    int    `json:"grams"`
}

// Lead is the pipeline input extracted from an unmatched rate request.
type Lead struct {
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	CustomerName string     `json:"customer_name,omitempty"`
	Postcode     string     `json:"postcode"`
	Address      string     `json:"address,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	Items        []LeadItem `json:"items,omitempty"`
}

// Summary renders the cart as a short human-readable line for staff,
// e.g. "2 x Corner Sofa; 1 x Ottoman".
func (l Lead) Summary() string {
	if len(l.Items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		parts = append(parts, fmt.Sprintf("%d x %s", item.Quantity, item.Title))
	}
	return strings.Join(parts, "; ")
}

// UpdateStatusRequest is the admin payload for advancing a lead's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
