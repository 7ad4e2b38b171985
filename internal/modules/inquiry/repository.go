package inquiry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines data access for inquiry rows. The pipeline is the
// only writer of lead fields; the admin surface is the only writer of
// status.
type Repository interface {
	Create(ctx context.Context, inq *Inquiry) error
	GetByID(ctx context.Context, id string) (*Inquiry, error)
	List(ctx context.Context, status string) ([]*Inquiry, error)

	// FindRecentNewByEmail returns the most recent NEW inquiry for the
	// email created at or after since, or nil when none exists.
	FindRecentNewByEmail(ctx context.Context, email string, since time.Time) (*Inquiry, error)

	// UpdateLeadFields refreshes the fields a repeat request from the same
	// customer is allowed to overwrite.
	UpdateLeadFields(ctx context.Context, id uuid.UUID, postcode, address, productSummary string) error

	UpdateStatus(ctx context.Context, id string, status Status) error
}
