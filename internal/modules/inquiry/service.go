package inquiry

import (
	"context"
	"fmt"
	"strings"
)

// Service defines the staff-facing inquiry administration logic. Lead
// creation is the pipeline's job; this surface only reads rows and moves
// their status forward.
type Service interface {
	List(ctx context.Context, status string) ([]*Inquiry, error)
	Get(ctx context.Context, id string) (*Inquiry, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Inquiry, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) List(ctx context.Context, status string) ([]*Inquiry, error) {
	if status != "" {
		status = strings.ToUpper(status)
	}
	return s.repo.List(ctx, status)
}

func (s *service) Get(ctx context.Context, id string) (*Inquiry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Inquiry, error) {
	to := Status(strings.ToUpper(req.Status))
	if to != StatusNew && to != StatusReviewed && to != StatusClosed {
		return nil, fmt.Errorf("invalid status %q", req.Status)
	}

	inq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("inquiry not found: %w", err)
	}
	if !CanTransition(inq.Status, to) {
		return nil, fmt.Errorf("invalid transition from %s to %s", inq.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
