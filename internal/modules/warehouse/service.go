package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Invalidator forces the zone-matching cache to reload on its next
// freshness check. Every mutation below must invalidate, because matching
// runs against an in-memory snapshot rather than the store.
type Invalidator interface {
	Invalidate()
}

// Service defines warehouse and zone administration logic.
type Service interface {
	CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*Warehouse, error)
	GetWarehouse(ctx context.Context, id string) (*Warehouse, error)
	ListWarehouses(ctx context.Context) ([]*Warehouse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Warehouse, error)
	DeleteWarehouse(ctx context.Context, id string) error

	CreateZone(ctx context.Context, warehouseID string, req CreateZoneRequest) (*Zone, error)
	ListZones(ctx context.Context, warehouseID string) ([]*Zone, error)
	DeleteZone(ctx context.Context, id string) error
}

type service struct {
	repo  Repository
	cache Invalidator
}

// NewService creates a warehouse admin service that invalidates the given
// cache on every mutation.
func NewService(repo Repository, cache Invalidator) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*Warehouse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	status := Status(strings.ToUpper(req.Status))
	if status == "" {
		status = StatusActive
	}
	if status != StatusActive && status != StatusInactive {
		return nil, fmt.Errorf("invalid status %q", req.Status)
	}

	w := &Warehouse{
		ID:     uuid.New(),
		Name:   strings.TrimSpace(req.Name),
		Status: status,
	}
	if err := s.repo.CreateWarehouse(ctx, w); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return w, nil
}

func (s *service) GetWarehouse(ctx context.Context, id string) (*Warehouse, error) {
	return s.repo.GetWarehouseByID(ctx, id)
}

func (s *service) ListWarehouses(ctx context.Context) ([]*Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Warehouse, error) {
	status := Status(strings.ToUpper(req.Status))
	if status != StatusActive && status != StatusInactive {
		return nil, fmt.Errorf("invalid status %q", req.Status)
	}
	if err := s.repo.UpdateWarehouseStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return s.repo.GetWarehouseByID(ctx, id)
}

func (s *service) DeleteWarehouse(ctx context.Context, id string) error {
	if err := s.repo.DeleteWarehouse(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// ── Zones ─────────────────────────────────────────────────────────────────────

func (s *service) CreateZone(ctx context.Context, warehouseID string, req CreateZoneRequest) (*Zone, error) {
	wid, err := uuid.Parse(warehouseID)
	if err != nil {
		return nil, fmt.Errorf("invalid warehouse id: %w", err)
	}
	if err := validatePattern(req.Pattern, req.IsPrefix); err != nil {
		return nil, err
	}

	z := &Zone{
		ID:          uuid.New(),
		WarehouseID: wid,
		Pattern:     req.Pattern,
		IsPrefix:    req.IsPrefix,
		Note:        req.Note,
	}
	if err := s.repo.CreateZone(ctx, z); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return z, nil
}

func (s *service) ListZones(ctx context.Context, warehouseID string) ([]*Zone, error) {
	return s.repo.ListZonesByWarehouse(ctx, warehouseID)
}

func (s *service) DeleteZone(ctx context.Context, id string) error {
	if err := s.repo.DeleteZone(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// validatePattern enforces the two zone shapes: an exact zone is a full
// 4-digit postcode, a prefix zone is 1 to 4 digits.
func validatePattern(pattern string, isPrefix bool) error {
	if pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	for _, r := range pattern {
		if r < '0' || r > '9' {
			return fmt.Errorf("pattern must contain digits only")
		}
	}
	if isPrefix {
		if len(pattern) > 4 {
			return fmt.Errorf("prefix pattern must be at most 4 digits")
		}
		return nil
	}
	if len(pattern) != 4 {
		return fmt.Errorf("exact pattern must be exactly 4 digits")
	}
	return nil
}
