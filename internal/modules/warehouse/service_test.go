package warehouse

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// mockInvalidator counts cache invalidations.
type mockInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (m *mockInvalidator) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

func (m *mockInvalidator) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockWarehouseRepo is an in-memory Repository.
type mockWarehouseRepo struct {
	warehouses map[uuid.UUID]*Warehouse
	zones      map[uuid.UUID]*Zone
}

func newMockWarehouseRepo() *mockWarehouseRepo {
	return &mockWarehouseRepo{
		warehouses: make(map[uuid.UUID]*Warehouse),
		zones:      make(map[uuid.UUID]*Zone),
	}
}

func (m *mockWarehouseRepo) CreateWarehouse(ctx context.Context, w *Warehouse) error {
	m.warehouses[w.ID] = w
	return nil
}

func (m *mockWarehouseRepo) GetWarehouseByID(ctx context.Context, id string) (*Warehouse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	w, ok := m.warehouses[uid]
	if !ok {
		return nil, errors.New("not found")
	}
	return w, nil
}

func (m *mockWarehouseRepo) ListWarehouses(ctx context.Context) ([]*Warehouse, error) {
	var out []*Warehouse
	for _, w := range m.warehouses {
		out = append(out, w)
	}
	return out, nil
}

func (m *mockWarehouseRepo) UpdateWarehouseStatus(ctx context.Context, id string, status Status) error {
	w, err := m.GetWarehouseByID(ctx, id)
	if err != nil {
		return err
	}
	w.Status = status
	return nil
}

func (m *mockWarehouseRepo) DeleteWarehouse(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	delete(m.warehouses, uid)
	return nil
}

func (m *mockWarehouseRepo) CreateZone(ctx context.Context, z *Zone) error {
	m.zones[z.ID] = z
	return nil
}

func (m *mockWarehouseRepo) ListZonesByWarehouse(ctx context.Context, warehouseID string) ([]*Zone, error) {
	var out []*Zone
	for _, z := range m.zones {
		if z.WarehouseID.String() == warehouseID {
			out = append(out, z)
		}
	}
	return out, nil
}

func (m *mockWarehouseRepo) DeleteZone(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	delete(m.zones, uid)
	return nil
}

func (m *mockWarehouseRepo) ListActiveZones(ctx context.Context) ([]*ZoneDetail, error) {
	var out []*ZoneDetail
	for _, z := range m.zones {
		w, ok := m.warehouses[z.WarehouseID]
		if !ok || w.Status != StatusActive {
			continue
		}
		out = append(out, &ZoneDetail{
			ZoneID:        z.ID,
			WarehouseID:   w.ID,
			WarehouseName: w.Name,
			Pattern:       z.Pattern,
			IsPrefix:      z.IsPrefix,
		})
	}
	return out, nil
}

func TestMutationsInvalidateCache(t *testing.T) {
	repo := newMockWarehouseRepo()
	cache := &mockInvalidator{}
	svc := NewService(repo, cache)
	ctx := context.Background()

	w, err := svc.CreateWarehouse(ctx, CreateWarehouseRequest{Name: "Melbourne DC"})
	if err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	if cache.count() != 1 {
		t.Fatalf("expected invalidation after warehouse create, got %d", cache.count())
	}

	z, err := svc.CreateZone(ctx, w.ID.String(), CreateZoneRequest{Pattern: "30", IsPrefix: true})
	if err != nil {
		t.Fatalf("create zone: %v", err)
	}
	if cache.count() != 2 {
		t.Fatalf("expected invalidation after zone create, got %d", cache.count())
	}

	if _, err := svc.UpdateStatus(ctx, w.ID.String(), UpdateStatusRequest{Status: "inactive"}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if cache.count() != 3 {
		t.Fatalf("expected invalidation after status change, got %d", cache.count())
	}

	if err := svc.DeleteZone(ctx, z.ID.String()); err != nil {
		t.Fatalf("delete zone: %v", err)
	}
	if cache.count() != 4 {
		t.Fatalf("expected invalidation after zone delete, got %d", cache.count())
	}
}

func TestInactiveWarehouseZonesExcludedFromFeed(t *testing.T) {
	repo := newMockWarehouseRepo()
	svc := NewService(repo, &mockInvalidator{})
	ctx := context.Background()

	w, _ := svc.CreateWarehouse(ctx, CreateWarehouseRequest{Name: "Melbourne DC"})
	if _, err := svc.CreateZone(ctx, w.ID.String(), CreateZoneRequest{Pattern: "3005"}); err != nil {
		t.Fatalf("create zone: %v", err)
	}

	zones, _ := repo.ListActiveZones(ctx)
	if len(zones) != 1 {
		t.Fatalf("expected active zone in feed, got %d", len(zones))
	}

	if _, err := svc.UpdateStatus(ctx, w.ID.String(), UpdateStatusRequest{Status: "INACTIVE"}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	zones, _ = repo.ListActiveZones(ctx)
	if len(zones) != 0 {
		t.Fatalf("inactive warehouse zones must not feed the cache, got %d", len(zones))
	}
}

func TestCreateZoneValidatesPattern(t *testing.T) {
	repo := newMockWarehouseRepo()
	svc := NewService(repo, &mockInvalidator{})
	ctx := context.Background()
	w, _ := svc.CreateWarehouse(ctx, CreateWarehouseRequest{Name: "Melbourne DC"})

	cases := []struct {
		name string
		req  CreateZoneRequest
	}{
		{name: "exact too short", req: CreateZoneRequest{Pattern: "300"}},
		{name: "exact too long", req: CreateZoneRequest{Pattern: "30000"}},
		{name: "non-digit", req: CreateZoneRequest{Pattern: "30A5"}},
		{name: "prefix too long", req: CreateZoneRequest{Pattern: "30055", IsPrefix: true}},
		{name: "empty", req: CreateZoneRequest{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateZone(ctx, w.ID.String(), tc.req); err == nil {
				t.Errorf("expected pattern %q to be rejected", tc.req.Pattern)
			}
		})
	}

	if _, err := svc.CreateZone(ctx, w.ID.String(), CreateZoneRequest{Pattern: "3", IsPrefix: true}); err != nil {
		t.Errorf("one-digit prefix should be valid: %v", err)
	}
}
