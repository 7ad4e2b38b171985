package warehouse

import "context"

// Repository defines data access for warehouses and their zones.
type Repository interface {
	// Warehouses
	CreateWarehouse(ctx context.Context, w *Warehouse) error
	GetWarehouseByID(ctx context.Context, id string) (*Warehouse, error)
	ListWarehouses(ctx context.Context) ([]*Warehouse, error)
	UpdateWarehouseStatus(ctx context.Context, id string, status Status) error
	DeleteWarehouse(ctx context.Context, id string) error

	// Zones
	CreateZone(ctx context.Context, z *Zone) error
	ListZonesByWarehouse(ctx context.Context, warehouseID string) ([]*Zone, error)
	DeleteZone(ctx context.Context, id string) error

	// ListActiveZones returns every zone whose warehouse is ACTIVE, joined
	// with the warehouse name. This is the feed for the matching snapshot.
	ListActiveZones(ctx context.Context) ([]*ZoneDetail, error)
}
