package warehouse

import (
	"time"

	"github.com/google/uuid"
)

// Status indicates whether a warehouse participates in zone matching.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Warehouse is a dispatch location that serves one or more postcode zones.
type Warehouse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Zone binds a postcode pattern to a warehouse. An exact zone matches one
// 4-digit postcode; a prefix zone matches every postcode starting with
// its pattern.
type Zone struct {
	ID          uuid.UUID `json:"id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Pattern     string    `json:"pattern"`
	IsPrefix    bool      `json:"is_prefix"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ZoneDetail is a zone joined with its warehouse name, as consumed by the
// in-memory matching snapshot. Only zones of active warehouses appear.
type ZoneDetail struct {
	ZoneID        uuid.UUID `json:"zone_id"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	Pattern       string    `json:"pattern"`
	IsPrefix      bool      `json:"is_prefix"`
}

// CreateWarehouseRequest is the payload for registering a warehouse.
type CreateWarehouseRequest struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

// UpdateStatusRequest is the payload for flipping a warehouse's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateZoneRequest is the payload for adding a zone to a warehouse.
type CreateZoneRequest struct {
	Pattern  string `json:"pattern"`
	IsPrefix bool   `json:"is_prefix"`
	Note     string `json:"note,omitempty"`
}
