package warehouse

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgemunganga/shipzone-backend/internal/database"
)

type postgresRepo struct{ db *database.Client }

func NewPostgresRepository(db *database.Client) Repository { return &postgresRepo{db: db} }

// ── Warehouses ────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateWarehouse(ctx context.Context, w *Warehouse) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO warehouses (id, name, status)
		VALUES ($1,$2,$3)`,
		w.ID, w.Name, w.Status)
	return err
}

func (r *postgresRepo) GetWarehouseByID(ctx context.Context, id string) (*Warehouse, error) {
	w := &Warehouse{}
	err := r.db.QueryRow(ctx, func(row *sql.Row) error {
		return row.Scan(&w.ID, &w.Name, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	}, `SELECT id,name,status,created_at,updated_at FROM warehouses WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *postgresRepo) ListWarehouses(ctx context.Context) ([]*Warehouse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,name,status,created_at,updated_at
		FROM warehouses ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var warehouses []*Warehouse
	for rows.Next() {
		w := &Warehouse{}
		if err := rows.Scan(&w.ID, &w.Name, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (r *postgresRepo) UpdateWarehouseStatus(ctx context.Context, id string, status Status) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE warehouses SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), id)
	return err
}

func (r *postgresRepo) DeleteWarehouse(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM warehouses WHERE id=$1`, id)
	return err
}

// ── Zones ─────────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateZone(ctx context.Context, z *Zone) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO zones (id, warehouse_id, pattern, is_prefix, note)
		VALUES ($1,$2,$3,$4,$5)`,
		z.ID, z.WarehouseID, z.Pattern, z.IsPrefix, z.Note)
	return err
}

func (r *postgresRepo) ListZonesByWarehouse(ctx context.Context, warehouseID string) ([]*Zone, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,warehouse_id,pattern,is_prefix,note,created_at,updated_at
		FROM zones WHERE warehouse_id=$1 ORDER BY pattern ASC`, warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var zones []*Zone
	for rows.Next() {
		z := &Zone{}
		if err := rows.Scan(&z.ID, &z.WarehouseID, &z.Pattern, &z.IsPrefix, &z.Note, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (r *postgresRepo) DeleteZone(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM zones WHERE id=$1`, id)
	return err
}

func (r *postgresRepo) ListActiveZones(ctx context.Context) ([]*ZoneDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT z.id, z.warehouse_id, w.name, z.pattern, z.is_prefix
		FROM zones z
		JOIN warehouses w ON w.id = z.warehouse_id AND w.status = 'ACTIVE'
		ORDER BY z.pattern ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var details []*ZoneDetail
	for rows.Next() {
		d := &ZoneDetail{}
		if err := rows.Scan(&d.ZoneID, &d.WarehouseID, &d.WarehouseName, &d.Pattern, &d.IsPrefix); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
