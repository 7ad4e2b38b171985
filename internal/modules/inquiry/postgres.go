package inquiry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/shipzone-backend/internal/database"
)

type postgresRepo struct{ db *database.Client }

func NewPostgresRepository(db *database.Client) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, inq *Inquiry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inquiries
		  (id, email, phone, customer_name, postcode, address, product_summary, draft_order_ref, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		inq.ID, inq.Email, inq.Phone, inq.CustomerName, inq.Postcode,
		inq.Address, inq.ProductSummary, inq.DraftOrderRef, inq.Status)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Inquiry, error) {
	inq := &Inquiry{}
	err := r.db.QueryRow(ctx, func(row *sql.Row) error {
		return scanInquiry(row, inq)
	}, `SELECT id,email,phone,customer_name,postcode,address,product_summary,draft_order_ref,status,created_at,updated_at
		FROM inquiries WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	return inq, nil
}

func (r *postgresRepo) List(ctx context.Context, status string) ([]*Inquiry, error) {
	query := `SELECT id,email,phone,customer_name,postcode,address,product_summary,draft_order_ref,status,created_at,updated_at
		FROM inquiries`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var inquiries []*Inquiry
	for rows.Next() {
		inq := &Inquiry{}
		if err := scanInquiry(rows, inq); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inq)
	}
	return inquiries, rows.Err()
}

func (r *postgresRepo) FindRecentNewByEmail(ctx context.Context, email string, since time.Time) (*Inquiry, error) {
	inq := &Inquiry{}
	err := r.db.QueryRow(ctx, func(row *sql.Row) error {
		return scanInquiry(row, inq)
	}, `SELECT id,email,phone,customer_name,postcode,address,product_summary,draft_order_ref,status,created_at,updated_at
		FROM inquiries
		WHERE email=$1 AND status=$2 AND created_at >= $3
		ORDER BY created_at DESC LIMIT 1`, email, StatusNew, since)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inq, nil
}

func (r *postgresRepo) UpdateLeadFields(ctx context.Context, id uuid.UUID, postcode, address, productSummary string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE inquiries SET postcode=$1, address=$2, product_summary=$3, updated_at=$4
		WHERE id=$5`,
		postcode, address, productSummary, time.Now(), id)
	return err
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE inquiries SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), id)
	return err
}

type inquiryScanner interface {
	Scan(dest ...interface{}) error
}

func scanInquiry(row inquiryScanner, inq *Inquiry) error {
	var draftRef sql.NullString
	err := row.Scan(&inq.ID, &inq.Email, &inq.Phone, &inq.CustomerName,
		&inq.Postcode, &inq.Address, &inq.ProductSummary, &draftRef,
		&inq.Status, &inq.CreatedAt, &inq.UpdatedAt)
	if err != nil {
		return err
	}
	if draftRef.Valid {
		inq.DraftOrderRef = &draftRef.String
	}
	return nil
}
