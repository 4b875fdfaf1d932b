package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// PaymentFilter narrows List. Zero-valued fields do not filter.
type PaymentFilter struct {
	TenantID  string
	BookingID *uuid.UUID
	Statuses  []models.PaymentStatus
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]*models.Payment, error)

	UpdateIfVersion(ctx context.Context, p *models.Payment, expected int64) (pgconn.CommandTag, error)

	// RefundOpenByBooking moves every non-Refunded payment of the booking to
	// Refunded in one statement and returns the affected ids.
	RefundOpenByBooking(ctx context.Context, bookingID uuid.UUID) ([]uuid.UUID, error)

	// Summary totals payments by status. An empty tenantID covers all tenants.
	Summary(ctx context.Context, tenantID string) ([]models.PaymentStatusTotal, error)
}

type paymentRepo struct {
	*BaseVersionedRepo[*models.Payment]
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	r := &paymentRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectPayment()+" WHERE id=$1", scanPayment)
	return r
}

func baseSelectPayment() string {
	return `
        SELECT
            id, booking_id, customer_id, unit_id, tenant_id,
            amount, status, method, payment_type, paid_at,
            receipt_no, refund_ref_id, notes,
            row_version, created_at, updated_at
        FROM payments
    `
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.BookingID, &p.CustomerID, &p.UnitID, &p.TenantID,
		&p.Amount, &p.Status, &p.Method, &p.PaymentType, &p.PaidAt,
		&p.ReceiptNo, &p.RefundRefID, &p.Notes,
		&p.RowVersion, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	q := `
        INSERT INTO payments (
            id, booking_id, customer_id, unit_id, tenant_id,
            amount, status, method, payment_type, paid_at,
            receipt_no, refund_ref_id, notes,
            row_version, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, 1, NOW(), NOW())
        RETURNING row_version, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, q,
		p.ID, p.BookingID, p.CustomerID, p.UnitID, p.TenantID,
		p.Amount, string(p.Status), string(p.Method), p.PaymentType, p.PaidAt,
		p.ReceiptNo, p.RefundRefID, p.Notes,
	).Scan(&p.RowVersion, &p.CreatedAt, &p.UpdatedAt)
	return TranslatePgError(err)
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *paymentRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.BaseVersionedRepo.GetByIDForUpdate(ctx, id.String())
}

func (r *paymentRepo) List(ctx context.Context, f PaymentFilter) ([]*models.Payment, error) {
	var sb strings.Builder
	sb.WriteString(baseSelectPayment())
	sb.WriteString(" WHERE 1=1")

	args := []any{}
	idx := 1
	if f.TenantID != "" {
		sb.WriteString(fmt.Sprintf(" AND tenant_id=$%d", idx))
		args = append(args, f.TenantID)
		idx++
	}
	if f.BookingID != nil {
		sb.WriteString(fmt.Sprintf(" AND booking_id=$%d", idx))
		args = append(args, *f.BookingID)
		idx++
	}
	if len(f.Statuses) > 0 {
		sb.WriteString(fmt.Sprintf(" AND status = ANY($%d)", idx))
		args = append(args, paymentStatusStrings(f.Statuses))
	}
	sb.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *paymentRepo) UpdateIfVersion(ctx context.Context, p *models.Payment, expected int64) (pgconn.CommandTag, error) {
	p.UpdatedAt = time.Now().UTC()
	q := `
        UPDATE payments
        SET amount=$1, status=$2, method=$3, payment_type=$4, paid_at=$5,
            receipt_no=$6, refund_ref_id=$7, notes=$8,
            updated_at=$9, row_version=row_version+1
        WHERE id=$10 AND row_version=$11
    `
	tag, err := r.db.Exec(ctx, q,
		p.Amount, string(p.Status), string(p.Method), p.PaymentType, p.PaidAt,
		p.ReceiptNo, p.RefundRefID, p.Notes,
		p.UpdatedAt, p.ID, expected,
	)
	return tag, TranslatePgError(err)
}

func (r *paymentRepo) RefundOpenByBooking(ctx context.Context, bookingID uuid.UUID) ([]uuid.UUID, error) {
	q := `
        UPDATE payments
        SET status=$1, updated_at=NOW(), row_version=row_version+1
        WHERE booking_id=$2 AND status <> $1
        RETURNING id
    `
	rows, err := r.db.Query(ctx, q, string(models.PaymentStatusRefunded), bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *paymentRepo) Summary(ctx context.Context, tenantID string) ([]models.PaymentStatusTotal, error) {
	q := `
        SELECT status, COUNT(*), COALESCE(SUM(amount), 0)
        FROM payments
        WHERE ($1 = '' OR tenant_id = $1)
        GROUP BY status
        ORDER BY array_position(ARRAY['Pending','Received','Overdue','Refunded']::text[], status)
    `
	rows, err := r.db.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PaymentStatusTotal
	for rows.Next() {
		var t models.PaymentStatusTotal
		if err := rows.Scan(&t.Status, &t.Count, &t.Total); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func paymentStatusStrings(in []models.PaymentStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
