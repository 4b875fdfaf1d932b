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

// BookingFilter narrows List. Zero-valued fields do not filter.
type BookingFilter struct {
	TenantID   string
	UnitID     *uuid.UUID
	CustomerID *uuid.UUID
	Statuses   []models.BookingStatus
}

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error)

	// FindActiveByUnit returns the booking holding a claim on the unit, or nil.
	FindActiveByUnit(ctx context.Context, unitID uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, f BookingFilter) ([]*models.Booking, error)
	ListHoldsExpiredBefore(ctx context.Context, cutoff time.Time) ([]*models.Booking, error)

	UpdateIfVersion(ctx context.Context, b *models.Booking, expected int64) (pgconn.CommandTag, error)
}

type bookingRepo struct {
	*BaseVersionedRepo[*models.Booking]
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	r := &bookingRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectBooking()+" WHERE id=$1", scanBooking)
	return r
}

func baseSelectBooking() string {
	return `
        SELECT
            id, unit_id, customer_id, project_id, tenant_id, agent_id, manager_id,
            total_price, token_amount, status,
            customer_name, customer_email, customer_phone, notes,
            hold_expires_at, approved_at, rejected_at, cancelled_at,
            cancellation_reason, manager_notes,
            row_version, created_at, updated_at
        FROM bookings
    `
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.UnitID, &b.CustomerID, &b.ProjectID, &b.TenantID, &b.AgentID, &b.ManagerID,
		&b.TotalPrice, &b.TokenAmount, &b.Status,
		&b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.Notes,
		&b.HoldExpiresAt, &b.ApprovedAt, &b.RejectedAt, &b.CancelledAt,
		&b.CancellationReason, &b.ManagerNotes,
		&b.RowVersion, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]*models.Booking, error) {
	var out []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *bookingRepo) Create(ctx context.Context, b *models.Booking) error {
	q := `
        INSERT INTO bookings (
            id, unit_id, customer_id, project_id, tenant_id, agent_id, manager_id,
            total_price, token_amount, status,
            customer_name, customer_email, customer_phone, notes, hold_expires_at,
            row_version, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, 1, NOW(), NOW())
        RETURNING row_version, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, q,
		b.ID, b.UnitID, b.CustomerID, b.ProjectID, b.TenantID, b.AgentID, b.ManagerID,
		b.TotalPrice, b.TokenAmount, string(b.Status),
		b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.Notes, b.HoldExpiresAt,
	).Scan(&b.RowVersion, &b.CreatedAt, &b.UpdatedAt)
	return TranslatePgError(err)
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *bookingRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.BaseVersionedRepo.GetByIDForUpdate(ctx, id.String())
}

func (r *bookingRepo) FindActiveByUnit(ctx context.Context, unitID uuid.UUID) (*models.Booking, error) {
	q := baseSelectBooking() + ` WHERE unit_id=$1 AND status = ANY($2) ORDER BY created_at DESC LIMIT 1`
	row := r.db.QueryRow(ctx, q, unitID, bookingStatusStrings(models.ActiveBookingStatuses))
	return scanBooking(row)
}

func (r *bookingRepo) List(ctx context.Context, f BookingFilter) ([]*models.Booking, error) {
	var sb strings.Builder
	sb.WriteString(baseSelectBooking())
	sb.WriteString(" WHERE 1=1")

	args := []any{}
	idx := 1
	if f.TenantID != "" {
		sb.WriteString(fmt.Sprintf(" AND tenant_id=$%d", idx))
		args = append(args, f.TenantID)
		idx++
	}
	if f.UnitID != nil {
		sb.WriteString(fmt.Sprintf(" AND unit_id=$%d", idx))
		args = append(args, *f.UnitID)
		idx++
	}
	if f.CustomerID != nil {
		sb.WriteString(fmt.Sprintf(" AND customer_id=$%d", idx))
		args = append(args, *f.CustomerID)
		idx++
	}
	if len(f.Statuses) > 0 {
		sb.WriteString(fmt.Sprintf(" AND status = ANY($%d)", idx))
		args = append(args, bookingStatusStrings(f.Statuses))
	}
	sb.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepo) ListHoldsExpiredBefore(ctx context.Context, cutoff time.Time) ([]*models.Booking, error) {
	q := baseSelectBooking() + `
        WHERE status = ANY($1)
          AND hold_expires_at IS NOT NULL
          AND hold_expires_at < $2
        ORDER BY hold_expires_at`
	holds := []models.BookingStatus{models.BookingStatusHoldRequested, models.BookingStatusHoldConfirmed}
	rows, err := r.db.Query(ctx, q, bookingStatusStrings(holds), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepo) UpdateIfVersion(ctx context.Context, b *models.Booking, expected int64) (pgconn.CommandTag, error) {
	b.UpdatedAt = time.Now().UTC()
	q := `
        UPDATE bookings
        SET status=$1,
            manager_id=$2,
            approved_at=$3,
            rejected_at=$4,
            cancelled_at=$5,
            cancellation_reason=$6,
            manager_notes=$7,
            notes=$8,
            updated_at=$9,
            row_version=row_version+1
        WHERE id=$10 AND row_version=$11
    `
	tag, err := r.db.Exec(ctx, q,
		string(b.Status), b.ManagerID, b.ApprovedAt, b.RejectedAt, b.CancelledAt,
		b.CancellationReason, b.ManagerNotes, b.Notes, b.UpdatedAt,
		b.ID, expected,
	)
	return tag, TranslatePgError(err)
}

func bookingStatusStrings(in []models.BookingStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
