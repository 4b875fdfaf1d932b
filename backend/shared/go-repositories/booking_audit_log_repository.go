package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
)

type BookingAuditLogRepository interface {
	Create(ctx context.Context, entry *models.BookingAuditLog) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.BookingAuditLog, error)
}

type bookingAuditLogRepo struct {
	db DB
}

func NewBookingAuditLogRepository(db DB) BookingAuditLogRepository {
	return &bookingAuditLogRepo{db: db}
}

func (r *bookingAuditLogRepo) Create(ctx context.Context, entry *models.BookingAuditLog) error {
	q := `
        INSERT INTO booking_audit_logs (
            id, booking_id, tenant_id, actor_id, action, from_status, to_status, details, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, clock_timestamp())
        RETURNING created_at
    `
	var from *string
	if entry.FromStatus != nil {
		s := string(*entry.FromStatus)
		from = &s
	}
	err := r.db.QueryRow(ctx, q,
		entry.ID,
		entry.BookingID,
		entry.TenantID,
		entry.ActorID,
		string(entry.Action),
		from,
		string(entry.ToStatus),
		entry.Details,
	).Scan(&entry.CreatedAt)
	return TranslatePgError(err)
}

func (r *bookingAuditLogRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.BookingAuditLog, error) {
	q := `
        SELECT id, booking_id, tenant_id, actor_id, action, from_status, to_status, details, created_at
        FROM booking_audit_logs
        WHERE booking_id=$1
        ORDER BY created_at, id
    `
	rows, err := r.db.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.BookingAuditLog
	for rows.Next() {
		var e models.BookingAuditLog
		var from *string
		if err := rows.Scan(
			&e.ID, &e.BookingID, &e.TenantID, &e.ActorID, &e.Action,
			&from, &e.ToStatus, &e.Details, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if from != nil {
			s := models.BookingStatus(*from)
			e.FromStatus = &s
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
