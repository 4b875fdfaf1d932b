package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

/* ───────────── public interface ───────────── */

type UnitRepository interface {
	Create(ctx context.Context, u *models.Unit) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	List(ctx context.Context, tenantID string, projectID *uuid.UUID) ([]*models.Unit, error)

	UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error

	// LockForBooking serialises booking creation per unit until the
	// surrounding transaction ends.
	LockForBooking(ctx context.Context, unitID uuid.UUID) error
}

/* ───────────── implementation ───────────── */

type unitRepo struct {
	*BaseVersionedRepo[*models.Unit]
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	r := &unitRepo{db: db}
	selectStmt := baseSelectUnit() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanUnit)
	return r
}

/* ---------- create ---------- */

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO units (
			id, project_id, tenant_id, unit_number, tower_name, price, status,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`, u.ID, u.ProjectID, u.TenantID, u.UnitNumber, u.TowerName, u.Price, string(u.Status),
	).Scan(&u.CreatedAt, &u.UpdatedAt, &u.RowVersion)
	return TranslatePgError(err)
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *unitRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.BaseVersionedRepo.GetByIDForUpdate(ctx, id.String())
}

func (r *unitRepo) List(ctx context.Context, tenantID string, projectID *uuid.UUID) ([]*models.Unit, error) {
	q := baseSelectUnit() + `
		WHERE ($1 = '' OR tenant_id = $1)
		  AND ($2::uuid IS NULL OR project_id = $2)
		ORDER BY unit_number`
	rows, err := r.db.Query(ctx, q, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanUnits(rows)
}

/* ---------- update ---------- */

func (r *unitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	u.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE units
		SET unit_number=$1, tower_name=$2, price=$3, status=$4,
		    updated_at=$5, row_version=row_version+1
		WHERE id=$6 AND row_version=$7
	`, u.UnitNumber, u.TowerName, u.Price, string(u.Status), u.UpdatedAt, u.ID, expected)
	return tag, TranslatePgError(err)
}

func (r *unitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *unitRepo) LockForBooking(ctx context.Context, unitID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('unit:' || $1::text))`, unitID.String())
	return err
}

/* ---------- internals ---------- */

func baseSelectUnit() string {
	return `
		SELECT id, project_id, tenant_id, unit_number, tower_name, price, status,
		created_at, updated_at, row_version
		FROM units`
}

func (r *unitRepo) scanUnit(row pgx.Row) (*models.Unit, error) {
	var u models.Unit
	if err := row.Scan(
		&u.ID, &u.ProjectID, &u.TenantID,
		&u.UnitNumber, &u.TowerName, &u.Price, &u.Status,
		&u.CreatedAt, &u.UpdatedAt, &u.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *unitRepo) scanUnits(rows pgx.Rows) ([]*models.Unit, error) {
	var out []*models.Unit
	for rows.Next() {
		u, err := r.scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
