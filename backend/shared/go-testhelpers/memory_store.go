package testhelpers

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
)

// Fault injection points understood by MemoryStore.FailOnce.
const (
	FaultUnitUpdate    = "units.update"
	FaultBookingUpdate = "bookings.update"
	FaultAuditCreate   = "audit.create"
	FaultPaymentRefund = "payments.refund"
)

var (
	tagUpdated   = pgconn.CommandTag("UPDATE 1")
	tagUnchanged = pgconn.CommandTag("UPDATE 0")
)

type memState struct {
	units        map[uuid.UUID]models.Unit
	bookings     map[uuid.UUID]models.Booking
	bookingOrder []uuid.UUID
	payments     map[uuid.UUID]models.Payment
	paymentOrder []uuid.UUID
	audit        []models.BookingAuditLog
}

func (s memState) clone() memState {
	out := memState{
		units:        make(map[uuid.UUID]models.Unit, len(s.units)),
		bookings:     make(map[uuid.UUID]models.Booking, len(s.bookings)),
		bookingOrder: slices.Clone(s.bookingOrder),
		payments:     make(map[uuid.UUID]models.Payment, len(s.payments)),
		paymentOrder: slices.Clone(s.paymentOrder),
		audit:        slices.Clone(s.audit),
	}
	for k, v := range s.units {
		out.units[k] = v
	}
	for k, v := range s.bookings {
		out.bookings[k] = v
	}
	for k, v := range s.payments {
		out.payments[k] = v
	}
	return out
}

/*
MemoryStore is an in-process repositories.TxManager for service tests.

Transactions are fully serialised: WithTx holds the store lock for the whole
unit of work and restores a snapshot when fn fails, which is at least as strict
as the row locks and advisory locks the Postgres implementation relies on.
It enforces the same one-active-booking-per-unit and payment→booking rules as
the schema.
*/
type MemoryStore struct {
	mu     sync.Mutex
	state  memState
	faults map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memState{
			units:    map[uuid.UUID]models.Unit{},
			bookings: map[uuid.UUID]models.Booking{},
			payments: map[uuid.UUID]models.Payment{},
		},
		faults: map[string]error{},
	}
}

// FailOnce makes the next call at the given fault point return err.
func (s *MemoryStore) FailOnce(point string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[point] = err
}

func (s *MemoryStore) Repos() repositories.Repos {
	return s.repos(false)
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, r repositories.Repos) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = snapshot
			panic(p)
		}
		if err != nil {
			s.state = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s.repos(true))
}

// AuditCount is a test accessor for the number of audit rows written.
func (s *MemoryStore) AuditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.audit)
}

func (s *MemoryStore) repos(inTx bool) repositories.Repos {
	return repositories.Repos{
		Units:    &memUnitRepo{s: s, inTx: inTx},
		Bookings: &memBookingRepo{s: s, inTx: inTx},
		Payments: &memPaymentRepo{s: s, inTx: inTx},
		Audit:    &memAuditRepo{s: s, inTx: inTx},
	}
}

// run executes f under the store lock unless the caller already holds it.
func (s *MemoryStore) run(inTx bool, f func(st *memState) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return f(&s.state)
}

func (s *MemoryStore) fault(point string) error {
	if err, ok := s.faults[point]; ok {
		delete(s.faults, point)
		return err
	}
	return nil
}

/* ---------- units ---------- */

type memUnitRepo struct {
	s    *MemoryStore
	inTx bool
}

func (r *memUnitRepo) Create(ctx context.Context, u *models.Unit) error {
	return r.s.run(r.inTx, func(st *memState) error {
		if _, ok := st.units[u.ID]; ok {
			return fmt.Errorf("%w: units_pkey", repositories.ErrUniqueViolation)
		}
		now := time.Now().UTC()
		u.CreatedAt, u.UpdatedAt, u.RowVersion = now, now, 1
		st.units[u.ID] = *u
		return nil
	})
}

func (r *memUnitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	var out *models.Unit
	err := r.s.run(r.inTx, func(st *memState) error {
		if u, ok := st.units[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *memUnitRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.GetByID(ctx, id)
}

func (r *memUnitRepo) List(ctx context.Context, tenantID string, projectID *uuid.UUID) ([]*models.Unit, error) {
	var out []*models.Unit
	err := r.s.run(r.inTx, func(st *memState) error {
		for _, u := range st.units {
			if tenantID != "" && u.TenantID != tenantID {
				continue
			}
			if projectID != nil && u.ProjectID != *projectID {
				continue
			}
			out = append(out, &u)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *models.Unit) int {
		if a.UnitNumber < b.UnitNumber {
			return -1
		}
		if a.UnitNumber > b.UnitNumber {
			return 1
		}
		return 0
	})
	return out, err
}

func (r *memUnitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := r.s.run(r.inTx, func(st *memState) error {
		if err := r.s.fault(FaultUnitUpdate); err != nil {
			return err
		}
		cur, ok := st.units[u.ID]
		if !ok || cur.RowVersion != expected {
			tag = tagUnchanged
			return nil
		}
		u.UpdatedAt = time.Now().UTC()
		stored := *u
		stored.RowVersion = expected + 1
		st.units[u.ID] = stored
		tag = tagUpdated
		return nil
	})
	return tag, err
}

func (r *memUnitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return repositories.WithRetry(ctx, 3, id.String(),
		func(ctx context.Context, id string) (*models.Unit, error) {
			return r.GetByID(ctx, uuid.MustParse(id))
		},
		r.UpdateIfVersion,
		mutate,
	)
}

func (r *memUnitRepo) LockForBooking(ctx context.Context, unitID uuid.UUID) error {
	return nil
}

/* ---------- bookings ---------- */

type memBookingRepo struct {
	s    *MemoryStore
	inTx bool
}

func (r *memBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	return r.s.run(r.inTx, func(st *memState) error {
		if _, ok := st.bookings[b.ID]; ok {
			return fmt.Errorf("%w: bookings_pkey", repositories.ErrUniqueViolation)
		}
		if b.Status.IsActive() {
			for _, other := range st.bookings {
				if other.UnitID == b.UnitID && other.Status.IsActive() {
					return fmt.Errorf("%w: one_active_booking_per_unit", repositories.ErrUniqueViolation)
				}
			}
		}
		now := time.Now().UTC()
		b.CreatedAt, b.UpdatedAt, b.RowVersion = now, now, 1
		st.bookings[b.ID] = *b
		st.bookingOrder = append(st.bookingOrder, b.ID)
		return nil
	})
}

func (r *memBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var out *models.Booking
	err := r.s.run(r.inTx, func(st *memState) error {
		if b, ok := st.bookings[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *memBookingRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *memBookingRepo) FindActiveByUnit(ctx context.Context, unitID uuid.UUID) (*models.Booking, error) {
	list, err := r.List(ctx, repositories.BookingFilter{UnitID: &unitID, Statuses: models.ActiveBookingStatuses})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *memBookingRepo) List(ctx context.Context, f repositories.BookingFilter) ([]*models.Booking, error) {
	var out []*models.Booking
	err := r.s.run(r.inTx, func(st *memState) error {
		for i := len(st.bookingOrder) - 1; i >= 0; i-- {
			b := st.bookings[st.bookingOrder[i]]
			if f.TenantID != "" && b.TenantID != f.TenantID {
				continue
			}
			if f.UnitID != nil && b.UnitID != *f.UnitID {
				continue
			}
			if f.CustomerID != nil && b.CustomerID != *f.CustomerID {
				continue
			}
			if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, b.Status) {
				continue
			}
			out = append(out, &b)
		}
		return nil
	})
	return out, err
}

func (r *memBookingRepo) ListHoldsExpiredBefore(ctx context.Context, cutoff time.Time) ([]*models.Booking, error) {
	holds, err := r.List(ctx, repositories.BookingFilter{
		Statuses: []models.BookingStatus{models.BookingStatusHoldRequested, models.BookingStatusHoldConfirmed},
	})
	if err != nil {
		return nil, err
	}
	var out []*models.Booking
	for _, b := range holds {
		if b.HoldExpiresAt != nil && b.HoldExpiresAt.Before(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) UpdateIfVersion(ctx context.Context, b *models.Booking, expected int64) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := r.s.run(r.inTx, func(st *memState) error {
		if err := r.s.fault(FaultBookingUpdate); err != nil {
			return err
		}
		cur, ok := st.bookings[b.ID]
		if !ok || cur.RowVersion != expected {
			tag = tagUnchanged
			return nil
		}
		b.UpdatedAt = time.Now().UTC()
		stored := *b
		stored.RowVersion = expected + 1
		st.bookings[b.ID] = stored
		tag = tagUpdated
		return nil
	})
	return tag, err
}

/* ---------- payments ---------- */

type memPaymentRepo struct {
	s    *MemoryStore
	inTx bool
}

func (r *memPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return r.s.run(r.inTx, func(st *memState) error {
		if _, ok := st.bookings[p.BookingID]; !ok {
			return fmt.Errorf("%w: payments_booking_id_fkey", repositories.ErrIntegrityViolation)
		}
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: payments_amount_check", repositories.ErrIntegrityViolation)
		}
		now := time.Now().UTC()
		p.CreatedAt, p.UpdatedAt, p.RowVersion = now, now, 1
		st.payments[p.ID] = *p
		st.paymentOrder = append(st.paymentOrder, p.ID)
		return nil
	})
}

func (r *memPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var out *models.Payment
	err := r.s.run(r.inTx, func(st *memState) error {
		if p, ok := st.payments[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *memPaymentRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *memPaymentRepo) List(ctx context.Context, f repositories.PaymentFilter) ([]*models.Payment, error) {
	var out []*models.Payment
	err := r.s.run(r.inTx, func(st *memState) error {
		for i := len(st.paymentOrder) - 1; i >= 0; i-- {
			p := st.payments[st.paymentOrder[i]]
			if f.TenantID != "" && p.TenantID != f.TenantID {
				continue
			}
			if f.BookingID != nil && p.BookingID != *f.BookingID {
				continue
			}
			if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, p.Status) {
				continue
			}
			out = append(out, &p)
		}
		return nil
	})
	return out, err
}

func (r *memPaymentRepo) UpdateIfVersion(ctx context.Context, p *models.Payment, expected int64) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := r.s.run(r.inTx, func(st *memState) error {
		cur, ok := st.payments[p.ID]
		if !ok || cur.RowVersion != expected {
			tag = tagUnchanged
			return nil
		}
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: payments_amount_check", repositories.ErrIntegrityViolation)
		}
		p.UpdatedAt = time.Now().UTC()
		stored := *p
		stored.RowVersion = expected + 1
		st.payments[p.ID] = stored
		tag = tagUpdated
		return nil
	})
	return tag, err
}

func (r *memPaymentRepo) RefundOpenByBooking(ctx context.Context, bookingID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.s.run(r.inTx, func(st *memState) error {
		if err := r.s.fault(FaultPaymentRefund); err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, id := range st.paymentOrder {
			p := st.payments[id]
			if p.BookingID != bookingID || p.Status == models.PaymentStatusRefunded {
				continue
			}
			p.Status = models.PaymentStatusRefunded
			p.RowVersion++
			p.UpdatedAt = now
			st.payments[id] = p
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

func (r *memPaymentRepo) Summary(ctx context.Context, tenantID string) ([]models.PaymentStatusTotal, error) {
	totals := map[models.PaymentStatus]*models.PaymentStatusTotal{}
	err := r.s.run(r.inTx, func(st *memState) error {
		for _, p := range st.payments {
			if tenantID != "" && p.TenantID != tenantID {
				continue
			}
			t, ok := totals[p.Status]
			if !ok {
				t = &models.PaymentStatusTotal{Status: p.Status, Total: decimal.Zero}
				totals[p.Status] = t
			}
			t.Count++
			t.Total = t.Total.Add(p.Amount)
		}
		return nil
	})
	var out []models.PaymentStatusTotal
	for _, s := range models.PaymentStatuses {
		if t, ok := totals[s]; ok {
			out = append(out, *t)
		}
	}
	return out, err
}

/* ---------- audit ---------- */

type memAuditRepo struct {
	s    *MemoryStore
	inTx bool
}

func (r *memAuditRepo) Create(ctx context.Context, entry *models.BookingAuditLog) error {
	return r.s.run(r.inTx, func(st *memState) error {
		if err := r.s.fault(FaultAuditCreate); err != nil {
			return err
		}
		entry.CreatedAt = time.Now().UTC()
		st.audit = append(st.audit, *entry)
		return nil
	})
}

func (r *memAuditRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.BookingAuditLog, error) {
	var out []*models.BookingAuditLog
	err := r.s.run(r.inTx, func(st *memState) error {
		for _, e := range st.audit {
			if e.BookingID == bookingID {
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}

var _ repositories.TxManager = (*MemoryStore)(nil)
