package repositories

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	shopspring "github.com/jackc/pgtype/ext/shopspring-numeric"
	"github.com/jackc/pgx/v4"
)

// AfterConnect registers the type mappings every connection needs: NUMERIC
// columns decode straight into decimal.Decimal. Set it as pgxpool's AfterConnect.
func AfterConnect(ctx context.Context, conn *pgx.Conn) error {
	conn.ConnInfo().RegisterDataType(pgtype.DataType{
		Value: &shopspring.Numeric{},
		Name:  "numeric",
		OID:   pgtype.NumericOID,
	})
	return nil
}

// DB is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx, so every repository
// can run either on the pool or inside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos bundles the repositories bound to one connection or transaction.
type Repos struct {
	Units    UnitRepository
	Bookings BookingRepository
	Payments PaymentRepository
	Audit    BookingAuditLogRepository
}

// NewRepos builds every repository on top of db.
func NewRepos(db DB) Repos {
	return Repos{
		Units:    NewUnitRepository(db),
		Bookings: NewBookingRepository(db),
		Payments: NewPaymentRepository(db),
		Audit:    NewBookingAuditLogRepository(db),
	}
}

/*
TxManager hands out repositories and runs units of work.

  - Repos() returns repositories bound to the pool (autocommit reads).
  - WithTx runs fn inside one transaction. Any error or panic from fn rolls
    the whole transaction back; otherwise it commits and returns the commit error.
*/
type TxManager interface {
	Repos() Repos
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

type pgTxManager struct {
	db    DB
	repos Repos
}

func NewTxManager(db DB) TxManager {
	return &pgTxManager{db: db, repos: NewRepos(db)}
}

func (m *pgTxManager) Repos() Repos {
	return m.repos
}

func (m *pgTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) (err error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	return fn(ctx, NewRepos(tx))
}
