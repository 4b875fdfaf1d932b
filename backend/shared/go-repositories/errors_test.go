package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslatePgError(t *testing.T) {
	plain := errors.New("connection refused")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "one_active_booking_per_unit"}, ErrUniqueViolation},
		{"foreign key", &pgconn.PgError{Code: "23503"}, ErrIntegrityViolation},
		{"check", &pgconn.PgError{Code: "23514"}, ErrIntegrityViolation},
		{"not null", &pgconn.PgError{Code: "23502"}, ErrIntegrityViolation},
		{"bad text", &pgconn.PgError{Code: "22P02"}, ErrIntegrityViolation},
		{"numeric out of range", &pgconn.PgError{Code: "22003"}, ErrIntegrityViolation},
		{"string too long", &pgconn.PgError{Code: "22001"}, ErrIntegrityViolation},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), ErrUniqueViolation},
		{"other", plain, plain},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TranslatePgError(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}

	deadlock := &pgconn.PgError{Code: "40P01"}
	assert.Same(t, deadlock, TranslatePgError(deadlock))
}
