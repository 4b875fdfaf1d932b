package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStorageError(t *testing.T) {
	tests := []struct {
		name   string
		in     error
		code   string
		status int
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, utils.ErrCodeConflict, http.StatusConflict},
		{"check", &pgconn.PgError{Code: "23514"}, utils.ErrCodeValidation, http.StatusBadRequest},
		{"numeric out of range", &pgconn.PgError{Code: "22003"}, utils.ErrCodeValidation, http.StatusBadRequest},
		{"string too long", &pgconn.PgError{Code: "22001"}, utils.ErrCodeValidation, http.StatusBadRequest},
		{"connection", errors.New("connection reset"), utils.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			appErr := utils.AsAppError(storageError("Failed to save", repositories.TranslatePgError(tc.in)))
			assert.Equal(t, tc.code, appErr.Code)
			assert.Equal(t, tc.status, appErr.StatusCode)
		})
	}
}
