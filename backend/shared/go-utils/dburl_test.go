package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithIsolatedRole(t *testing.T) {
	got, err := WithIsolatedRole("postgres://crm:s3cret@db:5432/crm?sslmode=disable", "Runner7", "42")
	require.NoError(t, err)
	assert.Equal(t, "postgres://runner7-42:s3cret@db:5432/crm?sslmode=disable", got)

	_, err = WithIsolatedRole("postgres://crm@db/crm", "", "42")
	assert.Error(t, err)
}

func TestWithIsolatedRole_RejectsNonPostgres(t *testing.T) {
	_, err := WithIsolatedRole("mysql://crm@db/crm", "runner", "1")
	assert.Error(t, err)

	_, err = WithIsolatedRole("://nope", "runner", "1")
	assert.Error(t, err)
}

func TestIsolatedRoleName(t *testing.T) {
	role, err := IsolatedRoleName("CI-Box", "0009")
	require.NoError(t, err)
	assert.Equal(t, "ci-box-0009", role)
}
