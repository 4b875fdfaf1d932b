package testhelpers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"log"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestHelper encapsulates the components integration tests need: a live
// service URL, a pool on the service database and a key to mint staff tokens.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	BaseURL    string
	DB         *pgxpool.Pool
	PrivateKey *rsa.PrivateKey

	Tx    repositories.TxManager
	Repos repositories.Repos
}

// NewTestHelper sets up the testing environment from env vars. It's designed
// to be called from each integration test (or once from TestMain).
func NewTestHelper(t *testing.T) *TestHelper {
	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL env var is missing")
	}
	if runnerID, runNumber := os.Getenv("UNIQUE_RUNNER_ID"), os.Getenv("UNIQUE_RUN_NUMBER"); runnerID != "" && runNumber != "" {
		isolated, err := utils.WithIsolatedRole(dbURL, runnerID, runNumber)
		require.NoError(t, err)
		dbURL = isolated
	}

	var privateKey *rsa.PrivateKey
	if b64 := os.Getenv("RSA_PRIVATE_KEY_BASE64"); b64 != "" {
		pemBytes, err := base64.StdEncoding.DecodeString(b64)
		require.NoError(t, err)
		privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
		require.NoError(t, err)
	}

	ctx := context.Background()
	poolCfg, err := pgxpool.ParseConfig(dbURL)
	require.NoError(t, err)
	poolCfg.AfterConnect = repositories.AfterConnect
	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	tx := repositories.NewTxManager(pool)
	return &TestHelper{
		T:          t,
		Ctx:        ctx,
		BaseURL:    baseURL,
		DB:         pool,
		PrivateKey: privateKey,
		Tx:         tx,
		Repos:      tx.Repos(),
	}
}
