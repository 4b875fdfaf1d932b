package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusServer(t *testing.T, code int) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthHandler(t *testing.T) {
	up := statusServer(t, http.StatusOK)
	down := statusServer(t, http.StatusServiceUnavailable)
	client := &http.Client{Timeout: time.Second}

	tests := []struct {
		name       string
		targets    []string
		wantStatus int
		wantBody   string
	}{
		{"all healthy", []string{up.URL, up.URL}, http.StatusOK, "OK"},
		{"one failing", []string{up.URL, down.URL}, http.StatusServiceUnavailable, "UNHEALTHY"},
		{"unreachable", []string{"http://127.0.0.1:1/health"}, http.StatusServiceUnavailable, "UNHEALTHY"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			healthHandler(client, tc.targets)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.wantStatus, rec.Code)

			var body aggregateHealth
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantBody, body.Status)
			assert.Len(t, body.Targets, len(tc.targets))
		})
	}
}

func TestSplitTargets(t *testing.T) {
	assert.Equal(t, []string{"http://a/health", "http://b/health"}, splitTargets(" http://a/health, ,http://b/health "))
	assert.Nil(t, splitTargets(""))
}
