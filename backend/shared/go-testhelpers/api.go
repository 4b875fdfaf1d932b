package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/stretchr/testify/require"
)

// BuildAuthRequest sets standard headers for authenticated test requests.
// With no token the tenant is passed through the X-Tenant-ID header instead.
func (h *TestHelper) BuildAuthRequest(method, reqURL, jwtString, tenantID string, body []byte) *http.Request {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(body))
	require.NoError(h.T, err)

	if jwtString != "" {
		req.Header.Set("Authorization", "Bearer "+jwtString)
	} else if tenantID != "" {
		req.Header.Set(utils.TenantHeader, tenantID)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DoRequest executes the request and returns the response; the caller closes the body.
func (h *TestHelper) DoRequest(req *http.Request) *http.Response {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	require.NoError(h.T, err, "HTTP request failed")
	return resp
}

// DecodeJSON reads the whole body into out and closes it.
func (h *TestHelper) DecodeJSON(resp *http.Response, out any) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.T, err)
	require.NoError(h.T, json.Unmarshal(raw, out), "body: %s", string(raw))
}

// MarshalJSON is a require-wrapped json.Marshal.
func (h *TestHelper) MarshalJSON(v any) []byte {
	b, err := json.Marshal(v)
	require.NoError(h.T, err)
	return b
}
