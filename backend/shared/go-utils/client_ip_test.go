package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.1.2.3:4567", "10.1.2.3"},
		{"forwarded-for first valid", map[string]string{"X-Forwarded-For": "garbage, 203.0.113.9, 10.0.0.1"}, "10.1.2.3:4567", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.1.2.3:4567", "198.51.100.4"},
		{"forwarded", map[string]string{"Forwarded": `proto=https; for="192.0.2.60"`}, "10.1.2.3:4567", "192.0.2.60"},
		{"nothing usable", nil, "not-an-address", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIP(req))
		})
	}
}
