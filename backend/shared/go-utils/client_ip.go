package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the best client address from proxy headers or RemoteAddr.
// Returns "" when nothing parses as an IP.
func ClientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		for _, ip := range strings.Split(forwardedFor, ",") {
			if cleanIP := strings.TrimSpace(ip); isValidIP(cleanIP) {
				return cleanIP
			}
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); isValidIP(realIP) {
		return realIP
	}

	if forwarded := r.Header.Get("Forwarded"); forwarded != "" {
		for _, part := range strings.Split(forwarded, ";") {
			part = strings.TrimSpace(part)
			if maybeIP, ok := strings.CutPrefix(part, "for="); ok {
				if maybeIP = strings.Trim(maybeIP, "\""); isValidIP(maybeIP) {
					return maybeIP
				}
			}
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && isValidIP(ip) {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	return ip != "" && net.ParseIP(ip) != nil
}
