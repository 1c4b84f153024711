package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP_DirectConnection(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.7:4567"

	assert.Equal(t, "203.0.113.7", ClientIP(req, nil))
}

func TestClientIP_IgnoresForwardedHeaderFromUntrustedPeer(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.7:4567"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")

	// The peer is not a trusted proxy, so the header is attacker-controlled.
	assert.Equal(t, "203.0.113.7", ClientIP(req, []string{"10.0.0.0/8"}))
}

func TestClientIP_HonorsForwardedHeaderFromTrustedProxy(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:4567"
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.5")

	assert.Equal(t, "198.51.100.1", ClientIP(req, []string{"10.0.0.0/8"}))
}

func TestClientIP_FallsBackToRealIPHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:4567"
	req.Header.Set("X-Real-IP", "198.51.100.2")

	assert.Equal(t, "198.51.100.2", ClientIP(req, []string{"10.0.0.0/8"}))
}

func TestClientIP_SkipsGarbageForwardedEntries(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:4567"
	req.Header.Set("X-Forwarded-For", "not-an-ip, 198.51.100.3")

	assert.Equal(t, "198.51.100.3", ClientIP(req, []string{"10.0.0.0/8"}))
}

func TestClientIP_EmptyRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = ""

	assert.Equal(t, "unknown", ClientIP(req, nil))
}
