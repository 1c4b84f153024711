// Package validation holds the pure field checks guarding every user-supplied
// value before it reaches persistence or escrow calls.
package validation

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/mr-tron/base58"
)

// Result reports the outcome of a single field check. Checks never panic.
type Result struct {
	Valid bool
	Err   string
}

func ok() Result {
	return Result{Valid: true}
}

func fail(msg string) Result {
	return Result{Valid: false, Err: msg}
}

const (
	// Solana public keys encode 32 bytes as 44 base58 characters.
	mintAddressLength = 44
	publicKeyBytes    = 32
)

// ValidateMintAddress checks that s is a well-formed base58-encoded 32-byte
// public key. This is a pure format check: it does not verify the address
// exists on chain or is owned by the caller.
func ValidateMintAddress(s string) Result {
	if s == "" {
		return fail("address is required")
	}

	clean := strings.TrimSpace(s)
	if clean == "" {
		return fail("address cannot be empty")
	}

	if len(clean) != mintAddressLength {
		return fail("invalid address length")
	}

	decoded, err := base58.Decode(clean)
	if err != nil || len(decoded) != publicKeyBytes {
		return fail("invalid mint address format")
	}

	return ok()
}

// Lexical SSRF blocklist for client-supplied image URLs. The "172." prefix is
// deliberately coarse: it matches all of 172.x.x.x, not just the private
// 172.16-31 range, and the whole check is prefix matching rather than a CIDR
// parse. It misses encoded IP forms and IPv6 loopback; tightening it is a
// policy change, not a bug fix.
var blockedHostPrefixes = []string{"192.168.", "10.", "172."}

// ValidateSecureURL checks that s is a syntactically valid HTTPS URL whose
// hostname does not lexically resolve to a loopback or private-range literal.
func ValidateSecureURL(s string) Result {
	if s == "" {
		return fail("URL is required")
	}

	clean := strings.TrimSpace(s)
	if clean == "" {
		return fail("URL cannot be empty")
	}

	u, err := url.Parse(clean)
	if err != nil || u.Host == "" {
		return fail("invalid URL format")
	}

	if u.Scheme != "https" {
		return fail("only HTTPS URLs are allowed")
	}

	hostname := strings.ToLower(u.Hostname())
	if hostname == "localhost" || hostname == "127.0.0.1" {
		return fail("private/local URLs are not allowed")
	}
	for _, prefix := range blockedHostPrefixes {
		if strings.HasPrefix(hostname, prefix) {
			return fail("private/local URLs are not allowed")
		}
	}

	return ok()
}

// ValidateNumericRange checks that value is a finite number within
// [min, max]. The error message carries the field label and the bounds so
// rejections are observable as-is.
func ValidateNumericRange(value, min, max float64, label string) Result {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fail(fmt.Sprintf("%s must be a valid number", label))
	}

	if value < min {
		return fail(fmt.Sprintf("%s must be at least %v", label, min))
	}

	if value > max {
		return fail(fmt.Sprintf("%s cannot exceed %v", label, max))
	}

	return ok()
}

var (
	scriptTagPattern    = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	jsSchemePattern     = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// SanitizeText trims, truncates to maxLength UTF-16 code units, and strips
// script blocks, the javascript: scheme, and inline event-handler patterns.
//
// This is a best-effort defense-in-depth filter, not an HTML sanitizer: it
// does not parse markup and sufficiently obfuscated payloads can get through.
// Output is still escaped at render time by the presentation layer.
func SanitizeText(input string, maxLength int) string {
	if input == "" {
		return ""
	}

	s := strings.TrimSpace(input)
	s = truncateUTF16(s, maxLength)
	s = scriptTagPattern.ReplaceAllString(s, "")
	s = jsSchemePattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	return s
}

// truncateUTF16 cuts s to at most n UTF-16 code units. Lengths are measured
// in UTF-16 to stay consistent with the limits enforced by the web clients.
func truncateUTF16(s string, n int) string {
	if n <= 0 {
		return ""
	}

	units := utf16.Encode([]rune(s))
	if len(units) <= n {
		return s
	}

	truncated := units[:n]
	// Drop a dangling high surrogate rather than emit a broken pair. A low
	// surrogate in the last slot closes the pair before it and stays.
	if last := truncated[n-1]; 0xD800 <= last && last < 0xDC00 {
		truncated = truncated[:n-1]
	}
	return string(utf16.Decode(truncated))
}

// UTF16Length reports the length of s in UTF-16 code units, the unit the
// truncation limits and suspicious-length thresholds are measured in.
func UTF16Length(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// Suspicious-length thresholds: inputs longer than these are logged as
// suspicious even when they sanitize cleanly.
const (
	SuspiciousShortFieldLength = 50
	SuspiciousLongFieldLength  = 1000
)
