package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const validMint = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"

func TestValidateMintAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"valid mint", validMint, true},
		{"valid mint with whitespace", "  " + validMint + "  ", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"too short", "abc", false},
		{"43 chars", validMint[:43], false},
		{"contains zero digit", strings.Replace(validMint, "F", "0", 1), false},
		{"contains capital O", strings.Replace(validMint, "F", "O", 1), false},
		{"contains capital I", strings.Replace(validMint, "F", "I", 1), false},
		{"contains lowercase l", strings.Replace(validMint, "F", "l", 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateMintAddress(tt.input)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Err)
			}
		})
	}
}

func TestValidateSecureURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"valid https", "https://arweave.net/abc123", true},
		{"http rejected", "http://arweave.net/abc123", false},
		{"empty", "", false},
		{"garbage", "not a url", false},
		{"localhost", "https://localhost/img.png", false},
		{"localhost with port", "https://localhost:8443/img.png", false},
		{"loopback", "https://127.0.0.1/img.png", false},
		{"private 192.168", "https://192.168.1.10/img.png", false},
		{"private 10.x", "https://10.1.2.3/img.png", false},
		{"coarse 172 block", "https://172.5.5.5/img.png", false},
		{"ftp rejected", "ftp://example.com/file", false},
		{"case insensitive host", "https://LOCALHOST/img.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSecureURL(tt.input)
			assert.Equal(t, tt.valid, result.Valid)
		})
	}
}

func TestValidateNumericRange(t *testing.T) {
	assert.True(t, ValidateNumericRange(5, 1, 10, "x").Valid)
	assert.True(t, ValidateNumericRange(1, 1, 10, "x").Valid)
	assert.True(t, ValidateNumericRange(10, 1, 10, "x").Valid)
	assert.False(t, ValidateNumericRange(0, 1, 10, "x").Valid)
	assert.False(t, ValidateNumericRange(11, 1, 10, "x").Valid)
	assert.False(t, ValidateNumericRange(math.NaN(), 1, 10, "x").Valid)
	assert.False(t, ValidateNumericRange(math.Inf(1), 1, 10, "x").Valid)
	assert.False(t, ValidateNumericRange(math.Inf(-1), 1, 10, "x").Valid)

	// Bounds and label surface in the message.
	result := ValidateNumericRange(11, 1, 10, "daily rent")
	assert.Contains(t, result.Err, "daily rent")
	assert.Contains(t, result.Err, "10")
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"plain text untouched", "hello world", 100, "hello world"},
		{"trims whitespace", "  hello  ", 100, "hello"},
		{"strips script tag", `a<script>alert("x")</script>b`, 100, "ab"},
		{"strips script tag case insensitive", `a<SCRIPT>x</SCRIPT>b`, 100, "ab"},
		{"strips multiline script", "a<script>\nevil()\n</script>b", 100, "ab"},
		{"strips javascript scheme", "javascript:alert(1)", 100, "alert(1)"},
		{"strips event handler", `x onerror=alert(1)`, 100, "x alert(1)"},
		{"keeps ongoing word", "ongoing work", 100, "ongoing work"},
		{"truncates", "abcdefghij", 5, "abcde"},
		{"empty", "", 100, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeText(tt.input, tt.maxLen))
		})
	}
}

func TestSanitizeText_UTF16Truncation(t *testing.T) {
	// Each emoji is one rune but two UTF-16 code units.
	input := "😀😀😀"
	assert.Equal(t, "😀😀😀", SanitizeText(input, 6))
	assert.Equal(t, "😀😀", SanitizeText(input, 4))
	// A cut through a surrogate pair drops the dangling half entirely.
	assert.Equal(t, "😀😀", SanitizeText(input, 5))
}

func TestSanitizeText_CutOnPairBoundaryKeepsCompletePair(t *testing.T) {
	// A cut landing exactly between two pairs ends on a low surrogate that
	// closes the preceding pair; nothing may be dropped or replaced.
	assert.Equal(t, "😀", SanitizeText("😀😀", 2))
	assert.NotContains(t, SanitizeText("😀😀", 2), "�")
}

func TestUTF16Length(t *testing.T) {
	assert.Equal(t, 0, UTF16Length(""))
	assert.Equal(t, 5, UTF16Length("hello"))
	// Emoji outside the BMP count as two code units each.
	assert.Equal(t, 2, UTF16Length("😀"))
	assert.Equal(t, 7, UTF16Length("abc😀de"))
}

func TestSanitizeText_TruncatesBeforeStripping(t *testing.T) {
	// A script tag split by the length cut must not survive.
	input := "abcd<script>evil()</script>"
	out := SanitizeText(input, 10)
	assert.NotContains(t, out, "evil")
}
