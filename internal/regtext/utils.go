package regtext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/regkit/pkg/types"
)

// unescapeRegString unescapes a string from .reg format.
// .reg files escape backslashes as \\ and quotes as \"
func unescapeRegString(s string) string {
	// Fast path: no backslashes = no escapes
	if strings.IndexByte(s, '\\') == -1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// findClosingQuote finds the position of the closing quote in a line,
// accounting for escaped quotes (preceded by an odd number of backslashes).
// Returns -1 if no valid closing quote is found.
// The search starts at position 1 (assuming the opening quote is at position 0).
func findClosingQuote(line string) int {
	for i := 1; i < len(line); i++ {
		if line[i] != '"' {
			continue
		}
		// Count consecutive backslashes before this quote
		numBackslashes := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			numBackslashes++
		}
		// If odd number of backslashes, the quote is escaped
		if numBackslashes%2 == 1 {
			continue
		}
		return i
	}
	return -1
}

// parseHexValueType extracts the registry type from a hex(N): prefix.
// N is hexadecimal, so "hex(b):" is REG_QWORD.
func parseHexValueType(payload string) (types.RegType, error) {
	openParen := strings.IndexByte(payload, '(')
	closeParen := strings.IndexByte(payload, ')')
	if openParen < 0 || closeParen <= openParen+1 {
		return 0, fmt.Errorf("regtext: malformed typed hex %q", payload)
	}
	n, err := strconv.ParseUint(payload[openParen+1:closeParen], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("regtext: invalid hex type in %q: %w", payload, err)
	}
	return types.RegType(n), nil
}

// parseHexBytes parses hex data from .reg format (hex:01,02,03,...).
// It handles:
// - Removing the prefix (hex:, hex(7):, etc.) via the colon position
// - Line continuation characters and whitespace
// - Comma-separated hex bytes
// - Single-digit bytes (auto-pads with 0).
func parseHexBytes(hexStr string) ([]byte, error) {
	colonPos := strings.IndexByte(hexStr, ':')
	if colonPos == -1 {
		return nil, errors.New("invalid hex data format: missing colon")
	}
	hexStr = hexStr[colonPos+1:]

	result := make([]byte, 0, len(hexStr)/3+1)
	i := 0
	for i < len(hexStr) {
		for i < len(hexStr) && isHexSkipChar(hexStr[i]) {
			i++
		}
		if i >= len(hexStr) {
			break
		}

		hiVal := hexCharToNibble(hexStr[i])
		if hiVal == 0xFF {
			return nil, fmt.Errorf("invalid hex digit %q at position %d", hexStr[i], i)
		}
		i++

		// Read second hex digit (or pad with 0 if single digit)
		var loVal byte
		if i < len(hexStr) && !isHexSkipChar(hexStr[i]) {
			loVal = hexCharToNibble(hexStr[i])
			if loVal == 0xFF {
				return nil, fmt.Errorf("invalid hex digit %q at position %d", hexStr[i], i)
			}
			i++
		} else {
			loVal = hiVal
			hiVal = 0
		}
		result = append(result, (hiVal<<4)|loVal)
	}
	return result, nil
}

// hexCharToNibble converts a hex character to its 4-bit value
// Returns 0xFF for invalid characters.
func hexCharToNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0xFF
	}
}

// isHexSkipChar returns true for characters to skip during hex parsing.
func isHexSkipChar(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',' || c == '\\'
}
