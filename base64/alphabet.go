package base64

import (
	"fmt"
	"strings"
)

// Alphabet selects the 64 symbols used to represent 6-bit values.
type Alphabet int

const (
	// Standard is the "base64" alphabet of RFC 4648 Section 4.
	Standard Alphabet = iota
	// URLSafe is the "base64url" alphabet of RFC 4648 Section 5.
	URLSafe
)

// Pad is the padding symbol. It is never a member of either alphabet.
const Pad = '='

const (
	stdSymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	urlSymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

// invalid marks bytes that are not alphabet symbols in a decode table.
const invalid = 0xFF

// Symbols returns the 64 symbols of the alphabet, indexed by 6-bit value.
// Unknown alphabets fall back to Standard.
func (a Alphabet) Symbols() string {
	if a == URLSafe {
		return urlSymbols
	}
	return stdSymbols
}

// String returns the canonical name of the alphabet.
func (a Alphabet) String() string {
	switch a {
	case Standard:
		return "standard"
	case URLSafe:
		return "url"
	default:
		return fmt.Sprintf("Alphabet(%d)", int(a))
	}
}

// Valid reports whether a is one of the supported alphabets.
func (a Alphabet) Valid() bool {
	return a == Standard || a == URLSafe
}

// decodeTable builds the reverse mapping for a. The table is returned by
// value so each caller owns its copy.
func (a Alphabet) decodeTable() [256]byte {
	var table [256]byte
	for i := range table {
		table[i] = invalid
	}
	symbols := a.Symbols()
	for i := 0; i < len(symbols); i++ {
		table[symbols[i]] = byte(i)
	}
	return table
}

// ParseAlphabet maps a user supplied name to an Alphabet. Matching is case
// insensitive; the empty string selects Standard.
func ParseAlphabet(name string) (Alphabet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "std":
		return Standard, nil
	case "url", "urlsafe", "url-safe", "url_safe", "base64url":
		return URLSafe, nil
	default:
		return Standard, fmt.Errorf("%w: %q", ErrUnknownAlphabet, name)
	}
}
