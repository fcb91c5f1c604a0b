package base64

import (
	"fmt"
	"math"
)

// Codec encodes and decodes using one alphabet and a fixed set of options.
// The zero value is a padded Standard codec.
type Codec struct {
	alphabet       Alphabet
	noPadding      bool
	ignoreNewlines bool
}

// New returns a padded Codec for the given alphabet.
func New(alphabet Alphabet) Codec {
	return Codec{alphabet: alphabet}
}

// WithPadding returns a copy of c that emits (true) or omits (false) the
// trailing padding symbols on Encode. Decode accepts both forms either way.
func (c Codec) WithPadding(padded bool) Codec {
	c.noPadding = !padded
	return c
}

// WithAlphabet returns a copy of c using alphabet, keeping its other options.
func (c Codec) WithAlphabet(alphabet Alphabet) Codec {
	c.alphabet = alphabet
	return c
}

// IgnoreNewlines returns a copy of c whose Decode skips '\r' and '\n'.
func (c Codec) IgnoreNewlines(ignore bool) Codec {
	c.ignoreNewlines = ignore
	return c
}

// Alphabet returns the alphabet used by c.
func (c Codec) Alphabet() Alphabet { return c.alphabet }

// Padded reports whether Encode emits padding.
func (c Codec) Padded() bool { return !c.noPadding }

// Encode returns the base64 text for data using the given alphabet, padded.
func Encode(data []byte, alphabet Alphabet) (string, error) {
	return New(alphabet).Encode(data)
}

// Decode returns the bytes represented by text in the given alphabet. Both
// padded and unpadded text is accepted.
func Decode(text string, alphabet Alphabet) ([]byte, error) {
	return New(alphabet).Decode(text)
}

// EncodedLen returns the length of the text produced for n input bytes.
func EncodedLen(n int, padded bool) int {
	if padded {
		return (n + 2) / 3 * 4
	}
	return n/3*4 + (n%3*8+5)/6
}

// DecodedLen returns the maximum number of bytes represented by n symbols.
// It is exact for unpadded text.
func DecodedLen(n int) int {
	return n/4*3 + n%4*6/8
}

// Encode returns the base64 text for data. It fails only with ErrAllocation
// when the output cannot be allocated.
func (c Codec) Encode(data []byte) (string, error) {
	if !c.alphabet.Valid() {
		return "", fmt.Errorf("%w: %v", ErrUnknownAlphabet, c.alphabet)
	}
	if len(data) == 0 {
		return "", nil
	}

	n, err := encodedLen(len(data), c.Padded())
	if err != nil {
		return "", err
	}
	dst, err := allocate(n)
	if err != nil {
		return "", err
	}
	c.encode(dst, data)
	return string(dst), nil
}

func (c Codec) encode(dst, src []byte) {
	symbols := c.alphabet.Symbols()

	di, si := 0, 0
	for n := len(src) / 3 * 3; si < n; si += 3 {
		// Pack 3 bytes into 24 bits, first byte highest
		v := uint(src[si])<<16 | uint(src[si+1])<<8 | uint(src[si+2])
		dst[di+0] = symbols[v>>18&0x3F]
		dst[di+1] = symbols[v>>12&0x3F]
		dst[di+2] = symbols[v>>6&0x3F]
		dst[di+3] = symbols[v&0x3F]
		di += 4
	}

	remain := len(src) - si
	if remain == 0 {
		return
	}

	// Missing bytes of the final group are zero
	v := uint(src[si]) << 16
	if remain == 2 {
		v |= uint(src[si+1]) << 8
	}
	dst[di+0] = symbols[v>>18&0x3F]
	dst[di+1] = symbols[v>>12&0x3F]

	switch remain {
	case 2:
		dst[di+2] = symbols[v>>6&0x3F]
		if c.Padded() {
			dst[di+3] = Pad
		}
	case 1:
		if c.Padded() {
			dst[di+2] = Pad
			dst[di+3] = Pad
		}
	}
}

// Decode returns the bytes represented by text. Malformed text yields a
// *DecodeError and a nil slice. Decoding "" yields an empty, non-nil slice.
func (c Codec) Decode(text string) ([]byte, error) {
	if !c.alphabet.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownAlphabet, c.alphabet)
	}
	if len(text) == 0 {
		return []byte{}, nil
	}

	table := c.alphabet.decodeTable()
	dst, err := allocate(DecodedLen(len(text)))
	if err != nil {
		return nil, err
	}

	n, err := c.decode(dst, text, &table)
	if err != nil {
		return nil, err
	}
	return dst[:n:n], nil
}

// decode runs the quantum state machine over src, writing into dst, and
// returns the number of bytes written.
func (c Codec) decode(dst []byte, src string, table *[256]byte) (int, error) {
	n, si := 0, 0
	for {
		var acc uint
		k, start := 0, si

		// Fill up to 4 symbols; stop at the first byte outside the alphabet
		for k < 4 && si < len(src) {
			ch := src[si]
			if c.ignoreNewlines && isNewline(ch) {
				si++
				continue
			}
			v := table[ch]
			if v == invalid {
				break
			}
			if k == 0 {
				start = si
			}
			acc = acc<<6 | uint(v)
			k++
			si++
		}

		if k == 4 {
			dst[n+0] = byte(acc >> 16)
			dst[n+1] = byte(acc >> 8)
			dst[n+2] = byte(acc)
			n += 3
			continue
		}

		// Short quantum: end of input, padding, or a stray byte
		if si < len(src) && src[si] != Pad {
			return 0, &DecodeError{Offset: si, Char: src[si], Err: ErrInvalidCharacter}
		}

		switch k {
		case 1:
			return 0, &DecodeError{Offset: start, Err: ErrTruncatedInput}
		case 2:
			acc <<= 12
			dst[n] = byte(acc >> 16)
			n++
		case 3:
			acc <<= 6
			dst[n+0] = byte(acc >> 16)
			dst[n+1] = byte(acc >> 8)
			n += 2
		}

		if si == len(src) {
			return n, nil
		}
		if err := c.checkPadding(src, si, k); err != nil {
			return 0, err
		}
		return n, nil
	}
}

// checkPadding verifies that src[si:] holds exactly the padding that
// completes a quantum which stopped after k symbols.
func (c Codec) checkPadding(src string, si, k int) error {
	want := 0
	if k >= 2 {
		want = 4 - k
	}

	pads := 0
	for ; si < len(src); si++ {
		ch := src[si]
		if c.ignoreNewlines && isNewline(ch) {
			continue
		}
		if ch != Pad || pads == want {
			return &DecodeError{Offset: si, Char: ch, Err: ErrInvalidPadding}
		}
		pads++
	}

	if pads != want {
		return &DecodeError{Offset: len(src), Err: ErrInvalidPadding}
	}
	return nil
}

func isNewline(ch byte) bool {
	return ch == '\n' || ch == '\r'
}

func encodedLen(n int, padded bool) (int, error) {
	if n < 0 || n/3 > (math.MaxInt-4)/4 {
		return 0, fmt.Errorf("%w: %d input bytes", ErrAllocation, n)
	}
	return EncodedLen(n, padded), nil
}

// allocate converts a runtime allocation panic into ErrAllocation. A true
// out-of-memory condition still aborts the process.
func allocate(n int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %d bytes: %v", ErrAllocation, n, r)
		}
	}()
	return make([]byte, n), nil
}
