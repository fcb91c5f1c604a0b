// Package base64 implements the base64 encoding defined in RFC 4648.
//
// Two alphabets are supported:
//   - Standard (RFC 4648 Section 4), ending in '+' and '/'
//   - URLSafe (RFC 4648 Section 5), ending in '-' and '_'
//
// Encoding always succeeds for any input that fits in memory. Decoding
// accepts both the padded and the unpadded form of the final quantum and
// rejects malformed text with a *DecodeError that wraps one of the package
// sentinel errors:
//
//	data, err := base64.Decode("TW9ua2V5IEJ1c2luZXNz", base64.Standard)
//	if errors.Is(err, base64.ErrTruncatedInput) {
//		// final quantum held a single symbol
//	}
//
// A Codec carries the options that callers commonly need to vary, such as
// omitting padding on output or skipping line breaks on input:
//
//	jws := base64.New(base64.URLSafe).WithPadding(false)
//	s, _ := jws.Encode(payload)
//
// Codec values are immutable and safe for concurrent use.
//
// http://www.rfc-editor.org/rfc/rfc4648
package base64
