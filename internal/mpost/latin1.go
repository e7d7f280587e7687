package mpost

// EncodeLatin1 narrows s to the ISO-8859-1 byte sequence the handheld
// can display, silently dropping any rune outside Latin-1 (code points
// above U+00FF). This mirrors the original implementation's use of
// EncoderTrap::Ignore.
func EncodeLatin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r <= 0xFF {
			out = append(out, byte(r))
		}
	}
	return out
}

// DecodeLatin1Strict decodes an ISO-8859-1 byte sequence back to a Go
// string. Every byte 0x00-0xFF maps to the Unicode code point of the
// same value, so this never fails; it exists to document the inverse
// of EncodeLatin1 at the boundary where handheld-authored content is
// decoded (internal/mwrite), where a "strict" decode is conceptually
// required by SPEC_FULL.md but is, for ISO-8859-1, total.
func DecodeLatin1Strict(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
