package domain

import "strings"

const cpfLength = 11

// CanonicalCPF strips every non-digit so "123.456.789-00" and "12345678900" compare equal.
func CanonicalCPF(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCPF renders the 000.000.000-00 mask. Values that are not eleven digits
// after canonicalization are returned canonicalized but unmasked.
func FormatCPF(raw string) string {
	d := CanonicalCPF(raw)
	if len(d) != cpfLength {
		return d
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}
