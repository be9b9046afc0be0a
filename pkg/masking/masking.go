// Package masking provides irreversible partial redaction of PII strings
// before they reach logs or responses. All helpers return the input
// unchanged when it does not look like the shape they mask; redaction must
// never turn a value into something less recognizable than hiding it.
package masking

import "strings"

// Document masks a national identifier, keeping only the last four digits.
// Accepts punctuated input ("123.456.789-01"); anything that is not an
// 11-digit personal or 14-digit company document is returned as-is.
func Document(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	digits := DigitsOnly(s)
	switch len(digits) {
	case 11, 14:
		return "***" + digits[len(digits)-4:]
	default:
		return s
	}
}

// Email masks the local part of an address, keeping the first two and last
// characters and the full domain: "joao.silva@email.com" -> "jo***a@email.com".
// Local parts of three characters or fewer stay unmasked; strings without
// exactly one "@" are returned unchanged.
func Email(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return s
	}
	if len(local) <= 3 {
		return s
	}
	return local[:2] + "***" + local[len(local)-1:] + "@" + domain
}

// Phone masks a phone number, keeping at most the last four digits.
func Phone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "***"
	}
	digits := DigitsOnly(s)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return "***" + digits
}

// DigitsOnly strips every non-digit byte from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
