package market

import "strings"

// Canonicalize rewrites symbol to its canonical BASE/QUOTE form. Any input
// lacking a "/" separator is rewritten to "BASE/USDT"; inputs already
// containing "/" pass through unchanged (case-normalized).
func Canonicalize(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(s, "/") {
		return s
	}
	return s + "/USDT"
}
