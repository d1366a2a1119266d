// Package tts implements the TTS Synthesis Service (C9): sanitizing
// notification text for speech, selecting a provider from a fallback
// chain, adjusting voice parameters by priority, and caching results.
package tts

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sentineldesk/signalhub/internal/apperr"
)

var (
	hashtagPattern  = regexp.MustCompile(`#(\S+)`)
	markdownPattern = regexp.MustCompile(`[*_~` + "`" + `>]+`)
	hashTokenPattern = regexp.MustCompile(`(?i)\bHASH\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// sanitize strips emoji and variation selectors, the '#' of hashtags
// (keeping the tag word), markdown markers, and literal HASH tokens, then
// collapses whitespace. Returns apperr.KindEmptyAfterSanitize if nothing
// speakable remains.
func sanitize(text string) (string, error) {
	out := stripEmoji(text)
	out = hashtagPattern.ReplaceAllString(out, "$1")
	out = markdownPattern.ReplaceAllString(out, "")
	out = hashTokenPattern.ReplaceAllString(out, "")
	out = whitespacePattern.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)

	if out == "" {
		return "", apperr.New(apperr.KindEmptyAfterSanitize, "no speakable text after sanitization")
	}
	return out, nil
}

// stripEmoji removes emoji codepoints and variation selectors, keeping
// ordinary letters, digits, and punctuation intact.
func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isEmoji(r) || isVariationSelector(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isVariationSelector(r rune) bool {
	return r == 0xFE0F || r == 0xFE0E || (r >= 0xFE00 && r <= 0xFE0F)
}

// isEmoji reports whether r falls in one of the Unicode emoji blocks. This
// is a pragmatic range check, not a full Unicode emoji-property table.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // misc symbols, pictographs, emoticons, transport, supplemental symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r >= 0x2190 && r <= 0x21FF: // arrows (commonly used as decorative emoji)
		return true
	case r == 0x2764 || r == 0x2B50 || r == 0x2B55: // heart, star, circle
		return true
	case unicode.Is(unicode.So, r):
		return true
	default:
		return false
	}
}
