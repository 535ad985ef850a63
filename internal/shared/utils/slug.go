package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	slugSeps     = regexp.MustCompile(`[\s-]+`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// letters that do not decompose into base + combining mark
var foldExtra = strings.NewReplacer("đ", "d", "Đ", "D", "ø", "o", "Ø", "O", "ł", "l", "Ł", "L", "ß", "ss")

// RemoveDiacritics strips combining marks after NFKD decomposition,
// "Nguyễn Nhật Ánh" → "Nguyen Nhat Anh".
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, foldExtra.Replace(input))
	if err != nil {
		return input
	}
	return out
}

// Slugify lowercases s, drops anything outside [a-z0-9_-], and joins words with
// single hyphens. The result may be empty for all-symbol input.
func Slugify(s string) string {
	ascii := strings.ToLower(RemoveDiacritics(s))
	cleaned := nonSlugChars.ReplaceAllString(ascii, "")
	joined := slugSeps.ReplaceAllString(strings.TrimSpace(cleaned), "-")
	return strings.Trim(joined, "-_")
}

// NormalizeUsername lowercases s and replaces spaces with underscores.
func NormalizeUsername(s string) string {
	return spaceRuns.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
}
