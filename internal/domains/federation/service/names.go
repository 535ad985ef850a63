package service

import (
	"strconv"
	"strings"
	"unicode"

	"novelpedia-backend/internal/shared/utils"
)

const (
	minNameLength = 3
	maxNameLength = 150
)

// baseName derives a username from a display name, falling back to the
// email local part. Spaces become underscores and the result is lower
// case; characters the name pattern rejects are dropped.
func baseName(displayName, email string) string {
	name := normalizeName(displayName)
	if name == "" {
		local, _, _ := strings.Cut(email, "@")
		name = normalizeName(local)
	}
	for len([]rune(name)) < minNameLength {
		name += "_"
	}
	if r := []rune(name); len(r) > maxNameLength-8 {
		name = string(r[:maxNameLength-8])
	}
	return name
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range utils.NormalizeUsername(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// candidateName is base for attempt 0, then base_1, base_2 and so on.
func candidateName(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	return base + "_" + strconv.Itoa(attempt)
}
