package utils

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFilenameLength = 200

// SanitizeListName turns a list name into a file base name. Letters, digits,
// '-' and '_' are kept; every other rune, spaces included, becomes '_'.
func SanitizeListName(name string) string {
	var builder strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	filename := builder.String()

	// Limit length (most filesystems support 255, but leave room for extension)
	if len(filename) > maxFilenameLength {
		filename = filename[:maxFilenameLength]
		for !utf8.ValidString(filename) {
			filename = filename[:len(filename)-1]
		}
	}

	if filename == "" {
		filename = "Untitled"
	}
	return filename
}

// UniqueNames maps every name to a sanitized base name, suffixing repeats
// with _2, _3 and so on so no two entries share a file.
func UniqueNames(names []string) []string {
	used := make(map[string]bool, len(names))
	unique := make([]string, len(names))
	for i, name := range names {
		base := SanitizeListName(name)
		candidate := base
		for n := 2; used[strings.ToLower(candidate)]; n++ {
			candidate = base + "_" + strconv.Itoa(n)
		}
		used[strings.ToLower(candidate)] = true
		unique[i] = candidate
	}
	return unique
}
