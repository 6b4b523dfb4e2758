package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeListName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "replaces spaces with underscores",
			input:    "Want to Read",
			expected: "Want_to_Read",
		},
		{
			name:     "keeps dashes and underscores",
			input:    "sci-fi_2024",
			expected: "sci-fi_2024",
		},
		{
			name:     "replaces punctuation",
			input:    "Books/Films: 2024?",
			expected: "Books_Films__2024_",
		},
		{
			name:     "keeps unicode letters",
			input:    "Прочитано ✓",
			expected: "Прочитано__",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  Finished  ",
			expected: "Finished",
		},
		{
			name:     "returns Untitled for empty input",
			input:    "   ",
			expected: "Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeListName(tt.input))
		})
	}
}

func TestSanitizeListNameTruncates(t *testing.T) {
	result := SanitizeListName(strings.Repeat("é", 150))

	assert.LessOrEqual(t, len(result), maxFilenameLength)
	assert.True(t, utf8.ValidString(result))
}

func TestUniqueNames(t *testing.T) {
	names := UniqueNames([]string{"To Read", "To/Read", "to read", "Finished"})

	assert.Equal(t, []string{"To_Read", "To_Read_2", "to_read_3", "Finished"}, names)
}
