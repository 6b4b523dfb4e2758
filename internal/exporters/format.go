package exporters

import (
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// formatDate renders an upstream timestamp as YYYY-MM-DD, or "" if unset or unparseable.
func formatDate(value entities.Optional[string]) string {
	s, ok := value.Get()
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// splitISBN returns (isbn10, isbn13). Lengths other than 10 and 13 go in the first slot.
func splitISBN(value entities.Optional[string]) (string, string) {
	isbn, ok := value.Get()
	if !ok || isbn == "" {
		return "", ""
	}
	normalized := strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	switch len(normalized) {
	case 13:
		return "", normalized
	default:
		return normalized, ""
	}
}

func joinList(value entities.Optional[[]string], sep string) string {
	items, _ := value.Get()
	return strings.Join(items, sep)
}

func text(value entities.Optional[string]) string {
	return value.OrElse("")
}

func number(value entities.Optional[float64]) string {
	v, ok := value.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func integer(value entities.Optional[int]) string {
	v, ok := value.Get()
	if !ok {
		return ""
	}
	return strconv.Itoa(v)
}

func yesNo(value entities.Optional[bool]) string {
	v, ok := value.Get()
	if !ok {
		return ""
	}
	if v {
		return "Yes"
	}
	return "No"
}
