package exporters

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

// BookExporter writes canonical records under a base name (no extension).
// Exporters are pure consumers: they never fetch or merge.
type BookExporter interface {
	Export(name string, books []entities.Book) (ExportResult, error)
	Format() Format
}

type ExportResult struct {
	Path           string `json:"path"`
	BooksProcessed int    `json:"books_processed"`
	BooksFailed    int    `json:"books_failed"`
}

type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatSQLite   Format = "sqlite"
)

// ParseFormats accepts a comma separated list such as "csv,json,md".
// "markdown" is accepted for md. Duplicates are removed; empty input yields csv.
func ParseFormats(value string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		var f Format
		switch part {
		case "csv":
			f = FormatCSV
		case "json":
			f = FormatJSON
		case "md", "markdown":
			f = FormatMarkdown
		case "sqlite", "db":
			f = FormatSQLite
		default:
			return nil, fmt.Errorf("unknown export format %q (want csv, json, md or sqlite)", part)
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		formats = []Format{FormatCSV}
	}
	return formats, nil
}

// New returns the exporter for format writing into outputDir.
func New(format Format, outputDir string) (BookExporter, error) {
	switch format {
	case FormatCSV:
		return NewCSVExporter(outputDir), nil
	case FormatJSON:
		return NewJSONExporter(outputDir), nil
	case FormatMarkdown:
		return NewMarkdownExporter(outputDir), nil
	case FormatSQLite:
		return NewSQLiteExporter(outputDir), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// ErrNoBooks is returned when there is nothing to write.
var ErrNoBooks = errors.New("no books to export")

func outputPath(dir, name string, format Format) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, name+"."+string(format)), nil
}
