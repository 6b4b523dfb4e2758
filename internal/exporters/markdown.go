package exporters

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

var statusOrder = []string{
	entities.ReadingStatusFinished,
	entities.ReadingStatusReading,
	entities.ReadingStatusUnread,
}

var statusLabels = map[string]string{
	entities.ReadingStatusFinished: "Finished",
	entities.ReadingStatusReading:  "Currently Reading",
	entities.ReadingStatusUnread:   "Want to Read",
}

const unknownStatus = "unknown"

type MarkdownExporter struct {
	OutputDir string
	now       func() time.Time
}

func NewMarkdownExporter(outputDir string) *MarkdownExporter {
	return &MarkdownExporter{OutputDir: outputDir, now: time.Now}
}

func (exporter *MarkdownExporter) Format() Format {
	return FormatMarkdown
}

func (exporter *MarkdownExporter) Export(name string, books []entities.Book) (ExportResult, error) {
	if len(books) == 0 {
		return ExportResult{}, ErrNoBooks
	}
	path, err := outputPath(exporter.OutputDir, name, FormatMarkdown)
	if err != nil {
		return ExportResult{}, err
	}

	content := GenerateMarkdown(books, exporter.now())
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return ExportResult{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return ExportResult{Path: path, BooksProcessed: len(books)}, nil
}

// GenerateMarkdown renders the library grouped by reading status:
// finished, currently reading, want to read, then any other status.
func GenerateMarkdown(books []entities.Book, exportedAt time.Time) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "# My Fable Book Library\n\n")
	fmt.Fprintf(&builder, "Exported on: %s\n\n", exportedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&builder, "Total books: %d\n\n", len(books))
	fmt.Fprintf(&builder, "---\n")

	byStatus := make(map[string][]entities.Book)
	var extraStatuses []string
	for _, book := range books {
		status := strings.ToLower(strings.TrimSpace(book.Status.OrElse("")))
		if status == "" {
			status = unknownStatus
		}
		if _, known := statusLabels[status]; !known {
			if _, seen := byStatus[status]; !seen {
				extraStatuses = append(extraStatuses, status)
			}
		}
		byStatus[status] = append(byStatus[status], book)
	}

	for _, status := range append(append([]string{}, statusOrder...), extraStatuses...) {
		group := byStatus[status]
		if len(group) == 0 {
			continue
		}
		label, ok := statusLabels[status]
		if !ok {
			label = capitalize(status)
		}
		fmt.Fprintf(&builder, "\n## %s (%d)\n\n", label, len(group))
		for _, book := range group {
			writeBook(&builder, book)
		}
	}

	return builder.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func writeBook(builder *strings.Builder, book entities.Book) {
	fmt.Fprintf(builder, "### %s\n\n", book.Title)

	if subtitle := text(book.Subtitle); subtitle != "" {
		fmt.Fprintf(builder, "*%s*\n\n", subtitle)
	}
	if authors := joinList(book.Authors, ", "); authors != "" {
		fmt.Fprintf(builder, "**Author(s):** %s\n", authors)
	}
	if rating, ok := book.Rating.Get(); ok {
		emoji := ""
		if e := text(book.EmojiReaction); e != "" {
			emoji = " " + e
		}
		fmt.Fprintf(builder, "**Rating:** %s/5%s\n", number(entities.Some(rating)), emoji)
	}

	detailed := []struct {
		label string
		value entities.Optional[float64]
	}{
		{"Characters", book.DetailedRatings.Characters},
		{"Plot", book.DetailedRatings.Plot},
		{"Writing Style", book.DetailedRatings.WritingStyle},
		{"Setting", book.DetailedRatings.Setting},
	}
	header := false
	for _, d := range detailed {
		if !d.value.IsSet() {
			continue
		}
		if !header {
			fmt.Fprintf(builder, "**Detailed Ratings:**\n")
			header = true
		}
		fmt.Fprintf(builder, "- %s: %s/5\n", d.label, number(d.value))
	}

	if genres := joinList(book.Genres, ", "); genres != "" {
		fmt.Fprintf(builder, "**Genres:** %s\n", genres)
	}
	if moods := joinList(book.Moods, ", "); moods != "" {
		fmt.Fprintf(builder, "**Moods:** %s\n", moods)
	}
	if tags := joinList(book.Tags, ", "); tags != "" {
		fmt.Fprintf(builder, "**Tags:** %s\n", tags)
	}

	started, finished := formatDate(book.StartedAt), formatDate(book.FinishedAt)
	switch {
	case started != "" && finished != "":
		fmt.Fprintf(builder, "**Read Dates:** Started %s → Finished %s\n", started, finished)
	case started != "":
		fmt.Fprintf(builder, "**Read Dates:** Started %s\n", started)
	case finished != "":
		fmt.Fprintf(builder, "**Read Dates:** Finished %s\n", finished)
	}

	if review := text(book.Review); review != "" {
		fmt.Fprintf(builder, "\n**Review:**\n\n%s\n", review)
	}

	fmt.Fprintf(builder, "\n---\n")
}
