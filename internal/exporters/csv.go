package exporters

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

// csvHeader follows the column set StoryGraph-style importers expect.
var csvHeader = []string{
	"Title",
	"Subtitle",
	"Author(s)",
	"ISBN-10",
	"ISBN-13",
	"Publisher",
	"Pages",
	"Published Date",
	"Genres",
	"Moods",
	"Content Warnings",
	"Status",
	"Rating",
	"Characters Rating",
	"Plot Rating",
	"Writing Style Rating",
	"Setting Rating",
	"Review",
	"Review Summary - Liked",
	"Review Summary - Disliked",
	"Review Summary - Disagreed",
	"Attributes/Tags",
	"Emoji Reaction",
	"Contains Spoilers",
	"Did Not Finish",
	"Started Reading",
	"Finished Reading",
	"Date Added",
}

type CSVExporter struct {
	OutputDir string
}

func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{OutputDir: outputDir}
}

func (e *CSVExporter) Format() Format {
	return FormatCSV
}

func (e *CSVExporter) Export(name string, books []entities.Book) (ExportResult, error) {
	if len(books) == 0 {
		return ExportResult{}, ErrNoBooks
	}
	path, err := outputPath(e.OutputDir, name, FormatCSV)
	if err != nil {
		return ExportResult{}, err
	}

	file, err := os.Create(path)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{Path: path}
	for _, book := range books {
		if err := writer.Write(csvRow(book)); err != nil {
			result.BooksFailed++
			continue
		}
		result.BooksProcessed++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return result, nil
}

func csvRow(book entities.Book) []string {
	isbn10, isbn13 := splitISBN(book.ISBN)
	return []string{
		book.Title,
		text(book.Subtitle),
		joinList(book.Authors, ", "),
		isbn10,
		isbn13,
		text(book.Publisher),
		integer(book.PageCount),
		formatDate(book.PublishedDate),
		joinList(book.Genres, "; "),
		joinList(book.Moods, "; "),
		joinList(book.ContentWarnings, "; "),
		text(book.Status),
		number(book.Rating),
		number(book.DetailedRatings.Characters),
		number(book.DetailedRatings.Plot),
		number(book.DetailedRatings.WritingStyle),
		number(book.DetailedRatings.Setting),
		text(book.Review),
		text(book.ReviewSummary.Liked),
		text(book.ReviewSummary.Disliked),
		text(book.ReviewSummary.Disagreed),
		joinList(book.Tags, "; "),
		text(book.EmojiReaction),
		yesNo(book.ContainsSpoilers),
		yesNo(book.DidNotFinish),
		formatDate(book.StartedAt),
		formatDate(book.FinishedAt),
		formatDate(book.DateAdded()),
	}
}
