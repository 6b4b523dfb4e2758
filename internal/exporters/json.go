package exporters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

type JSONExporter struct {
	OutputDir string
}

func NewJSONExporter(outputDir string) *JSONExporter {
	return &JSONExporter{OutputDir: outputDir}
}

func (e *JSONExporter) Format() Format {
	return FormatJSON
}

// jsonBook is the exported document shape. Unset values encode as null.
type jsonBook struct {
	ID               string                      `json:"id"`
	List             string                      `json:"list"`
	Title            string                      `json:"title"`
	Subtitle         entities.Optional[string]   `json:"subtitle"`
	Authors          entities.Optional[string]   `json:"authors"`
	ISBN10           entities.Optional[string]   `json:"isbn10"`
	ISBN13           entities.Optional[string]   `json:"isbn13"`
	Publisher        entities.Optional[string]   `json:"publisher"`
	Pages            entities.Optional[int]      `json:"pages"`
	PublishedDate    entities.Optional[string]   `json:"published_date"`
	Description      entities.Optional[string]   `json:"description"`
	CoverImage       entities.Optional[string]   `json:"cover_image"`
	Genres           entities.Optional[[]string] `json:"genres"`
	Moods            entities.Optional[[]string] `json:"moods"`
	ContentWarnings  entities.Optional[[]string] `json:"content_warnings"`
	Status           entities.Optional[string]   `json:"status"`
	Rating           entities.Optional[float64]  `json:"rating"`
	DetailedRatings  entities.DetailedRatings    `json:"detailed_ratings"`
	Review           entities.Optional[string]   `json:"review"`
	ReviewSummary    entities.ReviewSummary      `json:"review_summary"`
	ContainsSpoilers entities.Optional[bool]     `json:"contains_spoilers"`
	DidNotFinish     entities.Optional[bool]     `json:"did_not_finish"`
	Attributes       entities.Optional[[]string] `json:"attributes"`
	EmojiReaction    entities.Optional[string]   `json:"emoji_reaction"`
	SpicyLevel       entities.Optional[float64]  `json:"spicy_level"`
	StartedReading   entities.Optional[string]   `json:"started_reading"`
	FinishedReading  entities.Optional[string]   `json:"finished_reading"`
	CurrentPage      entities.Optional[int]      `json:"current_page"`
	TotalPages       entities.Optional[int]      `json:"total_pages"`
	DateAdded        entities.Optional[string]   `json:"date_added"`
}

// optionalText maps a rendered value onto the document: "" means the source
// was unset or could not be rendered, and encodes as null.
func optionalText(value string) entities.Optional[string] {
	if value == "" {
		return entities.Unset[string]()
	}
	return entities.Some(value)
}

func toJSONBook(book entities.Book) jsonBook {
	isbn10, isbn13 := splitISBN(book.ISBN)
	var authors entities.Optional[string]
	if names, ok := book.Authors.Get(); ok {
		authors = entities.Some(strings.Join(names, ", "))
	}
	return jsonBook{
		ID:               book.ID,
		List:             book.ListName,
		Title:            book.Title,
		Subtitle:         book.Subtitle,
		Authors:          authors,
		ISBN10:           optionalText(isbn10),
		ISBN13:           optionalText(isbn13),
		Publisher:        book.Publisher,
		Pages:            book.PageCount,
		PublishedDate:    optionalText(formatDate(book.PublishedDate)),
		Description:      book.Description,
		CoverImage:       book.CoverURL,
		Genres:           book.Genres,
		Moods:            book.Moods,
		ContentWarnings:  book.ContentWarnings,
		Status:           book.Status,
		Rating:           book.Rating,
		DetailedRatings:  book.DetailedRatings,
		Review:           book.Review,
		ReviewSummary:    book.ReviewSummary,
		ContainsSpoilers: book.ContainsSpoilers,
		DidNotFinish:     book.DidNotFinish,
		Attributes:       book.Tags,
		EmojiReaction:    book.EmojiReaction,
		SpicyLevel:       book.SpicyLevel,
		StartedReading:   optionalText(formatDate(book.StartedAt)),
		FinishedReading:  optionalText(formatDate(book.FinishedAt)),
		CurrentPage:      book.CurrentPage,
		TotalPages:       book.TotalPages,
		DateAdded:        optionalText(formatDate(book.DateAdded())),
	}
}

func (e *JSONExporter) Export(name string, books []entities.Book) (ExportResult, error) {
	if len(books) == 0 {
		return ExportResult{}, ErrNoBooks
	}
	path, err := outputPath(e.OutputDir, name, FormatJSON)
	if err != nil {
		return ExportResult{}, err
	}

	docs := make([]jsonBook, 0, len(books))
	for _, book := range books {
		docs = append(docs, toJSONBook(book))
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(docs); err != nil {
		return ExportResult{}, fmt.Errorf("failed to marshal books: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return ExportResult{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return ExportResult{Path: path, BooksProcessed: len(docs)}, nil
}
