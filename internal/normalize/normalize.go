// Package normalize turns raw Fable list items and reviews into canonical
// entities.Book records. It is the only place that deals with absent data:
// every optional leaf becomes an entities.Optional, never a zero default.
package normalize

import (
	"log"
	"math"
	"strings"

	"github.com/mrlokans/fable-exporter/internal/entities"
	"github.com/mrlokans/fable-exporter/internal/fable"
)

// Result carries the canonical records in input order plus how many raw
// records were dropped for lacking an identifier or a title.
type Result struct {
	Books   []entities.Book
	Dropped int
}

// Normalize merges reviews into books by identifier. Reviews whose book is
// not in rawBooks are ignored. The output order follows rawBooks.
func Normalize(list entities.BookList, rawBooks []fable.RawBookRecord, reviews map[string]fable.RawReviewRecord) Result {
	result := Result{Books: make([]entities.Book, 0, len(rawBooks))}

	for _, raw := range rawBooks {
		book, ok := normalizeBook(raw)
		if !ok {
			result.Dropped++
			log.Printf("Fable export: dropping book %q from list %q: missing identifier or title", raw.ID, list.Name)
			continue
		}
		book.ListID = list.ID
		book.ListName = list.Name

		if review, found := reviews[book.ID]; found {
			mergeReview(&book, review)
		}
		result.Books = append(result.Books, book)
	}

	return result
}

func normalizeBook(raw fable.RawBookRecord) (entities.Book, bool) {
	id := strings.TrimSpace(raw.ID)
	if id == "" || raw.Title == nil || strings.TrimSpace(*raw.Title) == "" {
		return entities.Book{}, false
	}

	book := entities.Book{
		ID:    id,
		Title: strings.TrimSpace(*raw.Title),

		Genres:           names(raw.Genres),
		StoryGraphGenres: names(raw.StoryGraphGenres),
		Moods:            names(raw.Moods),
		ContentWarnings:  names(raw.ContentWarnings),
		Tags:             names(raw.Tags),

		AddedAt:       entities.FromPtr(raw.AddedAt),
		EmojiReaction: entities.FromPtr(raw.EmojiReaction),
		SpicyLevel:    entities.FromPtr(raw.SpicyLevel),
	}

	if meta := raw.Metadata; meta != nil {
		book.Subtitle = entities.FromPtr(meta.Subtitle)
		book.Authors = names(meta.Authors)
		book.ISBN = entities.FromPtr(meta.ISBN)
		book.Publisher = entities.FromPtr(meta.Publisher)
		book.PageCount = whole(meta.PageCount)
		book.PublishedDate = entities.FromPtr(meta.PublishedDate)
		book.Description = entities.FromPtr(meta.Description)
		book.CoverURL = entities.FromPtr(meta.CoverURL)
	}

	if reading := raw.Reading; reading != nil {
		book.Status = entities.FromPtr(reading.Status)
		book.StartedAt = entities.FromPtr(reading.StartedAt)
		book.FinishedAt = entities.FromPtr(reading.FinishedAt)
		book.CurrentPage = whole(reading.CurrentPage)
		book.TotalPages = whole(reading.PageCount)
	}

	if rating := raw.Rating; rating != nil {
		applyRating(&book, rating)
	}
	if summary := raw.ReviewSummary; summary != nil {
		applySummary(&book, summary)
	}

	return book, true
}

// mergeReview copies every set review field over the book. Unset review
// fields leave the book value alone.
func mergeReview(book *entities.Book, review fable.RawReviewRecord) {
	book.Review = entities.FromPtr(review.Text).Or(book.Review)
	book.ContainsSpoilers = entities.FromPtr(review.ContainsSpoilers).Or(book.ContainsSpoilers)
	book.DidNotFinish = entities.FromPtr(review.DidNotFinish).Or(book.DidNotFinish)
	book.ReviewCreatedAt = entities.FromPtr(review.CreatedAt).Or(book.ReviewCreatedAt)
	book.ReviewUpdatedAt = entities.FromPtr(review.UpdatedAt).Or(book.ReviewUpdatedAt)
	book.EmojiReaction = entities.FromPtr(review.EmojiReaction).Or(book.EmojiReaction)
	book.SpicyLevel = entities.FromPtr(review.SpicyLevel).Or(book.SpicyLevel)
	book.Tags = names(review.Tags).Or(book.Tags)

	if review.Rating != nil {
		applyRating(book, review.Rating)
	}
	if review.Summary != nil {
		applySummary(book, review.Summary)
	}
}

func applyRating(book *entities.Book, rating *fable.RawRating) {
	book.Rating = entities.FromPtr(rating.Overall).Or(book.Rating)
	book.DetailedRatings.Characters = entities.FromPtr(rating.Characters).Or(book.DetailedRatings.Characters)
	book.DetailedRatings.Plot = entities.FromPtr(rating.Plot).Or(book.DetailedRatings.Plot)
	book.DetailedRatings.WritingStyle = entities.FromPtr(rating.WritingStyle).Or(book.DetailedRatings.WritingStyle)
	book.DetailedRatings.Setting = entities.FromPtr(rating.Setting).Or(book.DetailedRatings.Setting)
}

func applySummary(book *entities.Book, summary *fable.RawReviewSummary) {
	book.ReviewSummary.Liked = entities.FromPtr(summary.Liked).Or(book.ReviewSummary.Liked)
	book.ReviewSummary.Disliked = entities.FromPtr(summary.Disliked).Or(book.ReviewSummary.Disliked)
	book.ReviewSummary.Disagreed = entities.FromPtr(summary.Disagreed).Or(book.ReviewSummary.Disagreed)
}

// names copies a present slice so canonical records never alias raw data.
func names(values []string) entities.Optional[[]string] {
	if values == nil {
		return entities.Unset[[]string]()
	}
	out := make([]string, len(values))
	copy(out, values)
	return entities.Some(out)
}

// whole converts page-like counts; a fractional or negative value is treated as absent.
func whole(v *float64) entities.Optional[int] {
	if v == nil || *v < 0 || *v != math.Trunc(*v) || *v > math.MaxInt32 {
		return entities.Unset[int]()
	}
	return entities.Some(int(*v))
}
