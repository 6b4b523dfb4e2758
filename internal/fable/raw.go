package fable

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawBookMetadata is the bibliographic part of a list item.
type RawBookMetadata struct {
	Subtitle      *string
	Authors       []string // nil when absent
	ISBN          *string
	Publisher     *string
	PageCount     *float64
	PublishedDate *string
	Description   *string
	CoverURL      *string
}

// RawReadingStatus is the user's progress on a book.
type RawReadingStatus struct {
	Status      *string
	StartedAt   *string
	FinishedAt  *string
	CurrentPage *float64
	PageCount   *float64
}

// RawRating is an overall rating plus up to four named dimensions.
type RawRating struct {
	Overall      *float64
	Characters   *float64
	Plot         *float64
	WritingStyle *float64
	Setting      *float64
}

// RawReviewSummary holds the liked/disliked/disagreed answers.
type RawReviewSummary struct {
	Liked     *string
	Disliked  *string
	Disagreed *string
}

// RawBookRecord is one list item as Fable returns it. Every nested part may
// be absent; nil slices mean "absent", empty non-nil slices mean "present but empty".
type RawBookRecord struct {
	ID    string
	Title *string

	Metadata      *RawBookMetadata
	Reading       *RawReadingStatus
	Rating        *RawRating
	ReviewSummary *RawReviewSummary

	Genres           []string
	StoryGraphGenres []string
	Moods            []string
	ContentWarnings  []string
	Tags             []string

	EmojiReaction *string
	SpicyLevel    *float64
	AddedAt       *string
}

// RawReviewRecord is one entry of the reviews endpoint.
type RawReviewRecord struct {
	BookID string

	Text             *string
	ContainsSpoilers *bool
	DidNotFinish     *bool
	Rating           *RawRating
	Summary          *RawReviewSummary
	Tags             []string
	EmojiReaction    *string
	SpicyLevel       *float64
	CreatedAt        *string
	UpdatedAt        *string
}

// object is a decoded JSON object whose members are read on demand.
// Every accessor tolerates missing keys, nulls and wrong types.
type object map[string]json.RawMessage

func decodeObject(raw json.RawMessage) (object, bool) {
	if len(raw) == 0 || isNull(raw) {
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func (o object) object(key string) (object, bool) {
	if o == nil {
		return nil, false
	}
	return decodeObject(o[key])
}

// str returns the first key holding a string. Numbers are accepted for identifiers.
func (o object) str(keys ...string) *string {
	for _, key := range keys {
		raw, ok := o[key]
		if !ok || isNull(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return &s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			s := n.String()
			return &s
		}
	}
	return nil
}

// num returns the first key holding a number or a numeric string.
func (o object) num(keys ...string) *float64 {
	for _, key := range keys {
		raw, ok := o[key]
		if !ok || isNull(raw) {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return &f
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func (o object) boolean(keys ...string) *bool {
	for _, key := range keys {
		raw, ok := o[key]
		if !ok || isNull(raw) {
			continue
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return &b
		}
	}
	return nil
}

// names reads an array of strings or of {"name": ...} objects.
// Returns nil if the key is absent or not an array.
func (o object) names(key string) []string {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		if obj, ok := decodeObject(item); ok {
			if name := obj.str("name"); name != nil && strings.TrimSpace(*name) != "" {
				out = append(out, strings.TrimSpace(*name))
			}
		}
	}
	return out
}

func (o object) has(keys ...string) bool {
	for _, key := range keys {
		if raw, ok := o[key]; ok && !isNull(raw) {
			return true
		}
	}
	return false
}

// DecodeBook reads a list item. ok is false when the element is not an
// object or carries no usable identifier; callers skip and count those.
func DecodeBook(raw json.RawMessage) (RawBookRecord, bool) {
	item, ok := decodeObject(raw)
	if !ok {
		return RawBookRecord{}, false
	}

	// Items either wrap the book under "book" or are the book itself.
	book, nested := item.object("book")
	if !nested {
		book = item
	}

	id := book.str("id")
	if id == nil || strings.TrimSpace(*id) == "" {
		if nested {
			id = item.str("book_id")
		}
		if id == nil || strings.TrimSpace(*id) == "" {
			return RawBookRecord{}, false
		}
	}

	rec := RawBookRecord{
		ID:            strings.TrimSpace(*id),
		Title:         firstStr(book.str("title"), item.str("title")),
		Genres:        book.names("genres"),
		Tags:          item.names("attributes"),
		EmojiReaction: emoji(item),
		SpicyLevel:    item.num("spicy_level"),
		AddedAt:       item.str("added_at"),
	}

	if book.has("subtitle", "authors", "isbn", "publisher", "imprint", "page_count", "pages",
		"published_date", "publish_date", "description", "cover_image") {
		rec.Metadata = &RawBookMetadata{
			Subtitle:      book.str("subtitle"),
			Authors:       book.names("authors"),
			ISBN:          firstStr(book.str("isbn"), item.str("isbn")),
			Publisher:     firstStr(book.str("publisher", "imprint"), item.str("publisher")),
			PageCount:     firstNum(book.num("page_count", "pages"), item.num("page_count")),
			PublishedDate: firstStr(book.str("published_date", "publish_date"), item.str("published_date")),
			Description:   book.str("description"),
			CoverURL:      book.str("cover_image"),
		}
	}

	if tags, ok := book.object("storygraph_tags"); ok {
		rec.Moods = tags.names("moods")
		rec.ContentWarnings = tags.names("content_warnings")
		rec.StoryGraphGenres = tags.names("genres")
	}

	if summary, ok := book.object("review_summary"); ok {
		rec.ReviewSummary = decodeSummary(summary)
	}

	progress, hasProgress := book.object("reading_progress")
	if hasProgress || book.has("started_reading_at", "finished_reading_at") || item.has("status") {
		rec.Reading = &RawReadingStatus{
			Status:      firstStr(progress.str("status"), item.str("status")),
			StartedAt:   book.str("started_reading_at"),
			FinishedAt:  book.str("finished_reading_at"),
			CurrentPage: progress.num("current_page"),
			PageCount:   progress.num("page_count"),
		}
	}

	rec.Rating = decodeRating(item)
	return rec, true
}

// DecodeReview reads one review entry. ok is false when no book identifier is found.
func DecodeReview(raw json.RawMessage) (RawReviewRecord, bool) {
	review, ok := decodeObject(raw)
	if !ok {
		return RawReviewRecord{}, false
	}

	var id *string
	if book, ok := review.object("book"); ok {
		id = book.str("id")
	}
	if id == nil || strings.TrimSpace(*id) == "" {
		id = review.str("book_id")
	}
	if id == nil || strings.TrimSpace(*id) == "" {
		return RawReviewRecord{}, false
	}

	rec := RawReviewRecord{
		BookID:           strings.TrimSpace(*id),
		Text:             review.str("review", "text"),
		ContainsSpoilers: review.boolean("contains_spoilers"),
		DidNotFinish:     review.boolean("did_not_finish"),
		Rating:           decodeRating(review),
		Tags:             review.names("attributes"),
		EmojiReaction:    emoji(review),
		SpicyLevel:       review.num("spicy_level"),
		CreatedAt:        review.str("created_at"),
		UpdatedAt:        review.str("updated_at"),
	}
	if summary, ok := review.object("review_summary"); ok {
		rec.Summary = decodeSummary(summary)
	} else if review.has("liked", "disliked", "disagreed") {
		rec.Summary = decodeSummary(review)
	}
	return rec, true
}

func decodeRating(o object) *RawRating {
	if !o.has("rating", "characters_rating", "plot_rating", "writing_style_rating", "setting_rating") {
		return nil
	}
	return &RawRating{
		Overall:      o.num("rating"),
		Characters:   o.num("characters_rating"),
		Plot:         o.num("plot_rating"),
		WritingStyle: o.num("writing_style_rating"),
		Setting:      o.num("setting_rating"),
	}
}

func decodeSummary(o object) *RawReviewSummary {
	return &RawReviewSummary{
		Liked:     o.str("liked"),
		Disliked:  o.str("disliked"),
		Disagreed: o.str("disagreed"),
	}
}

func emoji(o object) *string {
	s := o.str("emoji_reaction")
	if s != nil && *s != "" {
		return s
	}
	if e, ok := o.object("emoji"); ok {
		if content := e.str("content"); content != nil {
			return content
		}
	}
	return s
}

func firstStr(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNum(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
