package entities

// ReadingStatus values reported by Fable's reading progress.
const (
	ReadingStatusFinished = "finished"
	ReadingStatusReading  = "reading"
	ReadingStatusUnread   = "unread"
)

// BookList is one entry of the user's list catalog, e.g. "Finished" or a custom shelf.
type BookList struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Count    Optional[int]  `json:"count"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DetailedRatings are the four optional rating dimensions next to the overall rating.
type DetailedRatings struct {
	Characters   Optional[float64] `json:"characters"`
	Plot         Optional[float64] `json:"plot"`
	WritingStyle Optional[float64] `json:"writing_style"`
	Setting      Optional[float64] `json:"setting"`
}

// ReviewSummary holds the free-text "what I liked" style answers.
type ReviewSummary struct {
	Liked     Optional[string] `json:"liked"`
	Disliked  Optional[string] `json:"disliked"`
	Disagreed Optional[string] `json:"disagreed"`
}

// Book is the canonical, merge-complete record handed to exporters.
// ID and Title are always present; every other field may be unset.
// Values are not mutated after normalization.
type Book struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// List the record was first seen in.
	ListID   string `json:"list_id"`
	ListName string `json:"list_name"`

	Subtitle      Optional[string]   `json:"subtitle"`
	Authors       Optional[[]string] `json:"authors"`
	ISBN          Optional[string]   `json:"isbn"`
	Publisher     Optional[string]   `json:"publisher"`
	PageCount     Optional[int]      `json:"page_count"`
	PublishedDate Optional[string]   `json:"published_date"`
	Description   Optional[string]   `json:"description"`
	CoverURL      Optional[string]   `json:"cover_url"`

	Genres           Optional[[]string] `json:"genres"`
	StoryGraphGenres Optional[[]string] `json:"storygraph_genres"`
	Moods            Optional[[]string] `json:"moods"`
	ContentWarnings  Optional[[]string] `json:"content_warnings"`
	Tags             Optional[[]string] `json:"tags"`

	Status      Optional[string] `json:"status"`
	StartedAt   Optional[string] `json:"started_reading_at"`
	FinishedAt  Optional[string] `json:"finished_reading_at"`
	CurrentPage Optional[int]    `json:"current_page"`
	TotalPages  Optional[int]    `json:"total_pages"`
	AddedAt     Optional[string] `json:"added_at"`

	Rating          Optional[float64] `json:"rating"`
	DetailedRatings DetailedRatings   `json:"detailed_ratings"`

	Review           Optional[string] `json:"review"`
	ReviewSummary    ReviewSummary    `json:"review_summary"`
	ContainsSpoilers Optional[bool]   `json:"contains_spoilers"`
	DidNotFinish     Optional[bool]   `json:"did_not_finish"`
	ReviewCreatedAt  Optional[string] `json:"review_created_at"`
	ReviewUpdatedAt  Optional[string] `json:"review_updated_at"`

	EmojiReaction Optional[string]  `json:"emoji_reaction"`
	SpicyLevel    Optional[float64] `json:"spicy_level"`
}

// DateAdded picks the date used by exporters as "Date Added":
// review creation first, then the list's added_at.
func (b Book) DateAdded() Optional[string] {
	return b.ReviewCreatedAt.Or(b.AddedAt)
}
