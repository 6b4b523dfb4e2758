package entities

import "time"

// StoredBook is the flattened, table-shaped form of a canonical Book.
// Nil columns mean the value was never provided upstream.
type StoredBook struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	FableID  string `gorm:"index;size:64;not null" json:"fable_id"`
	ListID   string `gorm:"index;size:64" json:"list_id"`
	ListName string `gorm:"size:255" json:"list_name"`
	Title    string `gorm:"not null" json:"title"`

	Subtitle      *string `json:"subtitle"`
	Authors       *string `json:"authors"`
	ISBN          *string `gorm:"index;size:20" json:"isbn"`
	Publisher     *string `json:"publisher"`
	PageCount     *int    `json:"page_count"`
	PublishedDate *string `json:"published_date"`
	Description   *string `gorm:"type:text" json:"description"`
	CoverURL      *string `json:"cover_url"`

	Genres          *string `json:"genres"`
	Moods           *string `json:"moods"`
	ContentWarnings *string `json:"content_warnings"`
	Tags            *string `json:"tags"`

	Status      *string `gorm:"index;size:32" json:"status"`
	StartedAt   *string `json:"started_at"`
	FinishedAt  *string `json:"finished_at"`
	CurrentPage *int    `json:"current_page"`
	TotalPages  *int    `json:"total_pages"`
	AddedAt     *string `json:"added_at"`

	Rating             *float64 `json:"rating"`
	CharactersRating   *float64 `json:"characters_rating"`
	PlotRating         *float64 `json:"plot_rating"`
	WritingStyleRating *float64 `json:"writing_style_rating"`
	SettingRating      *float64 `json:"setting_rating"`

	Review           *string `gorm:"type:text" json:"review"`
	Liked            *string `gorm:"type:text" json:"liked"`
	Disliked         *string `gorm:"type:text" json:"disliked"`
	Disagreed        *string `gorm:"type:text" json:"disagreed"`
	ContainsSpoilers *bool   `json:"contains_spoilers"`
	DidNotFinish     *bool   `json:"did_not_finish"`
	ReviewCreatedAt  *string `json:"review_created_at"`
	ReviewUpdatedAt  *string `json:"review_updated_at"`

	EmojiReaction *string  `json:"emoji_reaction"`
	SpicyLevel    *float64 `json:"spicy_level"`

	CreatedAt time.Time `json:"created_at"`
}

func (StoredBook) TableName() string {
	return "books"
}

// ExportRun records one pipeline run with its per-list outcome.
type ExportRun struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RunID        string          `gorm:"uniqueIndex;size:36;not null" json:"run_id"`
	StartedAt    time.Time       `gorm:"index" json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	Fetched      int             `json:"fetched"`
	Skipped      int             `json:"skipped"`
	Failed       int             `json:"failed"`
	Reviews      int             `json:"reviews"`
	ReviewsError string          `gorm:"size:500" json:"reviews_error,omitempty"`
	Error        string          `gorm:"size:500" json:"error,omitempty"`
	Lists        []ExportRunList `gorm:"foreignKey:ExportRunID;constraint:OnDelete:CASCADE" json:"lists"`
}

func (ExportRun) TableName() string {
	return "export_runs"
}

// Incomplete reports whether the run aborted or any list did not finish cleanly.
func (r ExportRun) Incomplete() bool {
	if r.Error != "" {
		return true
	}
	for _, list := range r.Lists {
		if list.Status != ListStatusOK {
			return true
		}
	}
	return false
}

type ExportRunList struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	ExportRunID uint       `gorm:"index;not null" json:"-"`
	ListID      string     `gorm:"size:64" json:"list_id"`
	ListName    string     `gorm:"size:255" json:"list_name"`
	Status      ListStatus `gorm:"size:16" json:"status"`
	Fetched     int        `json:"fetched"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	Pages       int        `json:"pages"`
	Error       string     `gorm:"size:500" json:"error,omitempty"`
}

func (ExportRunList) TableName() string {
	return "export_run_lists"
}
