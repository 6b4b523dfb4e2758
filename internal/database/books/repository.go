// Package books stores snapshots of canonical book records.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	saved, err := repo.SaveBooks(library)
//	stored, err := repo.GetAllBooks()
package books

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

const saveBatchSize = 100

// Repository handles all stored book operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveBooks replaces the snapshot with books, in order, inside one transaction.
func (r *Repository) SaveBooks(books []entities.Book) (int, error) {
	rows := make([]entities.StoredBook, 0, len(books))
	for _, book := range books {
		rows = append(rows, ToStoredBook(book))
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.StoredBook{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous snapshot: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, saveBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save books: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// GetAllBooks returns the snapshot in insertion order.
func (r *Repository) GetAllBooks() ([]entities.StoredBook, error) {
	var books []entities.StoredBook
	err := r.db.Order("id ASC").Find(&books).Error
	return books, err
}

// ToStoredBook flattens a canonical book into its table row. List-valued
// fields are joined; unset values stay NULL.
func ToStoredBook(book entities.Book) entities.StoredBook {
	return entities.StoredBook{
		FableID:  book.ID,
		ListID:   book.ListID,
		ListName: book.ListName,
		Title:    book.Title,

		Subtitle:      book.Subtitle.Ptr(),
		Authors:       joined(book.Authors, ", "),
		ISBN:          book.ISBN.Ptr(),
		Publisher:     book.Publisher.Ptr(),
		PageCount:     book.PageCount.Ptr(),
		PublishedDate: book.PublishedDate.Ptr(),
		Description:   book.Description.Ptr(),
		CoverURL:      book.CoverURL.Ptr(),

		Genres:          joined(book.Genres, "; "),
		Moods:           joined(book.Moods, "; "),
		ContentWarnings: joined(book.ContentWarnings, "; "),
		Tags:            joined(book.Tags, "; "),

		Status:      book.Status.Ptr(),
		StartedAt:   book.StartedAt.Ptr(),
		FinishedAt:  book.FinishedAt.Ptr(),
		CurrentPage: book.CurrentPage.Ptr(),
		TotalPages:  book.TotalPages.Ptr(),
		AddedAt:     book.AddedAt.Ptr(),

		Rating:             book.Rating.Ptr(),
		CharactersRating:   book.DetailedRatings.Characters.Ptr(),
		PlotRating:         book.DetailedRatings.Plot.Ptr(),
		WritingStyleRating: book.DetailedRatings.WritingStyle.Ptr(),
		SettingRating:      book.DetailedRatings.Setting.Ptr(),

		Review:           book.Review.Ptr(),
		Liked:            book.ReviewSummary.Liked.Ptr(),
		Disliked:         book.ReviewSummary.Disliked.Ptr(),
		Disagreed:        book.ReviewSummary.Disagreed.Ptr(),
		ContainsSpoilers: book.ContainsSpoilers.Ptr(),
		DidNotFinish:     book.DidNotFinish.Ptr(),
		ReviewCreatedAt:  book.ReviewCreatedAt.Ptr(),
		ReviewUpdatedAt:  book.ReviewUpdatedAt.Ptr(),

		EmojiReaction: book.EmojiReaction.Ptr(),
		SpicyLevel:    book.SpicyLevel.Ptr(),
	}
}

func joined(value entities.Optional[[]string], sep string) *string {
	items, ok := value.Get()
	if !ok {
		return nil
	}
	s := strings.Join(items, sep)
	return &s
}
