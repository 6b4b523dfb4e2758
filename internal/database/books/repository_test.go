package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.StoredBook{})
	require.NoError(t, err)

	return db
}

func TestRepository_SaveBooks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	library := []entities.Book{
		{
			ID:       "b1",
			Title:    "Dune",
			ListID:   "l1",
			ListName: "Finished",
			Authors:  entities.Some([]string{"Frank Herbert"}),
			Genres:   entities.Some([]string{"Sci-Fi", "Classic"}),
			Rating:   entities.Some(0.0),
			Status:   entities.Some(entities.ReadingStatusFinished),
		},
		{ID: "b2", Title: "Emma", ListID: "l2", ListName: "Want to Read"},
	}

	saved, err := repo.SaveBooks(library)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	all, err := repo.GetAllBooks()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b1", all[0].FableID)
	assert.Equal(t, "b2", all[1].FableID)

	dune := all[0]
	require.NotNil(t, dune.Authors)
	assert.Equal(t, "Frank Herbert", *dune.Authors)
	require.NotNil(t, dune.Genres)
	assert.Equal(t, "Sci-Fi; Classic", *dune.Genres)
	require.NotNil(t, dune.Rating, "a set zero rating must be stored, not NULL")
	assert.Equal(t, 0.0, *dune.Rating)

	emma := all[1]
	assert.Nil(t, emma.Rating)
	assert.Nil(t, emma.Authors)
	assert.Nil(t, emma.Status)
}

func TestRepository_SaveBooksReplacesSnapshot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	_, err := repo.SaveBooks([]entities.Book{{ID: "old", Title: "Old"}})
	require.NoError(t, err)

	_, err = repo.SaveBooks([]entities.Book{{ID: "new", Title: "New"}})
	require.NoError(t, err)

	all, err := repo.GetAllBooks()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "new", all[0].FableID)
}

func TestToStoredBook(t *testing.T) {
	book := entities.Book{
		ID:    "b1",
		Title: "Dune",
		DetailedRatings: entities.DetailedRatings{
			Plot: entities.Some(4.5),
		},
		ReviewSummary: entities.ReviewSummary{
			Liked: entities.Some("worldbuilding"),
		},
		Tags:         entities.Some([]string{}),
		DidNotFinish: entities.Some(false),
	}

	row := ToStoredBook(book)

	assert.Equal(t, "b1", row.FableID)
	require.NotNil(t, row.PlotRating)
	assert.Equal(t, 4.5, *row.PlotRating)
	assert.Nil(t, row.CharactersRating)
	require.NotNil(t, row.Liked)
	assert.Equal(t, "worldbuilding", *row.Liked)
	require.NotNil(t, row.Tags, "an empty list is a provided value")
	assert.Equal(t, "", *row.Tags)
	require.NotNil(t, row.DidNotFinish)
	assert.False(t, *row.DidNotFinish)
}
