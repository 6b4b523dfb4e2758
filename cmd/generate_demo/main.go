// Command generate_demo writes every export format for a small library of public domain books.
// Usage: go run cmd/generate_demo/main.go [-output path/to/demo]
package main

import (
	"flag"
	"log"
	"os"

	"github.com/mrlokans/fable-exporter/internal/entities"
	"github.com/mrlokans/fable-exporter/internal/exporters"
)

const defaultDemoOutputDir = "./demo"

func main() {
	outputDir := flag.String("output", defaultDemoOutputDir, "directory the demo exports are written to")
	flag.Parse()

	log.Printf("Generating demo exports in %s...", *outputDir)

	// Start fresh so stale files from older demo runs do not linger
	if err := os.RemoveAll(*outputDir); err != nil {
		log.Fatalf("Failed to remove existing demo output: %v", err)
	}

	books := getPublicDomainBooks()
	for _, format := range []exporters.Format{
		exporters.FormatCSV,
		exporters.FormatJSON,
		exporters.FormatMarkdown,
		exporters.FormatSQLite,
	} {
		exporter, err := exporters.New(format, *outputDir)
		if err != nil {
			log.Fatalf("Failed to create %s exporter: %v", format, err)
		}
		result, err := exporter.Export("fable_books", books)
		if err != nil {
			log.Printf("Failed to write %s export: %v", format, err)
			continue
		}
		log.Printf("Saved: %s (%d books)", result.Path, result.BooksProcessed)
	}

	log.Println("Demo exports generated successfully!")
}

func getPublicDomainBooks() []entities.Book {
	finished := entities.BookList{ID: "demo-finished", Name: "Finished"}
	reading := entities.BookList{ID: "demo-reading", Name: "Currently Reading"}
	tbr := entities.BookList{ID: "demo-tbr", Name: "Want to Read"}

	return []entities.Book{
		// Marcus Aurelius - Meditations (Public Domain)
		{
			ID:            "demo-meditations",
			Title:         "Meditations",
			ListID:        finished.ID,
			ListName:      finished.Name,
			Authors:       entities.Some([]string{"Marcus Aurelius"}),
			PageCount:     entities.Some(254),
			Genres:        entities.Some([]string{"Philosophy", "Classics"}),
			Moods:         entities.Some([]string{"reflective"}),
			Status:        entities.Some(entities.ReadingStatusFinished),
			StartedAt:     entities.Some("2024-01-03T08:00:00Z"),
			FinishedAt:    entities.Some("2024-01-21T21:30:00Z"),
			Rating:        entities.Some(5.0),
			Review:        entities.Some("You have power over your mind, not outside events."),
			EmojiReaction: entities.Some("🏛️"),
			DetailedRatings: entities.DetailedRatings{
				WritingStyle: entities.Some(4.5),
			},
			ReviewSummary: entities.ReviewSummary{
				Liked: entities.Some("Short entries that are easy to revisit"),
			},
			AddedAt: entities.Some("2023-12-28T10:00:00Z"),
		},
		// Jane Austen - Pride and Prejudice (Public Domain)
		{
			ID:               "demo-pride-and-prejudice",
			Title:            "Pride and Prejudice",
			ListID:           finished.ID,
			ListName:         finished.Name,
			Authors:          entities.Some([]string{"Jane Austen"}),
			ISBN:             entities.Some("978-0-14-143951-8"),
			Publisher:        entities.Some("T. Egerton"),
			PageCount:        entities.Some(432),
			PublishedDate:    entities.Some("1813-01-28"),
			Genres:           entities.Some([]string{"Romance", "Classics"}),
			Moods:            entities.Some([]string{"funny", "lighthearted"}),
			Status:           entities.Some(entities.ReadingStatusFinished),
			FinishedAt:       entities.Some("2024-03-02"),
			Rating:           entities.Some(4.5),
			ContainsSpoilers: entities.Some(false),
			DetailedRatings: entities.DetailedRatings{
				Characters: entities.Some(5.0),
				Plot:       entities.Some(4.0),
			},
			Tags: entities.Some([]string{"witty", "slow burn"}),
		},
		// Herman Melville - Moby-Dick (Public Domain)
		{
			ID:          "demo-moby-dick",
			Title:       "Moby-Dick",
			Subtitle:    entities.Some("or, The Whale"),
			ListID:      reading.ID,
			ListName:    reading.Name,
			Authors:     entities.Some([]string{"Herman Melville"}),
			PageCount:   entities.Some(635),
			Status:      entities.Some(entities.ReadingStatusReading),
			StartedAt:   entities.Some("2024-04-10"),
			CurrentPage: entities.Some(212),
			TotalPages:  entities.Some(635),
			Rating:      entities.Some(0.0),
		},
		// Mary Shelley - Frankenstein (Public Domain)
		{
			ID:              "demo-frankenstein",
			Title:           "Frankenstein",
			ListID:          tbr.ID,
			ListName:        tbr.Name,
			Authors:         entities.Some([]string{"Mary Shelley"}),
			Status:          entities.Some(entities.ReadingStatusUnread),
			ContentWarnings: entities.Some([]string{"death", "violence"}),
		},
	}
}
