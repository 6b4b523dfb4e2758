// Package database provides the SQLite store behind the sqlite export format
// and the optional run history.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Snapshot of canonical book records
//	└── runs/            # Export run history with per-list outcome
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./exports/fable_books.sqlite")
//	booksRepo := books.NewRepository(db.DB)
//	saved, err := booksRepo.SaveBooks(library)
//
//	runsRepo := runs.NewRepository(db.DB)
//	err = runsRepo.SaveRun(summary)
package database
