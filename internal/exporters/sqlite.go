package exporters

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/mrlokans/fable-exporter/internal/database"
	"github.com/mrlokans/fable-exporter/internal/database/books"
	"github.com/mrlokans/fable-exporter/internal/entities"
)

// SQLiteExporter writes each export as a standalone SQLite file.
// An existing file under the same name is replaced.
type SQLiteExporter struct {
	OutputDir string
}

func NewSQLiteExporter(outputDir string) *SQLiteExporter {
	return &SQLiteExporter{OutputDir: outputDir}
}

func (e *SQLiteExporter) Format() Format {
	return FormatSQLite
}

func (e *SQLiteExporter) Export(name string, library []entities.Book) (ExportResult, error) {
	if len(library) == 0 {
		return ExportResult{}, ErrNoBooks
	}
	path, err := outputPath(e.OutputDir, name, FormatSQLite)
	if err != nil {
		return ExportResult{}, err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return ExportResult{}, fmt.Errorf("failed to replace %s: %w", path, err)
	}

	db, err := database.NewDatabase(path)
	if err != nil {
		return ExportResult{}, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close %s: %v", path, err)
		}
	}()

	saved, err := books.NewRepository(db.DB).SaveBooks(library)
	if err != nil {
		return ExportResult{Path: path, BooksFailed: len(library)}, err
	}
	return ExportResult{Path: path, BooksProcessed: saved}, nil
}
