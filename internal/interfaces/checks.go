package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/fable-exporter/internal/exporters"
	"github.com/mrlokans/fable-exporter/internal/fable"
	"github.com/mrlokans/fable-exporter/internal/importers"
)

// =============================================================================
// Upstream
// =============================================================================

// Requester implementations
var _ fable.Requester = (*fable.Client)(nil)

// Fetcher implementations
var _ importers.Fetcher = (*fable.Service)(nil)

// =============================================================================
// Exporters
// =============================================================================

var _ exporters.BookExporter = (*exporters.CSVExporter)(nil)
var _ exporters.BookExporter = (*exporters.JSONExporter)(nil)
var _ exporters.BookExporter = (*exporters.MarkdownExporter)(nil)
var _ exporters.BookExporter = (*exporters.SQLiteExporter)(nil)
