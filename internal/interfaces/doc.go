// Package interfaces documents the core abstractions used throughout the exporter.
//
// # Interface Categories
//
// ## Upstream Interfaces
//
//   - Requester: one authenticated GET against Fable (internal/fable/paginator.go)
//   - Fetcher: list catalog, books, owned books and reviews (internal/importers/pipeline.go)
//
// ## Output Interfaces
//
//   - BookExporter: writes canonical records in one format (internal/exporters/generic.go)
//
// # Adding a New Export Format
//
// To add a new output format (e.g., Goodreads-style CSV):
//
//  1. Implement BookExporter in internal/exporters/
//
//     type GoodreadsExporter struct {
//         OutputDir string
//     }
//
//     func (e *GoodreadsExporter) Format() Format { return FormatGoodreads }
//     func (e *GoodreadsExporter) Export(name string, books []entities.Book) (ExportResult, error)
//
//  2. Register the format in ParseFormats and New
//
//  3. Add a compile-time check to checks.go
//
// Exporters only read canonical records: they never fetch, merge or decide
// which optional fields are present.
//
// # Adding a New Endpoint
//
// Pagination details are data, not code. Describe the endpoint with a
// fable.Endpoint (path template, style, parameter names, results and next
// keys) and walk it with fable.NewPaginator.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
