// Package importers runs one export against Fable and produces the canonical
// library handed to exporters.
//
// # Architecture
//
// A run follows a fixed order:
//
//	List catalog → Books per list (optionally parallel) → Reviews → Normalize → Library
//
// The catalog call is retried with the fetcher's policy; an authentication
// failure anywhere aborts the whole run. Any other failure stays with the list
// it happened in and is reported in that list's summary, so a run always ends
// with a per-list outcome rather than a single success or failure.
//
// # Usage
//
//	service := fable.NewService(client, userID, fable.ServiceOptions{...})
//	pipeline := importers.NewPipeline(service, importers.Options{Concurrency: 4})
//	library, err := pipeline.Run(ctx)
//	if err != nil {
//		// nothing should be written
//	}
//	books := library.Combined() // deduplicated across lists
//
// # Counters
//
// For every list the summary reports:
//
//   - Fetched: canonical records emitted for the list
//   - Skipped: malformed entries, records without identifier or title, and
//     repeated identifiers within the list
//   - Failed: records the list declared but the run could not obtain
package importers
