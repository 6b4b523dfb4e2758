package config

import "time"

const (
	// DefaultBaseURL is the origin of the Fable API
	DefaultBaseURL = "https://api.fable.co"

	// DefaultEnvFile holds the credentials written by the login prompt flow
	DefaultEnvFile = ".env"

	// DefaultOutputDir is where exports land unless EXPORT_OUTPUT_DIR is set
	DefaultOutputDir = "./exports"

	// DefaultSchedule runs the scheduled export daily at 03:00
	DefaultSchedule = "0 3 * * *"
)

const (
	DefaultRequestTimeout    = 10 * time.Second
	DefaultRequestsPerSecond = 5.0
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = time.Second
	DefaultMaxRetryDelay     = 30 * time.Second
	DefaultMaxPages          = 200
	DefaultBooksPageSize     = 100
	DefaultReviewsPageSize   = 20
)
