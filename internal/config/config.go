package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/mrlokans/fable-exporter/internal/fable"
)

type (
	Config struct {
		Fable
		Export
		Scheduler
	}

	Fable struct {
		UserID            string        `env:"FABLE_USER_ID" validate:"required"`
		AuthToken         string        `env:"FABLE_AUTH_TOKEN" validate:"required"`
		BaseURL           string        `env:"FABLE_BASE_URL" validate:"required,url"`
		RequestTimeout    time.Duration `env:"FABLE_REQUEST_TIMEOUT" validate:"gt=0"`
		RequestsPerSecond float64       `env:"FABLE_REQUESTS_PER_SECOND" validate:"gte=0"`
		MaxRetries        int           `env:"FABLE_MAX_RETRIES" validate:"gte=0"`
		RetryDelay        time.Duration `env:"FABLE_RETRY_DELAY" validate:"gte=0"`
		MaxRetryDelay     time.Duration `env:"FABLE_MAX_RETRY_DELAY" validate:"gtefield=RetryDelay"`
		MaxPages          int           `env:"FABLE_MAX_PAGES" validate:"gt=0"`
		BooksPageSize     int           `env:"FABLE_BOOKS_PAGE_SIZE" validate:"gt=0"`
		ReviewsPageSize   int           `env:"FABLE_REVIEWS_PAGE_SIZE" validate:"gt=0"`
		ListConcurrency   int           `env:"FABLE_LIST_CONCURRENCY" validate:"gte=1"`
		IncludeOwned      bool          `env:"FABLE_INCLUDE_OWNED"`
		Lists             []string      `env:"FABLE_LISTS"` // ids or names; empty selects every list

		// Config file only, keyed by endpoint name.
		EndpointOverrides map[string]EndpointOverride `mapstructure:"endpoints" validate:"dive"`
	}

	Export struct {
		OutputDir     string `env:"EXPORT_OUTPUT_DIR" validate:"required"`
		Formats       string `env:"EXPORT_FORMATS"`
		SeparateLists bool   `env:"EXPORT_SEPARATE_LISTS"`
		AuditDir      string `env:"EXPORT_AUDIT_DIR"`  // empty disables the run report file
		HistoryDB     string `env:"EXPORT_HISTORY_DB"` // empty disables run history
	}

	Scheduler struct {
		Schedule string `env:"EXPORT_SCHEDULE" validate:"required,cron"`
	}
)

// NewConfig reads the environment after loading envFile (missing is fine) and,
// when configFile is set, that file. Environment values win over the file.
func NewConfig(envFile, configFile string) (*Config, error) {
	if envFile != "" {
		// Values already present in the environment are not overridden.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("fable_base_url", DefaultBaseURL)
	v.SetDefault("fable_request_timeout", DefaultRequestTimeout)
	v.SetDefault("fable_requests_per_second", DefaultRequestsPerSecond)
	v.SetDefault("fable_max_retries", DefaultMaxRetries)
	v.SetDefault("fable_retry_delay", DefaultRetryDelay)
	v.SetDefault("fable_max_retry_delay", DefaultMaxRetryDelay)
	v.SetDefault("fable_max_pages", DefaultMaxPages)
	v.SetDefault("fable_books_page_size", DefaultBooksPageSize)
	v.SetDefault("fable_reviews_page_size", DefaultReviewsPageSize)
	v.SetDefault("fable_list_concurrency", 1)
	v.SetDefault("fable_include_owned", false)
	v.SetDefault("export_output_dir", DefaultOutputDir)
	v.SetDefault("export_formats", "csv")
	v.SetDefault("export_separate_lists", false)
	v.SetDefault("export_audit_dir", "")
	v.SetDefault("export_history_db", "")
	v.SetDefault("export_schedule", DefaultSchedule)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var overrides map[string]EndpointOverride
	if err := v.UnmarshalKey("endpoints", &overrides); err != nil {
		return nil, fmt.Errorf("failed to read endpoints: %w", err)
	}
	if err := checkEndpointNames(overrides); err != nil {
		return nil, err
	}

	return &Config{
		Fable: Fable{
			UserID:            strings.TrimSpace(v.GetString("FABLE_USER_ID")),
			AuthToken:         fable.NormalizeToken(v.GetString("FABLE_AUTH_TOKEN")),
			BaseURL:           v.GetString("FABLE_BASE_URL"),
			RequestTimeout:    v.GetDuration("FABLE_REQUEST_TIMEOUT"),
			RequestsPerSecond: v.GetFloat64("FABLE_REQUESTS_PER_SECOND"),
			MaxRetries:        v.GetInt("FABLE_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("FABLE_RETRY_DELAY"),
			MaxRetryDelay:     v.GetDuration("FABLE_MAX_RETRY_DELAY"),
			MaxPages:          v.GetInt("FABLE_MAX_PAGES"),
			BooksPageSize:     v.GetInt("FABLE_BOOKS_PAGE_SIZE"),
			ReviewsPageSize:   v.GetInt("FABLE_REVIEWS_PAGE_SIZE"),
			ListConcurrency:   v.GetInt("FABLE_LIST_CONCURRENCY"),
			IncludeOwned:      v.GetBool("FABLE_INCLUDE_OWNED"),
			Lists:             SplitList(v.GetString("FABLE_LISTS")),
			EndpointOverrides: overrides,
		},
		Export: Export{
			OutputDir:     v.GetString("EXPORT_OUTPUT_DIR"),
			Formats:       v.GetString("EXPORT_FORMATS"),
			SeparateLists: v.GetBool("EXPORT_SEPARATE_LISTS"),
			AuditDir:      v.GetString("EXPORT_AUDIT_DIR"),
			HistoryDB:     v.GetString("EXPORT_HISTORY_DB"),
		},
		Scheduler: Scheduler{
			Schedule: v.GetString("EXPORT_SCHEDULE"),
		},
	}, nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Endpoints returns the live endpoint descriptors with the configured page
// sizes and any overrides from the config file.
func (c *Config) Endpoints() fable.Endpoints {
	endpoints := fable.DefaultEndpoints()
	endpoints.Books.PageSize = c.BooksPageSize
	endpoints.Reviews.PageSize = c.ReviewsPageSize
	endpoints.LegacyReviews.PageSize = c.ReviewsPageSize
	for name, override := range c.EndpointOverrides {
		if endpoint := endpointByName(&endpoints, name); endpoint != nil {
			override.apply(endpoint)
		}
	}
	return endpoints
}

func (c *Config) RetryPolicy() fable.RetryPolicy {
	return fable.RetryPolicy{
		MaxRetries: c.MaxRetries,
		BaseDelay:  c.RetryDelay,
		MaxDelay:   c.MaxRetryDelay,
	}
}

func (c *Config) ClientOptions() fable.ClientOptions {
	return fable.ClientOptions{
		BaseURL:           c.BaseURL,
		Timeout:           c.RequestTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		if name := field.Tag.Get("mapstructure"); name != "" {
			return name
		}
		return field.Name
	})
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate reports every invalid setting at once, named by its environment key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var messages []string
	for _, fieldErr := range validationErrors {
		field := fieldErr.Field()
		if i := strings.Index(fieldErr.Namespace(), "endpoints["); i >= 0 {
			field = fieldErr.Namespace()[i:]
		}
		var message string
		switch fieldErr.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "url":
			message = fmt.Sprintf("%s must be an absolute URL", field)
		case "cron":
			message = fmt.Sprintf("%s must be a standard 5-field cron expression", field)
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, fieldErr.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of %s", field, fieldErr.Param())
		case "gtefield":
			message = fmt.Sprintf("%s must not be smaller than FABLE_RETRY_DELAY", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		messages = append(messages, message)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
