package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var tableNameExpr = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Server config
	if c.Server.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Message: "listen address is required",
		})
	}

	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.timeouts",
			Message: "server timeouts must not be negative",
		})
	}

	// Validate Pipeline config
	if c.Pipeline.FetchTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.fetch_timeout",
			Message: "fetch_timeout must be positive",
		})
	}

	if c.Pipeline.ProcessTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.process_timeout",
			Message: "process_timeout must be positive",
		})
	}

	// Validate Fetcher config
	if c.Fetcher.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "fetcher.rate_limit",
			Message: "rate_limit must not be negative",
		})
	}

	if c.Fetcher.Burst < 1 {
		errors = append(errors, ValidationError{
			Field:   "fetcher.burst",
			Message: "burst must be positive",
		})
	}

	if c.Fetcher.MaxBodyBytes < 1 {
		errors = append(errors, ValidationError{
			Field:   "fetcher.max_body_bytes",
			Message: "max_body_bytes must be positive",
		})
	}

	// Validate Dictionaries config
	if c.Dictionaries.Charged == "" {
		errors = append(errors, ValidationError{
			Field:   "dictionaries.charged",
			Message: "charged words dictionary is required",
		})
	}

	switch c.Dictionaries.Fallback {
	case "lower", "snowball":
	default:
		errors = append(errors, ValidationError{
			Field:   "dictionaries.fallback",
			Message: fmt.Sprintf("unknown fallback %q, expected lower or snowball", c.Dictionaries.Fallback),
		})
	}

	// Validate Database config
	if c.Database.URL != "" {
		if u, err := url.Parse(c.Database.URL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if !tableNameExpr.MatchString(c.Database.TableName) {
		errors = append(errors, ValidationError{
			Field:   "database.table_name",
			Message: "table_name must be a plain SQL identifier",
		})
	}

	// Validate Log config
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown log level %q", c.Log.Level),
		})
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errors = append(errors, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("unknown log format %q", c.Log.Format),
		})
	}

	return errors
}
