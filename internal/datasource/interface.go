package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/hoopslines/internal/models"
)

// GameLogSource fetches per-entity box score rows for a season.
type GameLogSource interface {
	// FetchGameLogs retrieves every entity game row of the season
	FetchGameLogs(ctx context.Context, season int) ([]models.GameEvent, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// LineSource fetches closing lines for finished games and current lines for
// the upcoming slate.
type LineSource interface {
	// FetchLines retrieves settled line records
	FetchLines(ctx context.Context) ([]models.LineOutcomeRecord, error)

	// FetchUpcoming retrieves today's games with their current lines
	FetchUpcoming(ctx context.Context) ([]models.UpcomingGame, error)

	Name() string
	IsEnabled() bool
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
	ErrCodeUnknown              = "unknown"
)

// ErrNoSources is returned when configuration enables no source of a kind.
var ErrNoSources = errors.New("no enabled data sources configured")

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsRetryable reports whether a failed fetch may succeed if attempted again.
// Authentication failures, malformed payloads, missing columns and disabled
// sources are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var drift *models.SchemaDriftError
	if errors.As(err, &drift) {
		return false
	}
	var dsErr DataSourceError
	if errors.As(err, &dsErr) {
		switch dsErr.Code {
		case ErrCodeAuthenticationFailed, ErrCodeInvalidData, ErrCodeNotFound, ErrCodeDisabled:
			return false
		}
	}
	return true
}
