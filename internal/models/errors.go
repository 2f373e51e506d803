package models

import (
	"errors"
	"fmt"
	"strings"
)

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key violation")
	ErrInvalidWindow     = errors.New("window size must be positive")
	ErrUnknownWindowMode = errors.New("unknown window mode")
	ErrSameTeam          = errors.New("home and away team must differ")
)

// DataGapError marks a game or window with missing observations. It is never
// fatal: the affected features are left null.
type DataGapError struct {
	GameID string
	Team   string
	Reason string
}

func (e *DataGapError) Error() string {
	if e.Team == "" {
		return fmt.Sprintf("data gap in game %s: %s", e.GameID, e.Reason)
	}
	return fmt.Sprintf("data gap in game %s (%s): %s", e.GameID, e.Team, e.Reason)
}

// JoinSide identifies which input of a join a record came from.
type JoinSide string

const (
	JoinSideFeatures JoinSide = "features"
	JoinSideLines    JoinSide = "lines"
)

// JoinMismatchError records a feature row or line record with no partner.
type JoinMismatchError struct {
	Side JoinSide
	Key  GameKey
}

func (e *JoinMismatchError) Error() string {
	return fmt.Sprintf("no matching %s record for %s", e.Side.other(), e.Key)
}

func (s JoinSide) other() JoinSide {
	if s == JoinSideFeatures {
		return JoinSideLines
	}
	return JoinSideFeatures
}

// TransientFetchError is returned once an upstream fetch has exhausted its retries.
type TransientFetchError struct {
	Source   string
	Attempts int
	Err      error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("fetch from %s failed after %d attempts: %v", e.Source, e.Attempts, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// SchemaDriftError aborts a run when an upstream table or payload lacks
// expected columns.
type SchemaDriftError struct {
	Table   string
	Missing []string
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("schema drift in %s: missing columns %s", e.Table, strings.Join(e.Missing, ", "))
}

// CheckColumns returns a SchemaDriftError naming every required column absent
// from have. Comparison is case-insensitive.
func CheckColumns(table string, have, required []string) error {
	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[strings.ToLower(c)] = true
	}
	var missing []string
	for _, c := range required {
		if !present[strings.ToLower(c)] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaDriftError{Table: table, Missing: missing}
	}
	return nil
}
