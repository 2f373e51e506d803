package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunReport accounts for every record a batch run touched or skipped.
type RunReport struct {
	RunID         uuid.UUID     `json:"run_id"`
	Kind          string        `json:"kind"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Processed     int           `json:"processed"`
	SkippedGap    int           `json:"skipped_gap"`
	SkippedJoin   int           `json:"skipped_join"`
	FetchFailures int           `json:"fetch_failures"`

	Gaps       []*DataGapError        `json:"-"`
	Mismatches []*JoinMismatchError   `json:"-"`
	Fetches    []*TransientFetchError `json:"-"`
}

// NewRunReport starts a report for a run of the given kind.
func NewRunReport(kind string) *RunReport {
	return &RunReport{
		RunID:     uuid.New(),
		Kind:      kind,
		StartedAt: time.Now(),
	}
}

// Record classifies a non-fatal error into the matching counter. It returns
// false for errors that are not part of the skip taxonomy.
func (r *RunReport) Record(err error) bool {
	var gap *DataGapError
	var mismatch *JoinMismatchError
	var fetch *TransientFetchError
	switch {
	case errors.As(err, &gap):
		r.SkippedGap++
		r.Gaps = append(r.Gaps, gap)
	case errors.As(err, &mismatch):
		r.SkippedJoin++
		r.Mismatches = append(r.Mismatches, mismatch)
	case errors.As(err, &fetch):
		r.FetchFailures++
		r.Fetches = append(r.Fetches, fetch)
	default:
		return false
	}
	return true
}

// Finish stamps the run duration.
func (r *RunReport) Finish() {
	r.Duration = time.Since(r.StartedAt)
}

// Clean reports whether nothing was skipped.
func (r *RunReport) Clean() bool {
	return r.SkippedGap == 0 && r.SkippedJoin == 0 && r.FetchFailures == 0
}

// String returns a one-line summary of the run.
func (r *RunReport) String() string {
	return fmt.Sprintf(
		"%s run %s: processed=%d skipped_gap=%d skipped_join=%d fetch_failures=%d duration=%s",
		r.Kind, r.RunID, r.Processed, r.SkippedGap, r.SkippedJoin, r.FetchFailures, r.Duration.Round(time.Millisecond),
	)
}
