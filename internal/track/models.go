package track

import "fmt"

// TrackPoint is a validated (possibly smoothed) coordinate accepted into the
// active path.
type TrackPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RunRecord is the finalized, submittable unit. Field names match the wire
// contract of the run-submission endpoint. Immutable once created.
type RunRecord struct {
	DistanceM   float64      `json:"distance"`
	DurationMin float64      `json:"duration"`
	PaceKmh     float64      `json:"pace,omitempty"`
	Date        string       `json:"date"`
	Location    string       `json:"location,omitempty"`
	Path        []TrackPoint `json:"path,omitempty"`
}

// Status is a live snapshot of the active session, published on each tick and
// each accepted point.
type Status struct {
	Recording   bool    `json:"recording"`
	SessionID   string  `json:"session_id,omitempty"`
	DistanceM   float64 `json:"distance_m"`
	DurationSec float64 `json:"duration_sec"`
	PaceKmh     float64 `json:"pace_kmh"`
	Moving      bool    `json:"moving"`
	PointCount  int     `json:"point_count"`
}

type RejectReason string

const (
	RejectTooShort        RejectReason = "too_short"
	RejectNoMovement      RejectReason = "no_movement"
	RejectInvalidDuration RejectReason = "invalid_duration"
)

// RejectionError reports a session that failed the end-of-run acceptance
// rules. The session is discarded, not queued.
type RejectionError struct {
	Reason  RejectReason
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("run rejected (%s): %s", e.Reason, e.Message)
}
