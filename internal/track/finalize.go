package track

import (
	"context"
	"fmt"
	"math"
	"time"

	"tracker-makedarun/internal/location"
)

// finalize applies the end-of-run acceptance rules and assembles the run
// record. Checked in order: minimum distance, movement liveness, positive
// duration. A rejected session produces no record.
func (r *Recorder) finalize(ctx context.Context, s *session, stoppedAt time.Time) (RunRecord, error) {
	distanceM := s.acc.DistanceM()
	if distanceM < MinDistanceM {
		return RunRecord{}, &RejectionError{
			Reason:  RejectTooShort,
			Message: fmt.Sprintf("minimum distance of %.0fm not reached (%.2fm)", MinDistanceM, distanceM),
		}
	}

	if stoppedAt.Sub(s.lastMovement) > StationaryAfter {
		return RunRecord{}, &RejectionError{
			Reason:  RejectNoMovement,
			Message: "no significant movement detected",
		}
	}

	durationMin := stoppedAt.Sub(s.startedAt).Minutes()
	if durationMin <= 0 {
		return RunRecord{}, &RejectionError{
			Reason:  RejectInvalidDuration,
			Message: fmt.Sprintf("duration must be greater than 0, got %.2f", durationMin),
		}
	}

	path := s.acc.Path()
	label := r.routeLabel(ctx, path)

	return RunRecord{
		DistanceM:   round2(distanceM),
		DurationMin: round2(durationMin),
		PaceKmh:     round2(paceKmh(distanceM, durationMin*60)),
		Date:        stoppedAt.UTC().Format(time.RFC3339),
		Location:    label,
		Path:        path,
	}, nil
}

// routeLabel reverse-geocodes the first and last path points, best-effort.
// A failed lookup degrades to a coordinate string, never blocks the stop.
func (r *Recorder) routeLabel(ctx context.Context, path []TrackPoint) string {
	if len(path) == 0 {
		return ""
	}

	start := r.placeLabel(ctx, path[0])
	end := r.placeLabel(ctx, path[len(path)-1])

	switch {
	case start != "" && end != "":
		return start + " → " + end
	case start != "":
		return start
	default:
		return end
	}
}

func (r *Recorder) placeLabel(ctx context.Context, p TrackPoint) string {
	if r.geocoder == nil {
		return location.CoordinateLabel(p.Latitude, p.Longitude)
	}

	geoCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	label, err := r.geocoder.ReverseGeocode(geoCtx, p.Latitude, p.Longitude)
	if err != nil || label == "" {
		return location.CoordinateLabel(p.Latitude, p.Longitude)
	}
	return label
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
