package api

import (
	"fmt"
	"log"
	"math"

	"tracker-makedarun/internal/track"
)

const (
	minPaceKmh = 0.5
	maxPaceKmh = 15.0

	// Relative gap between the reported distance and the path-derived
	// distance that triggers a warning. Warn only: approximate data beats
	// lost data.
	distanceDiscrepancy = 0.15
)

// ValidateRun mirrors the server's constraints so an invalid record fails
// fast, before spending a network round trip.
func ValidateRun(rec track.RunRecord) error {
	if rec.DistanceM < track.MinDistanceM {
		return &ValidationError{Message: fmt.Sprintf("distance must be at least %.0f meters, received %.2f", track.MinDistanceM, rec.DistanceM)}
	}
	if rec.DurationMin <= 0 {
		return &ValidationError{Message: fmt.Sprintf("duration must be greater than 0 minutes, received %.2f", rec.DurationMin)}
	}
	if rec.PaceKmh != 0 && (rec.PaceKmh < minPaceKmh || rec.PaceKmh > maxPaceKmh) {
		return &ValidationError{Message: fmt.Sprintf("pace of %.2f km/h is outside realistic running range (%.1f-%.0f km/h)", rec.PaceKmh, minPaceKmh, maxPaceKmh)}
	}

	if len(rec.Path) > 1 {
		derived := track.PathDistanceM(rec.Path)
		if gap := math.Abs(derived-rec.DistanceM) / rec.DistanceM; gap > distanceDiscrepancy {
			log.Printf("distance discrepancy: reported=%.2fm, calculated=%.2fm", rec.DistanceM, derived)
		}
	}

	// A run faster than the speed cap cannot be genuine.
	minimumDurationMin := rec.DistanceM / 1000 / maxPaceKmh * 60
	if rec.DurationMin < minimumDurationMin {
		return &ValidationError{Message: fmt.Sprintf("duration too short for distance: minimum %.2f minutes for %.0fm", minimumDurationMin, rec.DistanceM)}
	}

	return nil
}
