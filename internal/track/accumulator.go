package track

import "tracker-makedarun/internal/shared/geo"

// Accumulator keeps the ordered path and the running distance total.
// Distance is strictly incremental: each accepted point adds the leg from the
// previous path point, and the total is never recomputed over the full path
// during a session.
type Accumulator struct {
	path      []TrackPoint
	distanceM float64
}

// Ingest appends a validated point and returns the updated cumulative
// distance in meters.
func (a *Accumulator) Ingest(point TrackPoint) float64 {
	if n := len(a.path); n > 0 {
		last := a.path[n-1]
		a.distanceM += geo.MetersBetween(last.Latitude, last.Longitude, point.Latitude, point.Longitude)
	}
	a.path = append(a.path, point)
	return a.distanceM
}

func (a *Accumulator) DistanceM() float64 {
	return a.distanceM
}

func (a *Accumulator) Path() []TrackPoint {
	return a.path
}

// PathDistanceM recomputes total distance from a full path. Used only as a
// consistency check against the incremental total at submission time.
func PathDistanceM(path []TrackPoint) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += geo.MetersBetween(path[i-1].Latitude, path[i-1].Longitude, path[i].Latitude, path[i].Longitude)
	}
	return total
}
