package track

import (
	"time"

	"tracker-makedarun/internal/location"
	"tracker-makedarun/internal/shared/geo"
)

// Tuned for running. Distances in meters, speed in km/h.
const (
	MinDistanceM    = 10.0
	MaxSpeedKmh     = 15.0
	MinAccuracyM    = 10.0
	MinMovementM    = 2.0
	StationaryAfter = 30 * time.Second

	smoothingWindow = 3
)

// Validator gates raw fixes into track points. It applies, in order: an
// accuracy gate, an out-of-order/duplicate timestamp gate, a minimum-movement
// gate, and a maximum-speed gate, then averages a short rolling window of
// recent fixes to damp jitter.
//
// Rejection is silent: stationary jitter and GPS jumps are expected, and a
// dropped fix must not disturb the recording.
type Validator struct {
	window   []location.Fix
	prev     *TrackPoint
	prevTime time.Time
}

// Accept validates one fix. The returned point is the smoothed coordinate
// when the window holds at least two fixes, otherwise the raw coordinate.
// ok is false for a rejected fix, which produces no point and advances no
// state beyond the smoothing window.
func (v *Validator) Accept(fix location.Fix) (TrackPoint, bool) {
	if fix.AccuracyM > MinAccuracyM {
		return TrackPoint{}, false
	}

	v.window = append(v.window, fix)
	if len(v.window) > smoothingWindow {
		v.window = v.window[1:]
	}

	// First fix of the session seeds the path unconditionally.
	if v.prev == nil {
		point := TrackPoint{Latitude: fix.Latitude, Longitude: fix.Longitude}
		v.advance(point, fix.Timestamp)
		return point, true
	}

	if !fix.Timestamp.After(v.prevTime) {
		return TrackPoint{}, false
	}
	elapsed := fix.Timestamp.Sub(v.prevTime).Seconds()

	distanceM := geo.MetersBetween(v.prev.Latitude, v.prev.Longitude, fix.Latitude, fix.Longitude)
	if distanceM < MinMovementM {
		return TrackPoint{}, false
	}

	speedKmh := distanceM / elapsed * 3.6
	if speedKmh > MaxSpeedKmh {
		return TrackPoint{}, false
	}

	point := TrackPoint{Latitude: fix.Latitude, Longitude: fix.Longitude}
	if len(v.window) >= 2 {
		point = v.smoothed()
	}
	v.advance(point, fix.Timestamp)
	return point, true
}

func (v *Validator) smoothed() TrackPoint {
	var lat, lng float64
	for _, f := range v.window {
		lat += f.Latitude
		lng += f.Longitude
	}
	n := float64(len(v.window))
	return TrackPoint{Latitude: lat / n, Longitude: lng / n}
}

// advance moves the comparison baseline to the validated point and the raw
// fix's timestamp.
func (v *Validator) advance(point TrackPoint, ts time.Time) {
	v.prev = &point
	v.prevTime = ts
}
