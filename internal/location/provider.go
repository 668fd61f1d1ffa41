package location

import (
	"context"
	"time"
)

// Fix is a single raw position observation from the location provider. It is
// consumed immediately by the validator and never persisted.
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	AccuracyM float64   `json:"accuracy_m"`
	Timestamp time.Time `json:"timestamp"`
}

// WatchOptions requests a delivery cadence from the provider. Providers may
// deliver less often than asked, never more.
type WatchOptions struct {
	Interval     time.Duration
	MinDistanceM float64
}

// Subscription is a handle to an active watch. Remove is idempotent.
type Subscription interface {
	Remove()
}

// Provider delivers a push stream of fixes to a registered handler.
type Provider interface {
	Watch(ctx context.Context, opts WatchOptions, handle func(Fix)) (Subscription, error)
	Current(ctx context.Context) (Fix, error)
}

// Geocoder resolves a coordinate into a human-readable place label.
// Best-effort: callers must tolerate failure.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}
