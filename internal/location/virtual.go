package location

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"tracker-makedarun/internal/shared/geo"
)

// LatLng is a single vertex on a virtual route.
type LatLng struct {
	Lat float64
	Lng float64
}

// VirtualProvider replays fixes along a fixed route at a constant speed.
// It stands in for device GPS in development and tests.
type VirtualProvider struct {
	Route     []LatLng
	SpeedKmh  float64
	AccuracyM float64
}

var errEmptyRoute = errors.New("location: virtual route needs at least 2 points")

func (p *VirtualProvider) Current(ctx context.Context) (Fix, error) {
	if len(p.Route) == 0 {
		return Fix{}, errEmptyRoute
	}
	start := p.Route[0]
	return Fix{Latitude: start.Lat, Longitude: start.Lng, AccuracyM: p.AccuracyM, Timestamp: time.Now()}, nil
}

func (p *VirtualProvider) Watch(ctx context.Context, opts WatchOptions, handle func(Fix)) (Subscription, error) {
	if len(p.Route) < 2 {
		return nil, errEmptyRoute
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	segments := make([]float64, len(p.Route)-1)
	total := 0.0
	for i := 0; i < len(p.Route)-1; i++ {
		d := geo.MetersBetween(p.Route[i].Lat, p.Route[i].Lng, p.Route[i+1].Lat, p.Route[i+1].Lng)
		segments[i] = d
		total += d
	}

	speedMps := p.SpeedKmh / 3.6
	sub := &virtualSub{done: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			case now := <-ticker.C:
				traveled := math.Mod(speedMps*now.Sub(start).Seconds(), total)
				lat, lng := p.pointAt(segments, traveled)
				handle(Fix{
					Latitude:  lat,
					Longitude: lng,
					AccuracyM: p.AccuracyM,
					Timestamp: now,
				})
			}
		}
	}()

	return sub, nil
}

// pointAt interpolates the position after traveling the given distance along
// the route.
func (p *VirtualProvider) pointAt(segments []float64, traveled float64) (float64, float64) {
	accum := 0.0
	for i, segment := range segments {
		if accum+segment >= traveled && segment > 0 {
			fraction := (traveled - accum) / segment
			p1, p2 := p.Route[i], p.Route[i+1]
			return p1.Lat + (p2.Lat-p1.Lat)*fraction, p1.Lng + (p2.Lng-p1.Lng)*fraction
		}
		accum += segment
	}
	last := p.Route[len(p.Route)-1]
	return last.Lat, last.Lng
}

type virtualSub struct {
	once sync.Once
	done chan struct{}
}

func (s *virtualSub) Remove() {
	s.once.Do(func() { close(s.done) })
}
