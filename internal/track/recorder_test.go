package track

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tracker-makedarun/internal/location"
)

// fakeProvider hands the registered handler back to the test so fixes can be
// pushed synchronously.
type fakeProvider struct {
	mu      sync.Mutex
	handler func(location.Fix)
	removed int
	watchErr error
}

type fakeSub struct {
	p *fakeProvider
}

func (s *fakeSub) Remove() {
	s.p.mu.Lock()
	s.p.removed++
	s.p.mu.Unlock()
}

func (p *fakeProvider) Watch(_ context.Context, _ location.WatchOptions, handle func(location.Fix)) (location.Subscription, error) {
	if p.watchErr != nil {
		return nil, p.watchErr
	}
	p.mu.Lock()
	p.handler = handle
	p.mu.Unlock()
	return &fakeSub{p: p}, nil
}

func (p *fakeProvider) Current(context.Context) (location.Fix, error) {
	return location.Fix{}, nil
}

func (p *fakeProvider) push(fix location.Fix) {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	if h != nil {
		h(fix)
	}
}

type captureHub struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (h *captureHub) Broadcast(_ string, payload []byte) {
	h.mu.Lock()
	h.payloads = append(h.payloads, payload)
	h.mu.Unlock()
}

func TestStartRejectsSecondSession(t *testing.T) {
	p := &fakeProvider{}
	r := NewRecorder(p, nil, nil)

	if _, err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := r.Start(context.Background()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	r.Discard()
}

func TestStartWatchError(t *testing.T) {
	p := &fakeProvider{watchErr: errors.New("no gps")}
	r := NewRecorder(p, nil, nil)
	if _, err := r.Start(context.Background()); err == nil {
		t.Fatalf("expected watch error")
	}
	if r.Status().Recording {
		t.Fatalf("expected no session after failed start")
	}
}

func TestStopWithoutSession(t *testing.T) {
	r := NewRecorder(&fakeProvider{}, nil, nil)
	if _, err := r.Stop(context.Background()); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestRecordStopProducesRecord(t *testing.T) {
	p := &fakeProvider{}
	hub := &captureHub{}
	r := NewRecorder(p, nil, hub)

	// Deterministic clock: controls session duration and movement liveness.
	clock := t0
	r.now = func() time.Time { return clock }

	if _, err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// 200m east in 20m legs, one fix every 12s: 6 km/h.
	at := t0
	for i := 0; i <= 10; i++ {
		clock = at
		p.push(location.Fix{
			Latitude:  0,
			Longitude: lngOffsetM(float64(i) * 20),
			AccuracyM: 5,
			Timestamp: at,
		})
		at = at.Add(12 * time.Second)
	}

	clock = t0.Add(2 * time.Minute)
	record, err := r.Stop(context.Background())
	if err != nil {
		t.Fatalf("stop: %v", err)
	}

	if record.DistanceM < 170 || record.DistanceM > 210 {
		t.Fatalf("expected ~200m, got %v", record.DistanceM)
	}
	if record.DurationMin != 2 {
		t.Fatalf("expected 2 minutes, got %v", record.DurationMin)
	}
	if record.PaceKmh < 5.0 || record.PaceKmh > 6.5 {
		t.Fatalf("expected ~6 km/h, got %v", record.PaceKmh)
	}

	if p.removed == 0 {
		t.Fatalf("expected subscription cancelled on stop")
	}
	hub.mu.Lock()
	broadcasts := len(hub.payloads)
	hub.mu.Unlock()
	if broadcasts == 0 {
		t.Fatalf("expected live point broadcasts")
	}
	if r.Status().Recording {
		t.Fatalf("expected session destroyed after stop")
	}
}

func TestStatusReflectsSession(t *testing.T) {
	p := &fakeProvider{}
	r := NewRecorder(p, nil, nil)

	if r.Status().Recording {
		t.Fatalf("expected idle status")
	}

	id, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	status := r.Status()
	if !status.Recording || status.SessionID != id {
		t.Fatalf("unexpected status: %+v", status)
	}
	r.Discard()

	if r.Status().Recording {
		t.Fatalf("expected idle after discard")
	}
}

func TestDiscardIdempotent(t *testing.T) {
	r := NewRecorder(&fakeProvider{}, nil, nil)
	if _, err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Discard()
	r.Discard()
}
