package track

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"tracker-makedarun/internal/location"

	"github.com/google/uuid"
)

var (
	ErrSessionActive   = errors.New("track: a recording session is already active")
	ErrNoActiveSession = errors.New("track: no active recording session")
)

// Broadcaster fans live session updates out to stream subscribers.
type Broadcaster interface {
	Broadcast(sessionID string, payload []byte)
}

// Recorder owns the single active recording session. At most one session
// exists at a time; Start fails while one is active.
type Recorder struct {
	mu       sync.Mutex
	provider location.Provider
	geocoder location.Geocoder
	hub      Broadcaster
	session  *session
	now      func() time.Time
}

type session struct {
	id           string
	startedAt    time.Time
	validator    Validator
	acc          Accumulator
	lastMovement time.Time
	moving       bool
	durationSec  float64
	paceKmh      float64
	sub          location.Subscription
	tickDone     chan struct{}
	tickOnce     sync.Once
}

func NewRecorder(provider location.Provider, geocoder location.Geocoder, hub Broadcaster) *Recorder {
	return &Recorder{
		provider: provider,
		geocoder: geocoder,
		hub:      hub,
		now:      time.Now,
	}
}

// Start begins a new session and subscribes to the location stream.
func (r *Recorder) Start(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		return "", ErrSessionActive
	}

	now := r.now()
	s := &session{
		id:           uuid.NewString(),
		startedAt:    now,
		lastMovement: now,
		moving:       true,
		tickDone:     make(chan struct{}),
	}

	sub, err := r.provider.Watch(ctx, location.WatchOptions{
		Interval:     2 * time.Second,
		MinDistanceM: 1,
	}, r.onFix)
	if err != nil {
		return "", err
	}
	s.sub = sub
	r.session = s

	go r.tickLoop(s)
	return s.id, nil
}

func (r *Recorder) onFix(fix location.Fix) {
	r.mu.Lock()
	s := r.session
	if s == nil {
		r.mu.Unlock()
		return
	}

	point, ok := s.validator.Accept(fix)
	if !ok {
		r.mu.Unlock()
		return
	}

	distanceM := s.acc.Ingest(point)
	s.lastMovement = r.now()
	s.moving = true
	id := s.id
	r.mu.Unlock()

	if r.hub != nil {
		payload, _ := json.Marshal(pointUpdate{Point: point, DistanceM: distanceM})
		r.hub.Broadcast(id, payload)
	}
}

type pointUpdate struct {
	Point     TrackPoint `json:"point"`
	DistanceM float64    `json:"distance_m"`
}

// tickLoop refreshes duration, pace and the movement-liveness flag once per
// second while recording.
func (r *Recorder) tickLoop(s *session) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.tickDone:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.session != s {
				r.mu.Unlock()
				return
			}
			now := r.now()
			s.durationSec = now.Sub(s.startedAt).Seconds()
			s.paceKmh = paceKmh(s.acc.DistanceM(), s.durationSec)
			s.moving = now.Sub(s.lastMovement) <= StationaryAfter
			status := r.statusLocked()
			id := s.id
			r.mu.Unlock()

			if r.hub != nil {
				payload, _ := json.Marshal(status)
				r.hub.Broadcast(id, payload)
			}
		}
	}
}

func paceKmh(distanceM, durationSec float64) float64 {
	if durationSec <= 0 {
		return 0
	}
	return (distanceM / 1000) / (durationSec / 3600)
}

// Stop cancels the location subscription and the tick loop, then finalizes
// the session into a run record. A *RejectionError is returned for sessions
// failing the acceptance rules; the session is destroyed either way.
func (r *Recorder) Stop(ctx context.Context) (RunRecord, error) {
	r.mu.Lock()
	s := r.session
	if s == nil {
		r.mu.Unlock()
		return RunRecord{}, ErrNoActiveSession
	}
	r.session = nil
	r.mu.Unlock()

	s.teardown()
	return r.finalize(ctx, s, r.now())
}

// Discard drops the active session without finalizing. No-op when idle.
func (r *Recorder) Discard() {
	r.mu.Lock()
	s := r.session
	r.session = nil
	r.mu.Unlock()

	if s != nil {
		s.teardown()
	}
}

// teardown is idempotent; both cancellations tolerate being applied twice.
func (s *session) teardown() {
	if s.sub != nil {
		s.sub.Remove()
	}
	s.tickOnce.Do(func() { close(s.tickDone) })
}

func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

func (r *Recorder) statusLocked() Status {
	s := r.session
	if s == nil {
		return Status{}
	}
	return Status{
		Recording:   true,
		SessionID:   s.id,
		DistanceM:   s.acc.DistanceM(),
		DurationSec: s.durationSec,
		PaceKmh:     s.paceKmh,
		Moving:      s.moving,
		PointCount:  len(s.acc.Path()),
	}
}
