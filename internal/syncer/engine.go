package syncer

import (
	"context"
	"log"
	"sync"

	"tracker-makedarun/internal/queue"
	"tracker-makedarun/internal/track"
)

// State of the drain lifecycle. There is no failed state: a partial drain
// returns to idle with the remainder still queued for the next trigger.
type State string

const (
	StateIdle     State = "idle"
	StateDraining State = "draining"
)

// Engine drains the offline queue whenever connectivity returns. One drain
// runs at a time; triggers arriving mid-drain coalesce into a single rerun
// after the active pass finishes.
type Engine struct {
	queue  *queue.Queue
	submit queue.SubmitFunc

	mu       sync.Mutex
	online   bool
	draining bool
	rerun    bool
	last     queue.DrainResult
	done     *sync.WaitGroup
}

func NewEngine(q *queue.Queue, submit queue.SubmitFunc) *Engine {
	return &Engine{queue: q, submit: submit, done: &sync.WaitGroup{}}
}

// OnConnectivityChange is the observer callback. A drain is triggered only
// on the offline-to-online transition.
func (e *Engine) OnConnectivityChange(online bool) {
	e.mu.Lock()
	wasOnline := e.online
	e.online = online
	e.mu.Unlock()

	if online && !wasOnline {
		e.Kick()
	}
}

// Kick requests a drain. Re-entrant kicks during an active drain are
// coalesced; they never stack concurrent drains.
func (e *Engine) Kick() {
	e.mu.Lock()
	if e.draining {
		e.rerun = true
		e.mu.Unlock()
		return
	}
	e.draining = true
	e.done.Add(1)
	e.mu.Unlock()

	go e.drainLoop()
}

func (e *Engine) drainLoop() {
	defer e.done.Done()
	for {
		res, err := e.queue.DrainAndSync(context.Background(), e.submit)
		if err != nil {
			log.Printf("offline queue drain failed: %v", err)
		} else if res.Synced > 0 || res.Dropped > 0 {
			log.Printf("offline sync: %d synced, %d dropped, %d remaining", res.Synced, res.Dropped, res.Remaining)
		}

		e.mu.Lock()
		e.last = res
		if !e.rerun {
			e.draining = false
			e.mu.Unlock()
			return
		}
		e.rerun = false
		e.mu.Unlock()
	}
}

// Wait blocks until any in-flight drain settles. Test and shutdown hook.
func (e *Engine) Wait() {
	e.done.Wait()
}

func (e *Engine) Online() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}

// SetOnline seeds the connectivity flag before the first observer event.
func (e *Engine) SetOnline(online bool) {
	e.mu.Lock()
	e.online = online
	e.mu.Unlock()
}

func (e *Engine) Status() (State, queue.DrainResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draining {
		return StateDraining, e.last
	}
	return StateIdle, e.last
}

// SubmitOrQueue routes a freshly finalized record: straight to the server
// when online, otherwise (or on any submission failure) into the offline
// queue. Returns "synced" or "queued".
func (e *Engine) SubmitOrQueue(ctx context.Context, rec track.RunRecord) (string, error) {
	if e.Online() {
		err := e.submit(ctx, rec)
		if err == nil {
			return "synced", nil
		}
		log.Printf("run submission failed, queueing offline: %v", err)
	}

	if _, err := e.queue.Enqueue(ctx, rec); err != nil {
		return "", err
	}
	return "queued", nil
}
