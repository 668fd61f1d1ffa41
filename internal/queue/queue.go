package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"tracker-makedarun/internal/store"
	"tracker-makedarun/internal/track"

	"github.com/google/uuid"
)

// QueuedRun is a run record plus a locally assigned id used for removal
// bookkeeping. The id never reaches the server.
type QueuedRun struct {
	ID string `json:"id"`
	track.RunRecord
}

// DrainResult reports a drain pass for observability.
type DrainResult struct {
	Synced    int `json:"synced"`
	Dropped   int `json:"dropped"`
	Remaining int `json:"remaining"`
}

// SubmitFunc attempts to deliver one record to the server.
type SubmitFunc func(ctx context.Context, rec track.RunRecord) error

// Queue is the durable store-and-forward collection of runs not yet
// confirmed by the server. The collection is read-modify-written as a whole;
// safe under the client's single-process access.
type Queue struct {
	kv store.KV
}

func New(kv store.KV) *Queue {
	return &Queue{kv: kv}
}

// Enqueue appends a record to the durable collection under a fresh id.
func (q *Queue) Enqueue(ctx context.Context, rec track.RunRecord) (QueuedRun, error) {
	runs, err := q.load(ctx)
	if err != nil {
		return QueuedRun{}, err
	}

	queued := QueuedRun{ID: uuid.NewString(), RunRecord: rec}
	runs = append(runs, queued)
	if err := q.save(ctx, runs); err != nil {
		return QueuedRun{}, err
	}
	return queued, nil
}

// Runs returns the queued collection in FIFO order.
func (q *Queue) Runs(ctx context.Context) ([]QueuedRun, error) {
	return q.load(ctx)
}

// DrainAndSync attempts to submit every queued run. Entries that can never
// succeed (too short, non-positive duration, unrealistic pace) are dropped
// without a submit attempt; entries whose submission fails stay queued in
// their original order. Draining an empty queue is a no-op.
func (q *Queue) DrainAndSync(ctx context.Context, submit SubmitFunc) (DrainResult, error) {
	runs, err := q.load(ctx)
	if err != nil {
		return DrainResult{}, err
	}
	if len(runs) == 0 {
		return DrainResult{}, nil
	}

	var remaining []QueuedRun
	result := DrainResult{}
	for _, run := range runs {
		if reason := permanentlyInvalid(run.RunRecord); reason != "" {
			log.Printf("dropping invalid offline run %s: %s", run.ID, reason)
			result.Dropped++
			continue
		}
		if err := submit(ctx, run.RunRecord); err != nil {
			log.Printf("failed to sync run %s: %v", run.ID, err)
			remaining = append(remaining, run)
			continue
		}
		result.Synced++
	}

	if err := q.save(ctx, remaining); err != nil {
		return DrainResult{}, err
	}
	result.Remaining = len(remaining)
	return result, nil
}

// permanentlyInvalid mirrors the submission constraints that can never start
// passing; retrying such entries forever would be pointless.
func permanentlyInvalid(rec track.RunRecord) string {
	if rec.DistanceM < track.MinDistanceM {
		return "distance too short"
	}
	if rec.DurationMin <= 0 {
		return "non-positive duration"
	}
	if rec.PaceKmh != 0 && (rec.PaceKmh < 0.5 || rec.PaceKmh > track.MaxSpeedKmh) {
		return "unrealistic pace"
	}
	return ""
}

func (q *Queue) load(ctx context.Context) ([]QueuedRun, error) {
	raw, err := q.kv.Get(ctx, store.KeyOfflineRuns)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var runs []QueuedRun
	if err := json.Unmarshal([]byte(raw), &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (q *Queue) save(ctx context.Context, runs []QueuedRun) error {
	if len(runs) == 0 {
		return q.kv.Delete(ctx, store.KeyOfflineRuns)
	}
	raw, err := json.Marshal(runs)
	if err != nil {
		return err
	}
	return q.kv.Set(ctx, store.KeyOfflineRuns, string(raw))
}
