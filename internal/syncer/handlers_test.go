package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tracker-makedarun/internal/track"

	"github.com/gofiber/fiber/v2"
)

func TestSyncHandlers(t *testing.T) {
	q := testQueue(t)
	if _, err := q.Enqueue(context.Background(), record()); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	e := NewEngine(q, func(context.Context, track.RunRecord) error { return nil })

	app := fiber.New()
	RegisterRoutes(app.Group("/sync"), e)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/sync/", nil))
	if err != nil || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("trigger: %v %v", resp.StatusCode, err)
	}
	e.Wait()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/sync/status", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %v", err)
	}
	var body struct {
		State string `json:"state"`
		Last  struct {
			Synced int `json:"synced"`
		} `json:"last"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.State != string(StateIdle) || body.Last.Synced != 1 {
		t.Fatalf("unexpected status: %+v", body)
	}
}
