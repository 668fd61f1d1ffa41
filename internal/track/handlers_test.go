package track

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func testApp(t *testing.T, r *Recorder, submit SubmitFunc) *fiber.App {
	t.Helper()
	app := fiber.New()
	if submit == nil {
		submit = func(context.Context, RunRecord) (string, error) { return "synced", nil }
	}
	RegisterRoutes(app.Group("/session"), r, submit)
	return app
}

func TestStartStatusDiscardHandlers(t *testing.T) {
	r := NewRecorder(&fakeProvider{}, nil, nil)
	app := testApp(t, r, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/session/start", nil))
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status: %v %v", resp.StatusCode, err)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/session/start", nil))
	if err != nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict on second start, got %v", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/session/status", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %v", err)
	}
	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Recording {
		t.Fatalf("expected recording status")
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/session/discard", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("discard: %v", err)
	}
	if r.Status().Recording {
		t.Fatalf("expected idle after discard")
	}
}

func TestStopHandlerReportsRejection(t *testing.T) {
	p := &fakeProvider{}
	r := NewRecorder(p, nil, nil)
	app := testApp(t, r, func(context.Context, RunRecord) (string, error) {
		t.Fatalf("submit must not be called for a rejected session")
		return "", nil
	})

	if _, err := app.Test(httptest.NewRequest(http.MethodPost, "/session/start", nil)); err != nil {
		t.Fatalf("start: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/session/stop", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("stop: %v", err)
	}
	var body struct {
		Saved  bool   `json:"saved"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Saved || body.Reason != string(RejectTooShort) {
		t.Fatalf("expected too_short rejection, got %+v", body)
	}
}

func TestStopHandlerSubmitsRecord(t *testing.T) {
	p := &fakeProvider{}
	r := NewRecorder(p, nil, nil)
	clock := t0
	r.now = func() time.Time { return clock }

	submitted := false
	app := testApp(t, r, func(_ context.Context, rec RunRecord) (string, error) {
		submitted = true
		if rec.DistanceM <= 0 {
			t.Fatalf("expected positive distance")
		}
		return "queued", nil
	})

	if _, err := app.Test(httptest.NewRequest(http.MethodPost, "/session/start", nil)); err != nil {
		t.Fatalf("start: %v", err)
	}

	at := t0
	for i := 0; i <= 5; i++ {
		clock = at
		p.push(fixAt(0, lngOffsetM(float64(i)*20), 5, at))
		at = at.Add(12 * time.Second)
	}
	clock = t0.Add(time.Minute)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/session/stop", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("stop: %v", err)
	}
	var body struct {
		Saved  bool   `json:"saved"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Saved || body.Status != "queued" || !submitted {
		t.Fatalf("unexpected stop response: %+v", body)
	}
}

func TestStopHandlerWithoutSession(t *testing.T) {
	r := NewRecorder(&fakeProvider{}, nil, nil)
	app := testApp(t, r, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/session/stop", nil))
	if err != nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict, got %v", resp.StatusCode)
	}
}

func TestStopHandlerSubmitError(t *testing.T) {
	p := &fakeProvider{}
	r := NewRecorder(p, nil, nil)
	clock := t0
	r.now = func() time.Time { return clock }

	app := testApp(t, r, func(context.Context, RunRecord) (string, error) {
		return "", errors.New("queue unavailable")
	})

	if _, err := app.Test(httptest.NewRequest(http.MethodPost, "/session/start", nil)); err != nil {
		t.Fatalf("start: %v", err)
	}
	at := t0
	for i := 0; i <= 5; i++ {
		clock = at
		p.push(fixAt(0, lngOffsetM(float64(i)*20), 5, at))
		at = at.Add(12 * time.Second)
	}
	clock = t0.Add(time.Minute)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/session/stop", nil))
	if err != nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 on submit failure, got %v", resp.StatusCode)
	}
}
