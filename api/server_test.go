package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"oss.nandlabs.io/opspulse/rest"
	"oss.nandlabs.io/opspulse/routine"
	"oss.nandlabs.io/opspulse/routine/store/memory"
	"oss.nandlabs.io/opspulse/turbo"
	"oss.nandlabs.io/opspulse/uuid"
)

type stubIdentity struct {
	userID string
}

func (s stubIdentity) Resolve(_ context.Context, authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrUnauthorized
	}
	return s.userID, nil
}

type stubProber struct{}

func (stubProber) Probe(ctx context.Context, r *routine.Routine) routine.RunOutcome {
	return routine.RunOutcome{Status: routine.RunStatusSuccess}
}

func newTestServer(t *testing.T) (*turbo.Router, *memory.Store) {
	t.Helper()
	store := memory.New()

	uid, err := uuid.V4()
	if err != nil {
		t.Fatalf("uuid.V4: %v", err)
	}
	opts := rest.DefaultSrvOptions()
	opts.Id = uid.String()

	server, err := NewServer(opts, Deps{
		Store:    store,
		Runner:   routine.NewManualRunner(store, stubProber{}),
		Identity: stubIdentity{userID: "user-1"},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return server.Router(), store
}

func doRequest(router interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}, method, path string, body []byte, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Health_IsUnauthenticated(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doRequest(router, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAPI_CreateRoutine_RequiresAuth(t *testing.T) {
	router, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"name":             "check",
		"endpoint_url":     "https://example.com",
		"interval_minutes": routine.MinIntervalMinutes,
	})
	rec := doRequest(router, http.MethodPost, "/routines", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without Authorization header", rec.Code)
	}
}

func TestAPI_CreateAndGetRoutine(t *testing.T) {
	router, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"name":             "check",
		"endpoint_url":     "https://example.com",
		"interval_minutes": routine.MinIntervalMinutes,
	})
	rec := doRequest(router, http.MethodPost, "/routines", body, "Bearer valid-token")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}

	var created struct {
		Routine routine.Routine `json:"routine"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if created.Routine.ID == "" {
		t.Fatalf("created routine has no id")
	}

	rec = doRequest(router, http.MethodGet, "/routines/"+created.Routine.ID, nil, "Bearer valid-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

func TestAPI_CreateRoutine_InvalidBodyIsBadRequest(t *testing.T) {
	router, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"name": "check"})
	rec := doRequest(router, http.MethodPost, "/routines", body, "Bearer valid-token")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing endpoint_url", rec.Code)
	}
}

func TestAPI_GetRoutine_NotFound(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doRequest(router, http.MethodGet, "/routines/does-not-exist", nil, "Bearer valid-token")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
