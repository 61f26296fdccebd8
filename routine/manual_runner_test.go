package routine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oss.nandlabs.io/opspulse/routine/store/memory"
)

func TestManualRunner_Run_InsertsRunAndTouchesLastRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := memory.New()
	r := insertDueRoutine(t, store, srv.URL)

	runner := NewManualRunner(store, NewHttpProber(staticSecrets{}, time.Second))

	run, err := runner.Run(context.Background(), r.WorkspaceID, r.ID)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.TriggeredBy != TriggeredByManual {
		t.Fatalf("TriggeredBy = %v, want MANUAL", run.TriggeredBy)
	}
	if run.Status != RunStatusSuccess {
		t.Fatalf("Status = %v, want SUCCESS", run.Status)
	}

	got, err := store.GetRoutine(context.Background(), r.WorkspaceID, r.ID)
	if err != nil {
		t.Fatalf("GetRoutine: %v", err)
	}
	if got.LastRunAt == nil {
		t.Fatalf("LastRunAt = nil, want set after manual run")
	}
	// Manual runs bypass the schedule entirely.
	if !got.NextRunAt.Equal(r.NextRunAt) {
		t.Fatalf("NextRunAt = %v, want unchanged %v", got.NextRunAt, r.NextRunAt)
	}
	if got.LockUntil != nil {
		t.Fatalf("LockUntil = %v, want untouched by a manual run", got.LockUntil)
	}
}

func TestManualRunner_Run_RoutineNotFound(t *testing.T) {
	store := memory.New()
	runner := NewManualRunner(store, NewHttpProber(staticSecrets{}, time.Second))

	_, err := runner.Run(context.Background(), "missing-ws", "missing-routine")
	if !errors.Is(err, ErrRoutineNotFound) {
		t.Fatalf("Run() error = %v, want ErrRoutineNotFound", err)
	}
}

type touchFailingStore struct {
	*memory.Store
}

func (s *touchFailingStore) TouchLastRun(context.Context, string, string, time.Time) error {
	return errors.New("touch failed")
}

func TestManualRunner_Run_ReturnsRunEvenWhenTouchLastRunFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	base := memory.New()
	r := insertDueRoutine(t, base, srv.URL)
	store := &touchFailingStore{Store: base}

	runner := NewManualRunner(store, NewHttpProber(staticSecrets{}, time.Second))

	run, err := runner.Run(context.Background(), r.WorkspaceID, r.ID)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil even though TouchLastRun fails", err)
	}
	if run == nil {
		t.Fatalf("Run() = nil run, want the inserted run record")
	}
}
