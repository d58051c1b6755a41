package processing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"clipo/internal/api"
	"clipo/internal/config"
	"clipo/internal/session"
)

func newFixture(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := session.NewStore(session.NewFileStateStore(filepath.Join(t.TempDir(), "auth_state.json")))
	if err != nil {
		t.Fatalf("create session store: %v", err)
	}
	if err := store.SetTokens("a1", "r1"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.API.AuthURL = srv.URL + "/api"
	cfg.API.VideoURL = srv.URL + "/api"
	return NewService(api.NewClient(cfg, store), nil)
}

func TestStateTerminal(t *testing.T) {
	for state, want := range map[State]bool{
		StatePending:    false,
		StateProcessing: false,
		StateSuccess:    true,
		StateFailure:    true,
	} {
		if got := state.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", state, got, want)
		}
	}
}

func TestWatchStopsAtTerminalState(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/process/status/7", func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&polls, 1) {
		case 1:
			fmt.Fprint(w, `{"state":"PENDING","status":"Waiting to start..."}`)
		case 2:
			fmt.Fprint(w, `{"state":"PROCESSING","status":"Analyzing video..."}`)
		default:
			fmt.Fprint(w, `{"state":"SUCCESS","status":"Completed","result":{"video_id":7}}`)
		}
	})

	svc := newFixture(t, mux)
	var seen []State
	status, err := svc.Watch(context.Background(), "7", 10*time.Millisecond, time.Minute,
		func(s Status) { seen = append(seen, s.State) })
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if status.State != StateSuccess {
		t.Errorf("terminal state = %s, want SUCCESS", status.State)
	}
	if len(seen) != 3 || seen[0] != StatePending || seen[2] != StateSuccess {
		t.Errorf("observed states %v, want PENDING, PROCESSING, SUCCESS", seen)
	}
	if n := atomic.LoadInt32(&polls); n != 3 {
		t.Errorf("polled %d times, want 3", n)
	}
}

func TestWatchReturnsFailureWithoutError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/process/status/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":"FAILURE","status":"Processing failed"}`)
	})

	svc := newFixture(t, mux)
	status, err := svc.Watch(context.Background(), "7", 10*time.Millisecond, time.Minute, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if status.State != StateFailure || status.Detail != "Processing failed" {
		t.Errorf("status = %+v, want FAILURE", status)
	}
}

func TestWatchHonorsCancellation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/process/status/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":"PROCESSING","status":"Analyzing video..."}`)
	})

	svc := newFixture(t, mux)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Watch(ctx, "7", 10*time.Millisecond, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWatchHonorsTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/process/status/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":"PENDING","status":"Waiting to start..."}`)
	})

	svc := newFixture(t, mux)
	_, err := svc.Watch(context.Background(), "7", 5*time.Millisecond, 30*time.Millisecond, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestQueueDecodesStatistics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/queue/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"max_processes":2,
			"active_processes":1,
			"active_tasks":[{"video_id":7,"slot_id":0,"started_at":"2026-08-30T12:00:00"}],
			"queued_tasks":3,
			"available_slots":1,
			"statistics":{"total_submitted":11,"total_completed":6,"total_failed":1}
		}`)
	})

	svc := newFixture(t, mux)
	status, err := svc.Queue(context.Background())
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if status.MaxProcesses != 2 || status.QueuedTasks != 3 {
		t.Errorf("queue = %+v, want 2 slots and 3 queued", status)
	}
	if len(status.ActiveTasks) != 1 || status.ActiveTasks[0].VideoID != 7 {
		t.Errorf("active tasks = %+v, want video 7", status.ActiveTasks)
	}
	if status.Statistics.Completed != 6 {
		t.Errorf("completed = %d, want 6", status.Statistics.Completed)
	}
}

func TestStartReturnsTaskHandle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/process/start", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"task_id":"7","status":"Processing started"}`)
	})

	svc := newFixture(t, mux)
	result, err := svc.Start(context.Background(), 7)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if result.TaskID != "7" {
		t.Errorf("task id = %q, want 7", result.TaskID)
	}
}
