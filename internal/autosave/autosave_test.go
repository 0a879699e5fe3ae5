package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	saves map[string]int
	err   error
}

func (r *recorder) save(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saves == nil {
		r.saves = make(map[string]int)
	}
	r.saves[id]++
	return r.err
}

func (r *recorder) count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves[id]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestScheduleCoalesces(t *testing.T) {
	rec := &recorder{}
	s := New(30*time.Millisecond, rec.save, slog.Default())

	for range 5 {
		s.Schedule("g1")
	}
	waitFor(t, func() bool { return rec.count("g1") > 0 })

	time.Sleep(60 * time.Millisecond)
	if got := rec.count("g1"); got != 1 {
		t.Errorf("expected 1 save, got %d", got)
	}
	if s.Pending() != 0 {
		t.Errorf("expected nothing pending, got %d", s.Pending())
	}
}

func TestFlushSavesPendingNow(t *testing.T) {
	rec := &recorder{}
	s := New(time.Hour, rec.save, slog.Default())

	s.Schedule("g1")
	s.Schedule("g2")
	if s.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", s.Pending())
	}

	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if rec.count("g1") != 1 || rec.count("g2") != 1 {
		t.Errorf("expected one save each, got %v", rec.saves)
	}
	if s.Pending() != 0 {
		t.Errorf("expected nothing pending, got %d", s.Pending())
	}
}

func TestForgetCancelsSave(t *testing.T) {
	rec := &recorder{}
	s := New(time.Hour, rec.save, slog.Default())

	s.Schedule("g1")
	s.Forget("g1")

	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if rec.count("g1") != 0 {
		t.Errorf("expected no save, got %d", rec.count("g1"))
	}
}

func TestFlushReportsErrors(t *testing.T) {
	rec := &recorder{err: errors.New("disk full")}
	s := New(time.Hour, rec.save, slog.Default())

	s.Schedule("g1")
	err := s.Flush(context.Background())
	if err == nil || !errors.Is(err, rec.err) {
		t.Fatalf("expected disk full error, got %v", err)
	}
}

func TestFailedBackgroundSaveIsLogged(t *testing.T) {
	rec := &recorder{err: errors.New("locked")}
	s := New(time.Millisecond, rec.save, slog.Default())

	s.Schedule("g1")
	waitFor(t, func() bool { return rec.count("g1") == 1 })
	if err := s.Flush(context.Background()); err != nil {
		t.Errorf("background failures should not surface from flush: %v", err)
	}
}
