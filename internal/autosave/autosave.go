// Package autosave coalesces bursts of game mutations into a single write
// to the durable store.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// SaveFunc persists the current state of one game.
type SaveFunc func(ctx context.Context, id string) error

type pendingSave struct {
	timer *time.Timer
}

// Saver runs a SaveFunc for a game once no mutation has been scheduled for
// it within the delay. Failures are logged and never reach the caller of
// Schedule.
type Saver struct {
	delay   time.Duration
	timeout time.Duration
	save    SaveFunc
	logger  *slog.Logger

	mu       sync.Mutex
	pending  map[string]*pendingSave
	inflight sync.WaitGroup
}

func New(delay time.Duration, save SaveFunc, logger *slog.Logger) *Saver {
	return &Saver{
		delay:   delay,
		timeout: 10 * time.Second,
		save:    save,
		logger:  logger,
		pending: make(map[string]*pendingSave),
	}
}

// Schedule (re)arms the save timer for id.
func (s *Saver) Schedule(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
	}
	p := &pendingSave{}
	p.timer = time.AfterFunc(s.delay, func() { s.fire(id, p) })
	s.pending[id] = p
}

// Forget drops a pending save, for example after the game was deleted.
func (s *Saver) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

// Pending returns the number of games waiting to be saved.
func (s *Saver) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush saves every pending game now and waits for saves already running.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id, p := range s.pending {
		p.timer.Stop()
		ids = append(ids, id)
	}
	clear(s.pending)
	s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := s.save(ctx, id); err != nil {
			s.logger.Error("autosave flush failed", "game_id", id, "error", err)
			errs = append(errs, err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}
	return errors.Join(errs...)
}

func (s *Saver) fire(id string, p *pendingSave) {
	s.mu.Lock()
	if s.pending[id] != p {
		// Rescheduled or forgotten after the timer fired.
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.save(ctx, id); err != nil {
		s.logger.Error("autosave failed", "game_id", id, "error", err)
		return
	}
	s.logger.Debug("autosaved game", "game_id", id, "duration_ms", time.Since(start).Milliseconds())
}
