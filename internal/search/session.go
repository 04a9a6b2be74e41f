package search

import (
	"context"
	"sync"

	"github.com/harrison/findid/internal/models"
	"github.com/harrison/findid/internal/project"
)

// Session publishes the latest search result for an interactive front end.
// Searches run without holding the lock; the lock only guards the swap. Each
// Start takes a new generation, and a finishing search is published only if
// no newer one was started in the meantime.
type Session struct {
	engine *Engine

	mu         sync.Mutex
	generation uint64
	latest     *Result
	latestErr  error
	cancel     context.CancelFunc
}

// NewSession wraps engine.
func NewSession(engine *Engine) *Session {
	return &Session{engine: engine}
}

// Start runs a search in the background and cancels any search still in
// flight. done, if not nil, is called with the outcome after publishing.
func (s *Session) Start(ctx context.Context, query string, root project.ValidatedPath, mode models.SearchMode, done func(*Result, bool, error)) {
	ctx, gen := s.begin(ctx)
	go func() {
		result, err := s.engine.Search(ctx, query, root, mode)
		published := s.publish(gen, result, err)
		if done != nil {
			done(result, published, err)
		}
	}()
}

func (s *Session) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.generation++
	return ctx, s.generation
}

func (s *Session) publish(gen uint64, result *Result, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.latest = result
	s.latestErr = err
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

// Latest returns the most recently published result, or nil.
func (s *Session) Latest() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.latestErr
}

// Close cancels any search in flight. A cancelled search is still published
// if nothing newer was started; the session stays usable.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
