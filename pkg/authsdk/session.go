package authsdk

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultRefreshInterval keeps a 10 minute access token alive with margin.
const DefaultRefreshInterval = 8 * time.Minute

// Session owns the background refresh of a Client's access cookie. At most
// one refresher runs per session, it stops on Logout, on Stop, when its
// context ends, or on the first failed refresh.
type Session struct {
	Client *Client

	// OnRefreshError is called once with the error that stopped the
	// refresher. Optional.
	OnRefreshError func(error)

	mu      sync.Mutex
	current *RefreshHandle
}

// NewSession wraps c.
func NewSession(c *Client) *Session {
	return &Session{Client: c}
}

// RefreshHandle controls one running refresher.
type RefreshHandle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Stop cancels the refresher and waits for it to exit. Safe to call twice.
func (h *RefreshHandle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed when the refresher has exited.
func (h *RefreshHandle) Done() <-chan struct{} { return h.done }

// Err returns the refresh error that stopped the refresher, if any.
func (h *RefreshHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// StartAutoRefresh refreshes the access cookie every interval until stopped.
// Starting again replaces the previous refresher.
func (s *Session) StartAutoRefresh(ctx context.Context, every time.Duration) *RefreshHandle {
	if every <= 0 {
		every = DefaultRefreshInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &RefreshHandle{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	prev := s.current
	s.current = h
	s.mu.Unlock()

	go s.run(ctx, h, every)

	// Outside s.mu: prev.Stop waits on release, which takes the lock.
	if prev != nil {
		prev.Stop()
	}
	return h
}

func (s *Session) run(ctx context.Context, h *RefreshHandle, every time.Duration) {
	defer close(h.done)
	defer s.release(h)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Client.RefreshToken(ctx); err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return
				}
				h.mu.Lock()
				h.err = err
				h.mu.Unlock()
				if s.OnRefreshError != nil {
					s.OnRefreshError(err)
				}
				return
			}
		}
	}
}

// release forgets h if it is still the current refresher.
func (s *Session) release(h *RefreshHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == h {
		s.current = nil
	}
}

// Stop halts the running refresher, if any.
func (s *Session) Stop() {
	s.mu.Lock()
	h := s.current
	s.mu.Unlock()
	if h != nil {
		h.Stop()
	}
}

// Running reports whether a refresher is active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Logout stops the refresher and clears the session on the server.
func (s *Session) Logout(ctx context.Context) (*MessageResponse, error) {
	s.Stop()
	return s.Client.Logout(ctx)
}
