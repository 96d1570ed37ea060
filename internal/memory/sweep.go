package memory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/telemetry"
)

// Start launches the background sweeps: expiry every CacheExpiration/2 and a
// compare-cache reset every CacheExpiration. It is a no-op if already running.
// Sweeps stop when ctx is cancelled or Stop is called.
func (s *Store) Start(ctx context.Context) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go s.every(ctx, s.cfg.CacheExpiration/2, func() { s.Sweep() })
	go s.every(ctx, s.cfg.CacheExpiration, s.ResetCompareCache)
}

// Stop cancels the sweeps and waits for them to exit. Safe to call repeatedly.
func (s *Store) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil
}

func (s *Store) every(ctx context.Context, interval time.Duration, fn func()) {
	defer s.wg.Done()

	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// Sweep removes entries whose expiry has passed and prunes empty sessions.
// It returns the number of entries removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if !e.Expired(now) {
			continue
		}
		delete(s.entries, id)
		if bucket, ok := s.sessions[e.SessionID]; ok {
			delete(bucket, id)
			if len(bucket) == 0 {
				delete(s.sessions, e.SessionID)
			}
		}
		removed++
	}

	if removed > 0 {
		s.logger.Debug("swept expired verifications", zap.Int("removed", removed))
	}
	telemetry.MemoryEntries.Set(float64(len(s.entries)))
	return removed
}

// ResetCompareCache drops all memoized text comparisons
func (s *Store) ResetCompareCache() {
	s.compare.Flush()
}
