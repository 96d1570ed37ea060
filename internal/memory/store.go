// Package memory implements the session-scoped verification memory: a TTL
// bound store of verified claims, deduplicated by meaning rather than by key.
package memory

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/telemetry"
)

// ErrEmptyText is returned when storing a verification without text
var ErrEmptyText = errors.New("verification text is empty")

// Scorer scores a reference text against candidates, one score per candidate.
// *similarity.Engine satisfies it.
type Scorer interface {
	ScoreAll(reference string, candidates []string) []float64
}

// Store holds verification entries per session.
// All mutations happen under mu, so the duplicate check and insert of
// AddVerification are atomic with respect to concurrent callers.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*model.VerificationEntry
	sessions map[string]map[string]struct{}

	compare *gocache.Cache
	scorer  Scorer
	cfg     model.MemoryConfig
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	lifecycle sync.Mutex
	cancel    func()
	wg        sync.WaitGroup
}

// Option configures a Store
type Option func(*Store)

// WithSimilarity enables similarity-based lookup and deduplication
func WithSimilarity(scorer Scorer) Option {
	return func(s *Store) {
		s.scorer = scorer
	}
}

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty store. Background sweeps do not run until Start.
func New(cfg model.MemoryConfig, opts ...Option) *Store {
	defaults := model.DefaultConfig().Memory
	if cfg.CacheExpiration <= 0 {
		cfg.CacheExpiration = defaults.CacheExpiration
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = defaults.DefaultTTL
	}
	if cfg.MediumSimilarity <= 0 {
		cfg.MediumSimilarity = defaults.MediumSimilarity
	}
	if cfg.TextMatchFactor <= 0 {
		cfg.TextMatchFactor = defaults.TextMatchFactor
	}

	s := &Store{
		entries:  make(map[string]*model.VerificationEntry),
		sessions: make(map[string]map[string]struct{}),
		// no janitor: the compare sweep flushes it wholesale
		compare: gocache.New(gocache.NoExpiration, 0),
		cfg:     cfg,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddVerification stores a verification for text in the session and returns
// its id. If the session already holds the same claim (exact text, or a
// similarity at or above the medium threshold) that entry is overwritten in
// place and its id is returned. ttl <= 0 uses the configured default.
func (s *Store) AddVerification(text string, status model.Status, confidence float64, sources []string, sessionID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	confidence = clamp01(confidence)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if existing := s.findDuplicateLocked(text, sessionID, now); existing != nil {
		existing.Status = status
		existing.Confidence = confidence
		existing.Sources = copyStrings(sources)
		existing.Timestamp = now
		existing.ExpiresAt = now.Add(ttl)

		s.logger.Debug("merged verification into existing entry",
			zap.String("id", existing.ID),
			zap.String("session", sessionID),
			zap.String("status", string(status)))
		return existing.ID, nil
	}

	entry := &model.VerificationEntry{
		ID:         s.newID(),
		Text:       text,
		Status:     status,
		Confidence: confidence,
		Sources:    copyStrings(sources),
		Timestamp:  now,
		SessionID:  sessionID,
		ExpiresAt:  now.Add(ttl),
	}

	s.entries[entry.ID] = entry
	bucket, ok := s.sessions[sessionID]
	if !ok {
		bucket = make(map[string]struct{})
		s.sessions[sessionID] = bucket
	}
	bucket[entry.ID] = struct{}{}
	telemetry.MemoryEntries.Set(float64(len(s.entries)))

	s.logger.Debug("stored verification",
		zap.String("id", entry.ID),
		zap.String("session", sessionID),
		zap.String("status", string(status)))
	return entry.ID, nil
}

// findDuplicateLocked returns the live session entry that denotes the same claim
func (s *Store) findDuplicateLocked(text, sessionID string, now time.Time) *model.VerificationEntry {
	live := s.liveEntriesLocked(sessionID, now)
	if len(live) == 0 {
		return nil
	}

	for _, e := range live {
		if sameText(e.Text, text) {
			return e
		}
	}

	if s.scorer == nil {
		return nil
	}

	scores, ok := s.scoreAll(text, live)
	if !ok {
		return nil
	}

	best, bestScore := -1, 0.0
	for i, score := range scores {
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 && bestScore >= s.cfg.MediumSimilarity {
		return live[best]
	}
	return nil
}

// FindVerification returns the best stored verification in the session whose
// text matches at or above threshold, or nil. Without a similarity scorer, or
// when it finds nothing, a token-overlap search runs at a reduced threshold.
func (s *Store) FindVerification(text, sessionID string, threshold float64) *model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := s.liveEntriesLocked(sessionID, s.now())
	if len(live) == 0 {
		return nil
	}

	if s.scorer != nil {
		if scores, ok := s.scoreAll(text, live); ok {
			best, bestScore := -1, 0.0
			for i, score := range scores {
				if score > bestScore {
					best, bestScore = i, score
				}
			}
			if best >= 0 && bestScore >= threshold {
				return toMatch(live[best], bestScore)
			}
		}
	}

	return s.textSearchLocked(text, live, threshold*s.cfg.TextMatchFactor)
}

// GetSessionVerifications lists live session entries, most recent first.
// limit <= 0 returns everything after offset. When statuses are given only
// entries with one of them are returned.
func (s *Store) GetSessionVerifications(sessionID string, offset, limit int, statuses ...model.Status) []model.VerificationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := s.liveEntriesLocked(sessionID, s.now())

	filtered := live[:0:0]
	for _, e := range live {
		if len(statuses) > 0 && !containsStatus(statuses, e.Status) {
			continue
		}
		filtered = append(filtered, e)
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return []model.VerificationEntry{}
	}
	filtered = filtered[offset:]
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	out := make([]model.VerificationEntry, len(filtered))
	for i, e := range filtered {
		out[i] = copyEntry(e)
	}
	return out
}

// SearchSimilarVerifications ranks session entries by similarity to text
func (s *Store) SearchSimilarVerifications(text, sessionID string, limit int, minSimilarity float64) []model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := s.liveEntriesLocked(sessionID, s.now())
	if len(live) == 0 {
		return []model.Match{}
	}

	scores, ok := s.scoreAll(text, live)
	if !ok {
		scores = make([]float64, len(live))
		for i, e := range live {
			scores[i] = s.textScore(text, e.Text)
		}
	}

	matches := make([]model.Match, 0, len(live))
	for i, score := range scores {
		if score >= minSimilarity {
			matches = append(matches, *toMatch(live[i], score))
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// ClearSession removes every entry of a session
func (s *Store) ClearSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.sessions[sessionID] {
		delete(s.entries, id)
	}
	delete(s.sessions, sessionID)
	telemetry.MemoryEntries.Set(float64(len(s.entries)))
}

// ClearAll removes every entry and resets the compare cache
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*model.VerificationEntry)
	s.sessions = make(map[string]map[string]struct{})
	s.compare.Flush()
	telemetry.MemoryEntries.Set(0)
}

// GetStats reports store size and status distribution
func (s *Store) GetStats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.Stats{
		TotalEntries:    len(s.entries),
		Sessions:        len(s.sessions),
		CompareCacheLen: s.compare.ItemCount(),
		ByStatus:        make(map[model.Status]int),
	}
	for _, e := range s.entries {
		stats.ByStatus[e.Status]++
	}
	return stats
}

// liveEntriesLocked returns unexpired session entries, most recent first
func (s *Store) liveEntriesLocked(sessionID string, now time.Time) []*model.VerificationEntry {
	bucket := s.sessions[sessionID]
	if len(bucket) == 0 {
		return nil
	}

	live := make([]*model.VerificationEntry, 0, len(bucket))
	for id := range bucket {
		e, ok := s.entries[id]
		if !ok || e.Expired(now) {
			continue
		}
		live = append(live, e)
	}

	sort.Slice(live, func(i, j int) bool {
		if live[i].Timestamp.Equal(live[j].Timestamp) {
			return live[i].ID < live[j].ID
		}
		return live[i].Timestamp.After(live[j].Timestamp)
	})
	return live
}

// scoreAll runs the similarity scorer, reporting false if it is absent or misbehaves
func (s *Store) scoreAll(text string, entries []*model.VerificationEntry) (scores []float64, ok bool) {
	if s.scorer == nil {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("similarity scoring failed, using text search", zap.Any("panic", r))
			scores, ok = nil, false
		}
	}()

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}

	scores = s.scorer.ScoreAll(text, texts)
	if len(scores) != len(texts) {
		s.logger.Warn("similarity scorer returned wrong number of scores",
			zap.Int("expected", len(texts)), zap.Int("got", len(scores)))
		return nil, false
	}
	return scores, true
}

func toMatch(e *model.VerificationEntry, similarity float64) *model.Match {
	return &model.Match{
		ID:         e.ID,
		Text:       e.Text,
		Status:     e.Status,
		Confidence: e.Confidence,
		Sources:    copyStrings(e.Sources),
		Timestamp:  e.Timestamp,
		Similarity: similarity,
	}
}

func copyEntry(e *model.VerificationEntry) model.VerificationEntry {
	out := *e
	out.Sources = copyStrings(e.Sources)
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func containsStatus(statuses []model.Status, status model.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
