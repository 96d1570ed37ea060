package model

import "time"

// VerificationEntry is a cached claim with its verification outcome.
// Entries are owned by the memory store; callers receive copies.
type VerificationEntry struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Status     Status    `json:"status"`
	Confidence float64   `json:"confidence"`
	Sources    []string  `json:"sources"`
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at the given instant
func (e *VerificationEntry) Expired(now time.Time) bool {
	return e.ExpiresAt.Before(now)
}

// Match is a stored verification that matched a lookup text
type Match struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Status     Status    `json:"status"`
	Confidence float64   `json:"confidence"`
	Sources    []string  `json:"sources"`
	Timestamp  time.Time `json:"timestamp"`
	Similarity float64   `json:"similarity"`
}

// Stats is a point-in-time view of the memory store
type Stats struct {
	TotalEntries    int            `json:"total_entries"`
	Sessions        int            `json:"sessions"`
	CompareCacheLen int            `json:"compare_cache_size"`
	ByStatus        map[Status]int `json:"by_status"`
}
