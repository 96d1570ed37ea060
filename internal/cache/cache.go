package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/veritas/internal/model"
)

// Cache stores opaque values with a time to live
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a reference URL. Fragments are ignored.
func Key(rawURL string) string {
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		u.Fragment = ""
		u.Host = strings.ToLower(u.Host)
		rawURL = u.String()
	}
	hash := sha256.Sum256([]byte(rawURL))
	return "veritas:page:v1:" + hex.EncodeToString(hash[:])
}

// Pages caches fetched reference pages by URL
type Pages struct {
	store Cache
	ttl   time.Duration
}

// NewPages wraps store; ttl <= 0 defers to the layer defaults
func NewPages(store Cache, ttl time.Duration) *Pages {
	return &Pages{store: store, ttl: ttl}
}

// Get returns the cached page for rawURL. Undecodable entries count as misses.
func (p *Pages) Get(rawURL string) (*model.SourcePage, bool) {
	if p == nil || p.store == nil {
		return nil, false
	}
	data, ok := p.store.Get(Key(rawURL))
	if !ok {
		return nil, false
	}
	var page model.SourcePage
	if err := json.Unmarshal(data, &page); err != nil {
		_ = p.store.Delete(Key(rawURL))
		return nil, false
	}
	return &page, true
}

// Put stores page under rawURL
func (p *Pages) Put(rawURL string, page *model.SourcePage) error {
	if p == nil || p.store == nil || page == nil {
		return nil
	}
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}
	return p.store.Set(Key(rawURL), data, p.ttl)
}
