// Package maintenance caches the platform maintenance flag read from settings.
//
// The flag is refreshed at most once per TTL. When the settings store cannot
// be read the cache fails open: the request is allowed, the error logged and
// the store is not asked again until the TTL elapses.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

const DefaultMessage = "A plataforma está em manutenção. Tente novamente mais tarde."

// State is the cached view of the maintenance settings.
type State struct {
	Enabled bool
	Message string
}

type Cache struct {
	settings store.SettingsStore
	ttl      time.Duration
	now      func() time.Time
	group    singleflight.Group

	mu        sync.Mutex
	state     State
	fetchedAt time.Time
	valid     bool
	gen       uint64
}

func NewCache(settings store.SettingsStore, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{settings: settings, ttl: ttl, now: time.Now}
}

// SetClock replaces the time source; tests only.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Current returns the maintenance state, reading the store when the cached
// value is older than the TTL. Concurrent misses share a single read.
func (c *Cache) Current(ctx context.Context) State {
	if st, ok := c.cached(); ok {
		return st
	}
	v, _, _ := c.group.Do("settings", func() (any, error) {
		return c.refresh(ctx), nil
	})
	return v.(State)
}

func (c *Cache) cached() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.state, true
	}
	return State{}, false
}

// refresh reads the store without holding mu. A failed read is cached as
// "off" for the rest of the window so an outage costs one query per TTL.
func (c *Cache) refresh(ctx context.Context) State {
	if st, ok := c.cached(); ok {
		return st
	}
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	var st State
	s, err := c.settings.GetSettings(ctx)
	if err != nil {
		log.Warn().Err(err).Dur("retry_in", c.ttl).Msg("maintenance flag unavailable, allowing traffic")
	} else {
		msg := s.MaintenanceMessage
		if msg == "" {
			msg = DefaultMessage
		}
		st = State{Enabled: s.MaintenanceMode, Message: msg}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// an Invalidate during the read means the value may already be stale
	if c.gen == gen {
		c.state = st
		c.fetchedAt = c.now()
		c.valid = true
	}
	return st
}

// Enabled reports whether maintenance mode is on.
func (c *Cache) Enabled(ctx context.Context) bool {
	return c.Current(ctx).Enabled
}

// Invalidate forces the next read to hit the store.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.gen++
	c.mu.Unlock()
}
