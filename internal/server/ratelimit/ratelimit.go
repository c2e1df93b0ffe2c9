// Package ratelimit provides per-client, per-endpoint request throttling
// backed by golang.org/x/time/rate token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucket pairs a token bucket with its last use, for eviction.
type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket // client:endpoint:method -> bucket
	config      *Config
	idleTTL     time.Duration
	cleanupStop chan struct{}
	cleanupDone chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	l := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
		idleTTL: time.Hour,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupStop = make(chan struct{})
		l.cleanupDone = make(chan struct{})
		go l.cleanup(config.CleanupInterval)
	}

	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	ep := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if ep == nil {
		ep = &EndpointConfig{
			Path:   "*",
			Method: method,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}

	// Unlimited endpoint (e.g., health check)
	if ep.Limit <= 0 || ep.Window <= 0 {
		return true, Info{Allowed: true}
	}

	// Buckets are shared across every path matching the same pattern.
	key := clientID + ":" + ep.Path + ":" + method
	now := l.now()
	lim := l.getLimiter(key, ep, now)

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	perSecond := float64(lim.Limit())
	burst := float64(lim.Burst())

	info := Info{
		Allowed:   allowed,
		Limit:     ep.Limit,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetTime: now.Add(secondsToDuration((burst - tokens) / perSecond)),
	}
	if !allowed {
		info.RetryAfter = secondsToDuration((1 - tokens) / perSecond)
	}
	return allowed, info
}

// getLimiter gets or creates the token bucket for key.
func (l *Limiter) getLimiter(key string, ep *EndpointConfig, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		b.lastAccess = now
		return b.limiter
	}

	burst := ep.Burst
	if burst <= 0 {
		burst = ep.Limit
	}
	every := rate.Limit(float64(ep.Limit) / ep.Window.Seconds())
	b := &bucket{limiter: rate.NewLimiter(every, burst), lastAccess: now}
	l.buckets[key] = b
	return b.limiter
}

func (l *Limiter) cleanup(interval time.Duration) {
	defer close(l.cleanupDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.cleanupStop:
			return
		}
	}
}

// evictIdle removes buckets that have not been used within idleTTL.
func (l *Limiter) evictIdle() {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop stops the cleanup goroutine and waits for it to exit. Safe to call
// more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupStop != nil {
			close(l.cleanupStop)
			<-l.cleanupDone
		}
	})
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(math.Round(s * float64(time.Second)))
}
