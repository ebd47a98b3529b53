package dhcpd

import (
	"sync"
	"time"
)

// RateLimiter is a token-bucket guard against DISCOVER floods: a global
// bucket plus one bucket per client hardware address. It never produces
// a NAK — a rejected request is dropped exactly like a decode failure
// (§7's propagation policy), since NAKs are a handler decision only.
type RateLimiter struct {
	mu             sync.Mutex
	globalLimit    int
	perMACLimit    int
	globalTokens   int
	perMAC         map[[6]byte]*macBucket
	lastRefill     time.Time
	refillInterval time.Duration
}

type macBucket struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter builds a limiter with the given global and per-MAC
// requests-per-second budgets; every call to Allow spends a token,
// whatever the packet's message type. Non-positive limits fall back to
// conservative defaults.
func NewRateLimiter(globalLimit, perMACLimit int) *RateLimiter {
	if globalLimit <= 0 {
		globalLimit = 100
	}
	if perMACLimit <= 0 {
		perMACLimit = 10
	}
	return &RateLimiter{
		globalLimit:    globalLimit,
		perMACLimit:    perMACLimit,
		globalTokens:   globalLimit,
		perMAC:         make(map[[6]byte]*macBucket),
		lastRefill:     time.Now(),
		refillInterval: time.Second,
	}
}

// Allow reports whether a request from chaddr may proceed to the handler.
func (r *RateLimiter) Allow(chaddr [6]byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.refill(now)

	if r.globalTokens <= 0 {
		return false
	}

	bucket, exists := r.perMAC[chaddr]
	if !exists {
		bucket = &macBucket{tokens: r.perMACLimit, lastSeen: now}
		r.perMAC[chaddr] = bucket
	}
	if bucket.tokens <= 0 {
		return false
	}

	r.globalTokens--
	bucket.tokens--
	bucket.lastSeen = now
	return true
}

func (r *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(r.lastRefill)
	if elapsed < r.refillInterval {
		return
	}
	intervals := int(elapsed / r.refillInterval)
	if intervals <= 0 {
		return
	}
	r.lastRefill = now

	r.globalTokens += r.globalLimit * intervals
	if r.globalTokens > r.globalLimit {
		r.globalTokens = r.globalLimit
	}

	staleThreshold := 30 * time.Second
	for mac, bucket := range r.perMAC {
		if now.Sub(bucket.lastSeen) > staleThreshold {
			delete(r.perMAC, mac)
			continue
		}
		bucket.tokens += r.perMACLimit * intervals
		if bucket.tokens > r.perMACLimit {
			bucket.tokens = r.perMACLimit
		}
	}
}

// Stats reports the current global token count and tracked MAC count.
func (r *RateLimiter) Stats() (globalTokens, trackedMACs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.globalTokens, len(r.perMAC)
}
