package ratelimit

import (
	"sync"
	"time"
)

// ClientConfig configures a ClientLimiter.
type ClientConfig struct {
	PerMinute     float64       // sustained requests per minute per client
	Burst         float64       // bucket capacity
	CleanupPeriod time.Duration // how often idle clients are forgotten
}

// ClientLimiter keeps one Bucket per client key, typically the client IP.
// Idle buckets are dropped by a background sweep until Stop is called.
type ClientLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
	cfg     ClientConfig
	now     func() time.Time

	onDrop   func()
	onUpdate func(clients int)

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewClientLimiter creates a limiter and starts its cleanup loop.
func NewClientLimiter(cfg ClientConfig) *ClientLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	cl := &ClientLimiter{
		buckets: make(map[string]*Bucket),
		cfg:     cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go cl.cleanupLoop()
	return cl
}

// OnDrop registers a callback for rejected requests. Call before use.
func (cl *ClientLimiter) OnDrop(fn func()) {
	cl.onDrop = fn
}

// OnUpdate registers a callback receiving the tracked client count after
// each sweep. Call before use.
func (cl *ClientLimiter) OnUpdate(fn func(clients int)) {
	cl.onUpdate = fn
}

func (cl *ClientLimiter) bucket(key string) *Bucket {
	cl.mu.RLock()
	b, ok := cl.buckets[key]
	cl.mu.RUnlock()
	if ok {
		return b
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if b, ok = cl.buckets[key]; !ok {
		b = newBucket(cl.cfg.Burst, cl.cfg.PerMinute/60, cl.now)
		cl.buckets[key] = b
	}
	return b
}

// Allow reports whether key may make a request now and, when it may not,
// how long it should wait. An empty key is never limited.
func (cl *ClientLimiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		return true, 0
	}
	b := cl.bucket(key)
	if b.Allow() {
		return true, 0
	}
	if cl.onDrop != nil {
		cl.onDrop()
	}
	return false, b.RetryAfter()
}

// Clients returns the number of tracked clients.
func (cl *ClientLimiter) Clients() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.buckets)
}

// sweep forgets every client whose bucket has refilled.
func (cl *ClientLimiter) sweep() {
	cl.mu.Lock()
	for key, b := range cl.buckets {
		if b.IsFull() {
			delete(cl.buckets, key)
		}
	}
	n := len(cl.buckets)
	cl.mu.Unlock()

	if cl.onUpdate != nil {
		cl.onUpdate(n)
	}
}

func (cl *ClientLimiter) cleanupLoop() {
	ticker := time.NewTicker(cl.cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cl.stopCh:
			return
		case <-ticker.C:
			cl.sweep()
		}
	}
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (cl *ClientLimiter) Stop() {
	cl.stopOnce.Do(func() { close(cl.stopCh) })
}
