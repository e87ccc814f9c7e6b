package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vncsmyrnk/patients/internal/core/domain"
)

// Limiter is a fixed-window counter per key, kept in process memory.
type Limiter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*window
}

type window struct {
	count int
	end   time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (l *Limiter) CheckAndIncrement(_ context.Context, key string, limit int, period time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.end) {
		l.evictExpired(now)
		l.windows[key] = &window{count: 1, end: now.Add(period)}
		return nil
	}

	if w.count >= limit {
		return domain.ErrRateLimitExceeded
	}
	w.count++
	return nil
}

// evictExpired drops finished windows so unique keys do not accumulate.
func (l *Limiter) evictExpired(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.end) {
			delete(l.windows, k)
		}
	}
}
