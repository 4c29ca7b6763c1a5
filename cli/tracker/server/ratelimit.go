package server

import "time"

// tokenBucket ограничивает количество записей с одного соединения в окне.
// Нулевой лимит отключает ограничение.
type tokenBucket struct {
	window time.Duration
	limit  int
	start  time.Time
	count  int
}

func newTokenBucket(window time.Duration, limit int) *tokenBucket {
	return &tokenBucket{window: window, limit: limit}
}

func (b *tokenBucket) Allow(now time.Time) bool {
	if b.limit <= 0 {
		return true
	}
	if b.start.IsZero() || now.Sub(b.start) >= b.window {
		b.start = now
		b.count = 0
	}
	if b.count >= b.limit {
		return false
	}
	b.count++
	return true
}
