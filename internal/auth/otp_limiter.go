package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// otpLimiter caps how often a single user can request a fresh OTP:
// 5 requests per hour, matching the abuse window the product team set.
type otpLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newOTPLimiter() *otpLimiter {
	return &otpLimiter{limiters: make(map[string]*rate.Limiter)}
}

func (l *otpLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(12*time.Minute), 5)
		l.limiters[userID] = lim
	}
	return lim.Allow()
}
