package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter — скользящее окно запросов по IP, все в памяти.
// Достаточно для одного инстанса; общий лимит на кластер потребовал бы
// внешнего хранилища.
type RateLimiter struct {
	requests map[string][]time.Time
	mutex    sync.RWMutex
	limit    int
	window   time.Duration
	done     chan struct{}
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop останавливает фоновую очистку. Повторный вызов паникует.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		rl.mutex.Lock()
		defer rl.mutex.Unlock()

		now := time.Now()
		valid := pruneOld(rl.requests[clientIP], now.Add(-rl.window))

		if len(valid) >= rl.limit {
			rl.requests[clientIP] = valid
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		rl.requests[clientIP] = append(valid, now)

		c.Next()
	}
}

// cleanupLoop периодически выбрасывает IP без свежих запросов, чтобы
// карта не росла бесконечно. Интервал привязан к окну лимита.
func (rl *RateLimiter) cleanupLoop() {
	interval := rl.window
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := time.Now().Add(-rl.window)
	for ip, requests := range rl.requests {
		valid := pruneOld(requests, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, ip)
		} else {
			rl.requests[ip] = valid
		}
	}
}

func pruneOld(requests []time.Time, cutoff time.Time) []time.Time {
	var valid []time.Time
	for _, reqTime := range requests {
		if reqTime.After(cutoff) {
			valid = append(valid, reqTime)
		}
	}
	return valid
}
