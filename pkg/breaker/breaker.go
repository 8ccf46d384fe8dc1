package breaker

import (
	"errors"
	"sync"
	"time"
)

type state uint8

const (
	closed state = iota + 1
	open
	halfOpen
)

var ErrOpen = errors.New("circuit breaker is open")

// Breaker guards calls against a flapping remote endpoint. While closed it
// tracks the failure ratio over a sliding window of recent calls; once the
// ratio crosses the threshold it opens and fails fast until the cooldown
// elapses, then lets calls through half-open until enough succeed in a row.
type Breaker struct {
	mu sync.Mutex

	state           state
	window          []bool
	pos             int
	threshold       float64
	cooldown        time.Duration
	lastAttemptedAt time.Time

	// successive successes required to close again from half-open
	recovery     int
	successCount int
}

func New(windowSize int, cooldown time.Duration, threshold float64, recovery int) *Breaker {
	return &Breaker{
		state:     closed,
		window:    make([]bool, windowSize),
		cooldown:  cooldown,
		threshold: threshold,
		recovery:  recovery,
	}
}

func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == open {
		if time.Since(b.lastAttemptedAt) <= b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = halfOpen
		b.successCount = 0
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.window[b.pos] = err != nil
	b.pos = (b.pos + 1) % len(b.window)

	if b.state == halfOpen {
		if err != nil {
			b.state = open
			b.successCount = 0
			b.lastAttemptedAt = time.Now()
		} else if b.successCount++; b.successCount > b.recovery {
			b.reset()
		}
		return err
	}

	fails := 0
	for _, failed := range b.window {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(b.window)) >= b.threshold {
		b.state = open
		b.successCount = 0
		b.lastAttemptedAt = time.Now()
	}

	return err
}

func (b *Breaker) reset() {
	for i := range b.window {
		b.window[i] = false
	}
	b.pos = 0
	b.successCount = 0
	b.state = closed
}
