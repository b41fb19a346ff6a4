package app

import (
	"sync"
	"time"
)

// Timer is a handle to a repeating callback.
type Timer interface {
	Stop()
}

// Scheduler starts repeating callbacks. The controller owns at most one live Timer.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Timer
}

// TickerScheduler runs callbacks from a time.Ticker goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		quit:   make(chan struct{}),
	}
	go t.run(fn)
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	quit   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) run(fn func()) {
	defer t.ticker.Stop()
	for {
		select {
		case <-t.quit:
			return
		case <-t.ticker.C:
			fn()
		}
	}
}

// Stop never blocks, so it is safe to call while holding the controller lock.
func (t *tickerTimer) Stop() {
	t.once.Do(func() { close(t.quit) })
}

// ManualScheduler fires callbacks only when told to. Used by tests and scripted clients.
type ManualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Every(_ time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Fire runs one tick on every timer that has not been stopped.
func (s *ManualScheduler) Fire() {
	for _, t := range s.snapshot() {
		if !t.isStopped() {
			t.fn()
		}
	}
}

// FireStopped runs the callbacks of stopped timers, as if their ticks were already
// in flight when Stop was called.
func (s *ManualScheduler) FireStopped() {
	for _, t := range s.snapshot() {
		if t.isStopped() {
			t.fn()
		}
	}
}

func (s *ManualScheduler) snapshot() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*manualTimer(nil), s.timers...)
}

// Live reports how many timers are still running.
func (s *ManualScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

type manualTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
