package ratelimit

import (
	"time"

	"github.com/sirupsen/logrus"
)

// X API v2 budgets, per 15-minute window
const (
	AppRateLimit  = 300 // app limit: 300 requests per 15 min
	UserRateLimit = 900 // user limit: 900 requests per 15 min

	Window = 15 * time.Minute
)

// AppScope acquires against the application window only, for requests
// that are not attributable to a specific user.
const AppScope int64 = 0

type userWindow struct {
	count       int
	windowStart time.Time
}

// Limiter enforces the app-wide and per-user request budgets. The
// app-wide window is a sliding log of request timestamps; per-user
// windows are reset-based counters. When a window is exhausted Acquire
// sleeps the caller until there is room again, so the limiter delays
// but never fails.
//
// A Limiter is intended for use by a single dispatch loop at a time;
// it is not safe for concurrent use.
type Limiter struct {
	appLimit  int
	userLimit int
	window    time.Duration

	events []time.Time
	users  map[int64]*userWindow

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a limiter with the standard X API budgets.
func New() *Limiter {
	return NewWithLimits(AppRateLimit, UserRateLimit, Window)
}

// NewWithLimits creates a limiter with explicit budgets, used by tests
// to exercise window boundaries without hundreds of acquisitions.
func NewWithLimits(appLimit, userLimit int, window time.Duration) *Limiter {
	return &Limiter{
		appLimit:  appLimit,
		userLimit: userLimit,
		window:    window,
		users:     make(map[int64]*userWindow),
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// WithClock overrides the limiter's time source and sleep function.
// Tests use it to simulate the passage of time.
func (l *Limiter) WithClock(now func() time.Time, sleep func(time.Duration)) *Limiter {
	l.now = now
	l.sleep = sleep
	return l
}

// Acquire blocks until there is quota room for one request in the given
// scope, then records the consumption. Every call that performs a
// network request against the X API must acquire exactly once per
// request attempt. AppScope counts only against the application window;
// a user id counts against both.
func (l *Limiter) Acquire(userID int64) {
	now := l.now()
	l.prune(now)
	l.waitApp(now)

	if userID != AppScope {
		l.waitUser(userID)
	}

	now = l.now()
	l.events = append(l.events, now)
	if userID != AppScope {
		l.users[userID].count++
	}
}

// prune drops app-window timestamps older than the trailing window.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.events[:0]
	for _, ts := range l.events {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.events = kept
}

// waitApp sleeps until the app-wide sliding window has room. A single
// wait is sufficient: the window slides forward by exactly the deficit.
func (l *Limiter) waitApp(now time.Time) {
	if len(l.events) < l.appLimit {
		return
	}

	logrus.Warn("App rate limit reached. Waiting until reset...")
	wait := l.window - now.Sub(l.events[0])
	if wait > 0 {
		l.sleep(wait)
	}
	l.prune(l.now())
}

// waitUser sleeps out the remaining span when a user window is
// exhausted, then resets it. The per-user window is deliberately a
// reset-based counter, not a sliding log: a burst exactly at the limit
// always waits the full remaining span.
func (l *Limiter) waitUser(userID int64) {
	now := l.now()
	w, ok := l.users[userID]
	if !ok {
		w = &userWindow{windowStart: now}
		l.users[userID] = w
		return
	}

	// Stale window observed at a check point resets without waiting.
	if now.Sub(w.windowStart) >= l.window {
		w.count = 0
		w.windowStart = now
		return
	}

	if w.count >= l.userLimit {
		logrus.Warnf("User %d rate limit reached. Waiting until reset...", userID)
		wait := l.window - now.Sub(w.windowStart)
		if wait > 0 {
			l.sleep(wait)
		}
		w.count = 0
		w.windowStart = l.now()
	}
}
