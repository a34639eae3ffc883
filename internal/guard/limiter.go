package guard

import (
  "sync"
  "time"
)

const (
  defaultBaseCooldown = 10 * time.Second
  defaultMaxCooldown  = 10 * time.Minute
)

type LimiterConfig struct {
  BaseCooldown time.Duration
  MaxCooldown  time.Duration
}

// Limiter applies a per-partition cooldown between upstream calls.
// The cooldown doubles with consecutive failures for that partition
// and resets to baseline on success. A refused call is advisory
// backpressure: the caller skips the partition for the current cycle.
type Limiter struct {
  config LimiterConfig

  mu      sync.Mutex
  entries map[string]*limiterEntry

  now func() time.Time
}

type limiterEntry struct {
  lastCall time.Time
  failures int
}

func NewLimiter(config LimiterConfig) *Limiter {
  if config.BaseCooldown <= 0 {
    config.BaseCooldown = defaultBaseCooldown
  }
  if config.MaxCooldown <= 0 {
    config.MaxCooldown = defaultMaxCooldown
  }

  return &Limiter{
    config:  config,
    entries: make(map[string]*limiterEntry),
    now:     time.Now,
  }
}

// Allow reports whether a call to the given partition may proceed now,
// and records the call time when it may.
func (l *Limiter) Allow(key string) bool {
  l.mu.Lock()
  defer l.mu.Unlock()

  entry, ok := l.entries[key]
  if !ok {
    entry = &limiterEntry{}
    l.entries[key] = entry
  }

  if !entry.lastCall.IsZero() && l.now().Sub(entry.lastCall) < l.cooldown(entry.failures) {
    return false
  }

  entry.lastCall = l.now()

  return true
}

func (l *Limiter) Success(key string) {
  l.mu.Lock()
  defer l.mu.Unlock()

  if entry, ok := l.entries[key]; ok {
    entry.failures = 0
  }
}

func (l *Limiter) Failure(key string) {
  l.mu.Lock()
  defer l.mu.Unlock()

  entry, ok := l.entries[key]
  if !ok {
    entry = &limiterEntry{}
    l.entries[key] = entry
  }

  entry.failures++
}

func (l *Limiter) cooldown(failures int) time.Duration {
  cooldown := l.config.BaseCooldown

  for index := 0; index < failures; index++ {
    cooldown *= 2

    if cooldown >= l.config.MaxCooldown {
      return l.config.MaxCooldown
    }
  }

  return cooldown
}
