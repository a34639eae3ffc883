package guard

import (
  "sync"
  "time"
)

type BreakerState = string

const (
  BreakerClosed   BreakerState = "closed"
  BreakerOpen     BreakerState = "open"
  BreakerHalfOpen BreakerState = "half_open"
)

const (
  defaultFailureThreshold = 5
  defaultRecoveryTimeout  = 2 * time.Minute
)

type BreakerConfig struct {
  FailureThreshold int
  RecoveryTimeout  time.Duration
}

// Breaker is the global circuit breaker around upstream calls.
// CLOSED -> OPEN after FailureThreshold consecutive failures,
// OPEN -> HALF_OPEN once RecoveryTimeout elapses, HALF_OPEN admits
// exactly one trial call which decides between CLOSED and OPEN.
// Polling and command goroutines report outcomes concurrently, so all
// state lives behind one mutex.
type Breaker struct {
  config BreakerConfig

  mu            sync.Mutex
  state         BreakerState
  failures      int
  openedAt      time.Time
  trialInFlight bool
  trialAt       time.Time

  now func() time.Time
}

func NewBreaker(config BreakerConfig) *Breaker {
  if config.FailureThreshold <= 0 {
    config.FailureThreshold = defaultFailureThreshold
  }
  if config.RecoveryTimeout <= 0 {
    config.RecoveryTimeout = defaultRecoveryTimeout
  }

  return &Breaker{
    config: config,
    state:  BreakerClosed,
    now:    time.Now,
  }
}

func (b *Breaker) Allow() bool {
  b.mu.Lock()
  defer b.mu.Unlock()

  switch b.state {
  case BreakerClosed:
    return true

  case BreakerOpen:
    if b.now().Sub(b.openedAt) < b.config.RecoveryTimeout {
      return false
    }
    b.state = BreakerHalfOpen
    b.admitTrial()
    return true

  case BreakerHalfOpen:
    // A trial whose caller never reported back (cancelled or shed
    // before the call ran) must not hold the slot forever; after
    // RecoveryTimeout the slot is handed out again.
    if b.trialInFlight && b.now().Sub(b.trialAt) < b.config.RecoveryTimeout {
      return false
    }
    b.admitTrial()
    return true
  }

  return false
}

func (b *Breaker) Success() {
  b.mu.Lock()
  defer b.mu.Unlock()

  b.state = BreakerClosed
  b.failures = 0
  b.trialInFlight = false
}

func (b *Breaker) Failure() {
  b.mu.Lock()
  defer b.mu.Unlock()

  switch b.state {
  case BreakerHalfOpen:
    b.open()

  case BreakerClosed:
    b.failures++

    if b.failures >= b.config.FailureThreshold {
      b.open()
    }
  }
}

func (b *Breaker) State() BreakerState {
  b.mu.Lock()
  defer b.mu.Unlock()

  return b.state
}

func (b *Breaker) open() {
  b.state = BreakerOpen
  b.openedAt = b.now()
  b.trialInFlight = false
}

// admitTrial is called with b.mu held.
func (b *Breaker) admitTrial() {
  b.trialInFlight = true
  b.trialAt = b.now()
}
