package tracker

import (
  "sync"
  "time"

  "github.com/seatradar/seatradar/internal/models"
)

type Config struct {
  // ConfirmFirstSight suppresses the event on a verified-available
  // observation with no verified baseline (first sight or recovery
  // from unverified data) and waits for one more confirming cycle.
  // Off by default: a first verified observation with open seats has
  // no prior available state to deduplicate against, so it fires.
  ConfirmFirstSight bool
}

// Tracker owns the per-section observation state and decides which
// observations constitute a became-available event. Events are
// edge-triggered: a verified reading of zero re-arms the detector,
// continuously open seats fire exactly once.
type Tracker struct {
  config Config

  mu     sync.Mutex
  states map[string]models.SectionState

  now func() time.Time
}

func NewTracker(config Config) *Tracker {
  return &Tracker{
    config: config,
    states: make(map[string]models.SectionState),
    now:    time.Now,
  }
}

// Observe records one match result and returns the transition it
// fired, if any. An absent record leaves the section's state
// untouched: absence is an observation gap, never a transition.
func (t *Tracker) Observe(result models.MatchResult) *models.Transition {
  if result.Record == nil {
    return nil
  }

  seats := ParseSeatInfo(*result.Record)

  t.mu.Lock()
  defer t.mu.Unlock()

  key := result.Tracked.Key()
  prior, hasPrior := t.states[key]

  observedAt := t.now()

  if !seats.Verified {
    // Unverified readings never touch the seat baseline: missing data
    // is not zero. They do move the staleness timestamp, and a first
    // unverified sighting creates a state row so status output can
    // show the section tagged as unverified.
    if hasPrior {
      prior.LastObservedAt = observedAt
      t.states[key] = prior
    } else {
      t.states[key] = models.SectionState{
        LastSeatsDisplay: seats.Display,
        LastObservedAt:   observedAt,
      }
    }

    return nil
  }

  hasBaseline := hasPrior && prior.LastVerified

  fired := seats.Available > 0 && (!hasBaseline || prior.LastAvailableSeats == 0)

  if fired && !hasBaseline && t.config.ConfirmFirstSight {
    fired = false
  }

  t.states[key] = models.SectionState{
    LastVerified:       true,
    LastAvailableSeats: seats.Available,
    LastSeatsDisplay:   seats.Display,
    LastObservedAt:     observedAt,
  }

  if !fired {
    return nil
  }

  return &models.Transition{
    Section: result.Tracked,
    Seats:   seats,
    FiredAt: observedAt,
  }
}

// ObserveAll processes one cycle's match results and collects the
// transitions fired. Sections are independent: ordering is irrelevant.
func (t *Tracker) ObserveAll(results []models.MatchResult) []models.Transition {
  var transitions []models.Transition

  for _, result := range results {
    if transition := t.Observe(result); transition != nil {
      transitions = append(transitions, *transition)
    }
  }

  return transitions
}

// State returns the recorded state for one CRN.
func (t *Tracker) State(crn string) (models.SectionState, bool) {
  t.mu.Lock()
  defer t.mu.Unlock()

  state, ok := t.states[crn]

  return state, ok
}

// Snapshot returns a copy of the state table for status display.
func (t *Tracker) Snapshot() map[string]models.SectionState {
  t.mu.Lock()
  defer t.mu.Unlock()

  snapshot := make(map[string]models.SectionState, len(t.states))

  for key, state := range t.states {
    snapshot[key] = state
  }

  return snapshot
}

// Forget drops the state of a section removed from the manifest.
func (t *Tracker) Forget(crn string) {
  t.mu.Lock()
  defer t.mu.Unlock()

  delete(t.states, crn)
}
