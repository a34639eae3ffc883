package radar

import (
  "context"
  "sync"
  "time"

  "github.com/seatradar/seatradar/internal/matcher"
  "github.com/seatradar/seatradar/internal/models"
  "github.com/seatradar/seatradar/pkg/worker"
  log "github.com/sirupsen/logrus"
)

type CycleStats struct {
  Tracked   int
  Fetched   int
  Skipped   int
  Absent    int
  Events    int
  Delivered int
}

// Start runs the poll loop until the context is cancelled. The first
// cycle runs immediately.
func (r *Radar) Start(ctx context.Context) error {
  log.
    WithFields(log.Fields{
      "term":     r.config.Term,
      "interval": r.config.Interval,
    }).
    Info("radar: polling started")

  ticker := time.NewTicker(r.config.Interval)
  defer ticker.Stop()

  for {
    r.RunCycle(ctx)

    select {
    case <-ctx.Done():
      log.Warn("radar: context cancelled: polling stopped")
      return ctx.Err()

    case <-ticker.C:
    }
  }
}

// RunCycle executes one fetch -> match -> observe -> notify pass.
// The manifest is read once at the start: a concurrent add or remove
// takes effect on the next cycle. Upstream failures yield an empty
// listing for that department; the tracker treats no data as no
// transition, so skipping is always safe.
func (r *Radar) RunCycle(ctx context.Context) CycleStats {
  stats := CycleStats{}

  snapshot := r.deps.Registry.Snapshot()
  stats.Tracked = len(snapshot)

  if len(snapshot) == 0 {
    return stats
  }

  listings := r.fetchListings(ctx, r.departments(snapshot), &stats)

  results := matcher.Match(snapshot, listings)

  for _, result := range results {
    if result.Record == nil {
      stats.Absent++
    }
  }

  transitions := r.deps.Tracker.ObserveAll(results)
  stats.Events = len(transitions)

  delivered, err := r.deps.Notifier.Notify(ctx, transitions)
  if err != nil {
    log.Errorf("radar: r.deps.Notifier.Notify: %v", err)
  }
  stats.Delivered = delivered

  log.
    WithFields(log.Fields{
      "tracked":   stats.Tracked,
      "fetched":   stats.Fetched,
      "skipped":   stats.Skipped,
      "absent":    stats.Absent,
      "events":    stats.Events,
      "delivered": stats.Delivered,
    }).
    Info("radar: cycle completed")

  return stats
}

func (r *Radar) departments(snapshot []models.TrackedSection) []string {
  if len(r.config.Departments) > 0 {
    return r.config.Departments
  }

  seen := make(map[string]struct{})
  departments := make([]string, 0, len(snapshot))

  for _, section := range snapshot {
    if _, ok := seen[section.Department]; ok {
      continue
    }
    seen[section.Department] = struct{}{}
    departments = append(departments, section.Department)
  }

  return departments
}

func (r *Radar) fetchListings(ctx context.Context, departments []string, stats *CycleStats) map[string][]models.RawSectionRecord {
  var mu sync.Mutex

  listings := make(map[string][]models.RawSectionRecord, len(departments))

  pool := worker.NewPool(ctx, r.config.WorkerCount)

  for _, department := range departments {
    department := department

    // The limiter is consulted first: a breaker Allow in HALF_OPEN
    // hands out the single trial slot, and a department refused after
    // taking it would leave the trial without an outcome.
    if !r.deps.Limiter.Allow(department) {
      stats.Skipped++

      log.
        WithField("department", department).
        Info("radar: department cooling down, skipped this cycle")

      continue
    }

    if !r.deps.Breaker.Allow() {
      stats.Skipped++

      log.
        WithField("department", department).
        Warn("radar: circuit breaker open, department skipped this cycle")

      continue
    }

    pool.Push(func(ctx context.Context) error {
      records, err := r.deps.Courses.FetchDepartmentListings(ctx, r.config.Term, department)
      if err != nil {
        r.deps.Limiter.Failure(department)
        r.deps.Breaker.Failure()

        log.
          WithField("department", department).
          Errorf("radar: listings fetch failed: %v", err)

        return nil
      }

      r.deps.Limiter.Success(department)
      r.deps.Breaker.Success()

      mu.Lock()
      listings[department] = records
      mu.Unlock()

      return nil
    })
  }

  pool.StopWait()

  stats.Fetched = len(listings)

  return listings
}
