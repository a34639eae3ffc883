package radar

import (
  "context"
  "time"

  "github.com/seatradar/seatradar/internal/guard"
  "github.com/seatradar/seatradar/internal/models"
  "github.com/seatradar/seatradar/internal/notifier"
  "github.com/seatradar/seatradar/internal/registry"
  "github.com/seatradar/seatradar/internal/tracker"
  "github.com/seatradar/seatradar/pkg/worker"
)

// CoursesClient is the upstream listing fetch contract.
type CoursesClient interface {
  FetchDepartmentListings(ctx context.Context, term, department string) ([]models.RawSectionRecord, error)
}

type Config struct {
  Term     string
  Interval time.Duration

  // Departments to poll. Empty means: derive from the manifest.
  Departments []string

  WorkerCount uint8
}

type Dependencies struct {
  Courses  CoursesClient
  Registry *registry.Registry
  Tracker  *tracker.Tracker
  Notifier *notifier.Notifier
  Limiter  *guard.Limiter
  Breaker  *guard.Breaker
}

// Radar drives the poll cycle: fetch listings per department through
// the guard policies, match them against the manifest snapshot, feed
// the tracker and hand fired transitions to the notifier.
type Radar struct {
  config Config
  deps   Dependencies
}

func NewRadar(config Config, deps Dependencies) *Radar {
  if config.Interval <= 0 {
    config.Interval = 30 * time.Second
  }
  if config.WorkerCount == 0 {
    config.WorkerCount = worker.DefaultCount
  }

  return &Radar{
    config: config,
    deps:   deps,
  }
}
