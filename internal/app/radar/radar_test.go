package radar

import (
  "context"
  "errors"
  "path/filepath"
  "sync/atomic"
  "testing"
  "time"

  telegram "github.com/go-telegram/bot"
  tgmodels "github.com/go-telegram/bot/models"
  "github.com/samber/lo"
  "github.com/seatradar/seatradar/internal/deps/storage/manifest"
  "github.com/seatradar/seatradar/internal/guard"
  "github.com/seatradar/seatradar/internal/models"
  "github.com/seatradar/seatradar/internal/notifier"
  "github.com/seatradar/seatradar/internal/registry"
  "github.com/seatradar/seatradar/internal/tracker"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
)

type fakeCourses struct {
  calls    atomic.Int64
  fail     bool
  listings map[string][]models.RawSectionRecord
}

func (c *fakeCourses) FetchDepartmentListings(_ context.Context, _, department string) ([]models.RawSectionRecord, error) {
  c.calls.Add(1)

  if c.fail {
    return nil, errors.New("upstream down")
  }

  return c.listings[department], nil
}

type fakeMessenger struct {
  sent []string
}

func (m *fakeMessenger) SendMessage(_ context.Context, params *telegram.SendMessageParams) (*tgmodels.Message, error) {
  m.sent = append(m.sent, params.Text)
  return &tgmodels.Message{ID: len(m.sent)}, nil
}

func newTestRadar(t *testing.T, courses CoursesClient, messenger notifier.Messenger, breaker *guard.Breaker) (*Radar, *registry.Registry) {
  t.Helper()

  store, err := manifest.NewFileStore(filepath.Join(t.TempDir(), "tracked_sections.json"))
  require.NoError(t, err)

  reg := registry.NewRegistry(store)
  require.NoError(t, reg.Init(context.Background()))

  radar := NewRadar(
    Config{
      Term:        "252",
      WorkerCount: 2,
    },
    Dependencies{
      Courses:  courses,
      Registry: reg,
      Tracker:  tracker.NewTracker(tracker.Config{}),
      Notifier: notifier.NewNotifier(
        notifier.Config{ChatIds: []int64{1}, Term: "252"},
        notifier.Dependencies{Telegram: messenger},
      ),
      Limiter: guard.NewLimiter(guard.LimiterConfig{
        BaseCooldown: time.Nanosecond,
        MaxCooldown:  2 * time.Nanosecond,
      }),
      Breaker: breaker,
    },
  )

  return radar, reg
}

func record(crn string, available, capacity int64) models.RawSectionRecord {
  return models.RawSectionRecord{
    CRN:       crn,
    Available: lo.ToPtr(available),
    Capacity:  lo.ToPtr(capacity),
  }
}

func TestCycleEndToEnd(t *testing.T) {
  courses := &fakeCourses{
    listings: map[string][]models.RawSectionRecord{
      "EE": {
        record("22716", 0, 25),
        record("22425", 0, 30),
        record("22436", 0, 30),
      },
      "ENGL": {
        record("20305", 0, 40),
      },
    },
  }
  messenger := &fakeMessenger{}

  radar, _ := newTestRadar(t, courses, messenger, guard.NewBreaker(guard.BreakerConfig{}))

  // Cycle 1: everything full, nothing fires.
  stats := radar.RunCycle(context.Background())
  assert.Equal(t, 4, stats.Tracked)
  assert.Equal(t, 2, stats.Fetched)
  assert.Zero(t, stats.Events)
  assert.Empty(t, messenger.sent)

  // Cycle 2: one section opens up, exactly one aggregated message.
  courses.listings["EE"][0] = record("22716", 3, 25)

  stats = radar.RunCycle(context.Background())
  assert.Equal(t, 1, stats.Events)
  assert.Equal(t, 1, stats.Delivered)
  require.Len(t, messenger.sent, 1)
  assert.Contains(t, messenger.sent[0], "EE207-02")
  assert.Contains(t, messenger.sent[0], "Available: 3")

  // Cycle 3: still open, no repeat notification.
  stats = radar.RunCycle(context.Background())
  assert.Zero(t, stats.Events)
  require.Len(t, messenger.sent, 1)
}

func TestCycleAbsentSectionIsNotFailure(t *testing.T) {
  courses := &fakeCourses{
    listings: map[string][]models.RawSectionRecord{
      "EE": {record("22716", 0, 25)},
      // ENGL listing comes back empty this cycle.
    },
  }
  messenger := &fakeMessenger{}

  radar, _ := newTestRadar(t, courses, messenger, guard.NewBreaker(guard.BreakerConfig{}))

  stats := radar.RunCycle(context.Background())
  assert.Equal(t, 3, stats.Absent)
  assert.Zero(t, stats.Events)
  assert.Empty(t, messenger.sent)
}

func TestCycleBreakerShedsLoad(t *testing.T) {
  courses := &fakeCourses{fail: true}
  messenger := &fakeMessenger{}

  breaker := guard.NewBreaker(guard.BreakerConfig{
    FailureThreshold: 2,
    RecoveryTimeout:  time.Hour,
  })

  radar, reg := newTestRadar(t, courses, messenger, breaker)

  // Track a single department so failure counting is deterministic.
  for _, section := range reg.Snapshot() {
    if section.Department != "EE" {
      _, err := reg.Remove(context.Background(), section.CourseCode, section.Section)
      require.NoError(t, err)
    }
  }

  radar.RunCycle(context.Background())
  radar.RunCycle(context.Background())
  require.EqualValues(t, 2, courses.calls.Load())
  require.Equal(t, guard.BreakerOpen, breaker.State())

  // Open breaker: the department is skipped without network I/O.
  stats := radar.RunCycle(context.Background())
  assert.Equal(t, 1, stats.Skipped)
  assert.EqualValues(t, 2, courses.calls.Load())
  assert.Empty(t, messenger.sent)
}

func TestCycleLimiterRefusalDoesNotWedgeBreakerRecovery(t *testing.T) {
  courses := &fakeCourses{
    fail: true,
    listings: map[string][]models.RawSectionRecord{
      "EE": {record("22716", 0, 25)},
    },
  }
  messenger := &fakeMessenger{}

  breaker := guard.NewBreaker(guard.BreakerConfig{
    FailureThreshold: 1,
    RecoveryTimeout:  time.Nanosecond,
  })

  store, err := manifest.NewFileStore(filepath.Join(t.TempDir(), "tracked_sections.json"))
  require.NoError(t, err)

  reg := registry.NewRegistry(store)
  require.NoError(t, reg.Init(context.Background()))

  for _, section := range reg.Snapshot() {
    if section.Department != "EE" {
      _, err = reg.Remove(context.Background(), section.CourseCode, section.Section)
      require.NoError(t, err)
    }
  }

  radar := NewRadar(
    Config{
      Term:        "252",
      WorkerCount: 2,
    },
    Dependencies{
      Courses:  courses,
      Registry: reg,
      Tracker:  tracker.NewTracker(tracker.Config{}),
      Notifier: notifier.NewNotifier(
        notifier.Config{ChatIds: []int64{1}, Term: "252"},
        notifier.Dependencies{Telegram: messenger},
      ),
      Limiter: guard.NewLimiter(guard.LimiterConfig{
        BaseCooldown: 10 * time.Millisecond,
        MaxCooldown:  20 * time.Millisecond,
      }),
      Breaker: breaker,
    },
  )

  // Cycle 1: the fetch fails, opening the breaker and starting the
  // department's backed-off cooldown.
  radar.RunCycle(context.Background())
  require.EqualValues(t, 1, courses.calls.Load())
  require.Equal(t, guard.BreakerOpen, breaker.State())

  // Cycle 2: the breaker's recovery timeout has elapsed, but the
  // department is still cooling down. The refusal must not strand the
  // recovery trial.
  stats := radar.RunCycle(context.Background())
  require.Equal(t, 1, stats.Skipped)
  require.EqualValues(t, 1, courses.calls.Load())

  // Once the department cools off, a healthy fetch must run and close
  // the breaker again.
  courses.fail = false
  time.Sleep(30 * time.Millisecond)

  radar.RunCycle(context.Background())
  require.EqualValues(t, 2, courses.calls.Load())
  require.Equal(t, guard.BreakerClosed, breaker.State())

  time.Sleep(15 * time.Millisecond)

  stats = radar.RunCycle(context.Background())
  assert.Zero(t, stats.Skipped)
  assert.EqualValues(t, 3, courses.calls.Load())
}

func TestCycleManifestMutationTakesNextCycle(t *testing.T) {
  courses := &fakeCourses{
    listings: map[string][]models.RawSectionRecord{
      "EE":   {record("22716", 0, 25), record("22425", 0, 30), record("22436", 0, 30)},
      "ENGL": {record("20305", 0, 40)},
      "MATH": {record("31337", 5, 30)},
    },
  }
  messenger := &fakeMessenger{}

  radar, reg := newTestRadar(t, courses, messenger, guard.NewBreaker(guard.BreakerConfig{}))

  radar.RunCycle(context.Background())
  require.Empty(t, messenger.sent)

  require.NoError(t, reg.Add(context.Background(), models.TrackedSection{
    Department: "MATH",
    CourseCode: "MATH101",
    Section:    "07",
    CRN:        "31337",
  }))

  stats := radar.RunCycle(context.Background())
  assert.Equal(t, 5, stats.Tracked)
  assert.Equal(t, 1, stats.Events)
  require.Len(t, messenger.sent, 1)
  assert.Contains(t, messenger.sent[0], "MATH101-07")
}
