package registry

import (
  "context"
  "errors"
  "fmt"
  "sync"

  set "github.com/deckarep/golang-set/v2"
  "github.com/seatradar/seatradar/internal/deps/storage/manifest"
  "github.com/seatradar/seatradar/internal/models"
  log "github.com/sirupsen/logrus"
)

var (
  ErrDuplicateSection = errors.New("section already tracked")
  ErrSectionNotFound  = errors.New("section not tracked")

  // ErrPersistence marks a write-through failure. The in-memory
  // manifest keeps the mutation so the operator can retry persistence
  // without losing it, and must be warned about the divergence.
  ErrPersistence = errors.New("manifest persistence failed")
)

// Registry is the tracked-section manifest. Mutations persist
// synchronously through the store under the same lock as the
// in-memory update. The polling cycle reads a snapshot, so a
// concurrent add or remove takes effect on the next cycle only.
type Registry struct {
  mu       sync.Mutex
  sections []models.TrackedSection
  store    manifest.Store
}

func NewRegistry(store manifest.Store) *Registry {
  return &Registry{store: store}
}

// DefaultSections is the built-in manifest used when nothing was
// persisted yet.
func DefaultSections() []models.TrackedSection {
  return []models.TrackedSection{
    {Department: "EE", CourseCode: "EE207", Section: "02", CRN: "22716"},
    {Department: "EE", CourseCode: "EE271", Section: "53", CRN: "22425"},
    {Department: "EE", CourseCode: "EE272", Section: "57", CRN: "22436"},
    {Department: "ENGL", CourseCode: "ENGL214", Section: "14", CRN: "20305"},
  }
}

func (r *Registry) Init(ctx context.Context) error {
  r.mu.Lock()
  defer r.mu.Unlock()

  loaded, err := r.store.Load(ctx)
  if err != nil {
    if errors.Is(err, manifest.ErrNotFound) {
      r.sections = DefaultSections()

      log.Info("registry: no persisted manifest, using built-in defaults")

      return nil
    }

    return fmt.Errorf("r.store.Load: %w", err)
  }

  r.sections = loaded.Flatten()

  return nil
}

func (r *Registry) Snapshot() []models.TrackedSection {
  r.mu.Lock()
  defer r.mu.Unlock()

  snapshot := make([]models.TrackedSection, len(r.sections))
  copy(snapshot, r.sections)

  return snapshot
}

func (r *Registry) Departments() []string {
  r.mu.Lock()
  defer r.mu.Unlock()

  departments := set.NewSet[string]()

  for _, section := range r.sections {
    departments.Add(section.Department)
  }

  return departments.ToSlice()
}

func (r *Registry) Len() int {
  r.mu.Lock()
  defer r.mu.Unlock()

  return len(r.sections)
}

func (r *Registry) Add(ctx context.Context, section models.TrackedSection) error {
  r.mu.Lock()
  defer r.mu.Unlock()

  for _, existing := range r.sections {
    if existing.Department == section.Department &&
      existing.CourseCode == section.CourseCode &&
      existing.Section == section.Section {
      return fmt.Errorf("%w: %s", ErrDuplicateSection, section.Label())
    }
  }

  r.sections = append(r.sections, section)

  if err := r.persist(ctx); err != nil {
    return fmt.Errorf("%w: %v", ErrPersistence, err)
  }

  return nil
}

func (r *Registry) Remove(ctx context.Context, courseCode, sectionCode string) (models.TrackedSection, error) {
  r.mu.Lock()
  defer r.mu.Unlock()

  for index, existing := range r.sections {
    if existing.CourseCode != courseCode || existing.Section != sectionCode {
      continue
    }

    r.sections = append(r.sections[:index], r.sections[index+1:]...)

    if err := r.persist(ctx); err != nil {
      return existing, fmt.Errorf("%w: %v", ErrPersistence, err)
    }

    return existing, nil
  }

  return models.TrackedSection{}, fmt.Errorf("%w: %s-%s", ErrSectionNotFound, courseCode, sectionCode)
}

// persist is called with r.mu held.
func (r *Registry) persist(ctx context.Context) error {
  if err := r.store.Save(ctx, models.MakeManifest(r.sections)); err != nil {
    return fmt.Errorf("r.store.Save: %w", err)
  }

  return nil
}
