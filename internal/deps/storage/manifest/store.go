package manifest

import (
  "context"
  "errors"

  "github.com/seatradar/seatradar/internal/models"
)

var ErrNotFound = errors.New("manifest not found")

// Store persists the tracked-section manifest. Load returns
// ErrNotFound when nothing was persisted yet; callers fall back to
// the built-in default manifest.
type Store interface {
  Load(ctx context.Context) (models.Manifest, error)
  Save(ctx context.Context, manifest models.Manifest) error
}
