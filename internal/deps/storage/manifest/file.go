package manifest

import (
  "context"
  "encoding/json"
  "fmt"
  "os"

  "github.com/seatradar/seatradar/internal/models"
)

// FileStore keeps the manifest as an indented JSON file so operators
// can read and edit it by hand.
type FileStore struct {
  path string
}

func NewFileStore(path string) (*FileStore, error) {
  if path == "" {
    return nil, fmt.Errorf("manifest file path not specified")
  }

  return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context) (models.Manifest, error) {
  body, err := os.ReadFile(s.path)
  if err != nil {
    if os.IsNotExist(err) {
      return models.Manifest{}, ErrNotFound
    }
    return models.Manifest{}, fmt.Errorf("os.ReadFile: %w", err)
  }

  var manifest models.Manifest

  if err = json.Unmarshal(body, &manifest); err != nil {
    return models.Manifest{}, fmt.Errorf("json.Unmarshal: %w", err)
  }

  return manifest, nil
}

func (s *FileStore) Save(_ context.Context, manifest models.Manifest) error {
  body, err := json.MarshalIndent(manifest, "", "  ")
  if err != nil {
    return fmt.Errorf("json.MarshalIndent: %w", err)
  }

  if err = os.WriteFile(s.path, body, 0o644); err != nil {
    return fmt.Errorf("os.WriteFile: %w", err)
  }

  return nil
}
