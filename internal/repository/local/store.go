package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/domain/models"
)

// Store persists record-set snapshots as UTF-8 JSON files, one per kind.
// Every save replaces the whole prior snapshot; the files double as the
// offline floor when the remote store is unreachable.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore builds a snapshot store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// Save overwrites the snapshot for the kind with the given record set. The
// four-space indent keeps the files byte-compatible with earlier releases.
func (s *Store) Save(kind models.Kind, data any) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", kind, err)
	}

	path := s.path(kind)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s snapshot: %w", kind, err)
	}

	s.logger.Debug("snapshot written", zap.String("kind", string(kind)), zap.String("path", path))
	return nil
}

// Load reads the snapshot for the kind into out. A missing, unreadable or
// corrupt snapshot leaves out empty: offline data loss degrades to an empty
// table, never to a startup failure.
func (s *Store) Load(kind models.Kind, out any) {
	path := s.path(kind)

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("snapshot unreadable, starting empty",
				zap.String("kind", string(kind)), zap.Error(err))
		}
		return
	}

	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("snapshot corrupt, starting empty",
			zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *Store) path(kind models.Kind) string {
	return filepath.Join(s.dir, kind.SnapshotFile())
}
