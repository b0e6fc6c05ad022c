// Package artifact persists the published sitemap document. The previous
// version is copied to a timestamped backup before each overwrite so
// operators can diff consecutive generations.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/napieracademy/sitemap-manager/internal/logger"
)

// backupTimeLayout names backup files, e.g. "sitemap-20260829-031500.xml".
const backupTimeLayout = "20060102-150405"

const fileMode = 0o644

// Store writes the canonical sitemap artifact to a filesystem. The
// filesystem is abstracted so tests run against an in-memory one.
type Store struct {
	fs       billy.Filesystem
	fileName string
	logger   logger.Logger
}

func NewStore(fs billy.Filesystem, fileName string, log logger.Logger) *Store {
	return &Store{
		fs:       fs,
		fileName: fileName,
		logger:   log,
	}
}

// Read returns the currently published document, or os.ErrNotExist when
// nothing has been published yet.
func (s *Store) Read() ([]byte, error) {
	data, err := util.ReadFile(s.fs, s.fileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("read sitemap artifact: %w", err)
	}
	return data, nil
}

// Publish backs up the previous document (best effort) and overwrites the
// canonical file. Only the final write is fatal: losing backup history is
// preferable to blocking a fresh sitemap.
func (s *Store) Publish(data []byte, now time.Time) error {
	s.backupCurrent(now)

	if err := util.WriteFile(s.fs, s.fileName, data, fileMode); err != nil {
		return fmt.Errorf("write sitemap artifact: %w", err)
	}

	s.logger.Info("Sitemap artifact published",
		logger.String("file", s.fileName),
		logger.Int("bytes", len(data)),
	)
	return nil
}

// backupCurrent copies the current document to a timestamped name. Failures
// are logged and swallowed.
func (s *Store) backupCurrent(now time.Time) {
	current, err := util.ReadFile(s.fs, s.fileName)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Could not read current sitemap for backup",
				logger.Error(err),
			)
		}
		return
	}

	backupName := s.BackupName(now)
	if err := util.WriteFile(s.fs, backupName, current, fileMode); err != nil {
		s.logger.Warn("Sitemap backup failed, overwriting anyway",
			logger.String("backup", backupName),
			logger.Error(err),
		)
		return
	}

	s.logger.Info("Previous sitemap backed up",
		logger.String("backup", backupName),
	)
}

// BackupName returns the backup file name for a given time.
func (s *Store) BackupName(t time.Time) string {
	return fmt.Sprintf("sitemap-%s.xml", t.UTC().Format(backupTimeLayout))
}
