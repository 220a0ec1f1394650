// Package backup snapshots and restores the SQLite store.
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/database"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

const (
	filePrefix      = "finance_backup_"
	fileSuffix      = ".db"
	timestampLayout = "20060102_150405"
)

var sqliteHeader = []byte("SQLite format 3\x00")

// Store is the database handle a backup service operates on.
// *database.Manager satisfies it.
type Store interface {
	DB() *gorm.DB
	Driver() string
	Path() string
	Close() error
	Reopen() error
	Migrate() error
}

// Snapshot is one backup file in the backup directory.
type Snapshot struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Service creates, lists and restores snapshots.
type Service struct {
	store Store
	dir   string
	now   func() time.Time
}

// NewService creates a backup service writing snapshots into dir.
func NewService(store Store, dir string) *Service {
	if dir == "" {
		dir = "."
	}
	return &Service{store: store, dir: dir, now: time.Now}
}

// Dir returns the backup directory.
func (s *Service) Dir() string {
	return s.dir
}

// SnapshotName returns the file name for a snapshot taken at t.
func SnapshotName(t time.Time) string {
	return filePrefix + t.Format(timestampLayout) + fileSuffix
}

func parseSnapshotName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	t, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (s *Service) checkDriver() error {
	if s.store.Driver() != database.DriverSQLite {
		return apperrors.ErrBackupUnsupported
	}
	return nil
}

// Backup writes a consistent copy of the live database into the backup
// directory using VACUUM INTO.
func (s *Service) Backup() (*Snapshot, error) {
	if err := s.checkDriver(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}

	createdAt := s.now()
	name := SnapshotName(createdAt)
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil, apperrors.WithMessage(apperrors.ErrBackupFailed, "A backup was already taken this second. Please try again.")
	}

	if err := s.store.DB().Exec("VACUUM INTO ?", path).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}

	logger.Get().Infow("database backed up", "path", path)
	return &Snapshot{Name: name, Path: path, CreatedAt: createdAt.Truncate(time.Second)}, nil
}

// List returns the snapshots in the backup directory, newest first.
func (s *Service) List() ([]Snapshot, error) {
	if err := s.checkDriver(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Snapshot{}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}

	snapshots := []Snapshot{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		createdAt, ok := parseSnapshotName(entry.Name())
		if !ok {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Name:      entry.Name(),
			Path:      filepath.Join(s.dir, entry.Name()),
			CreatedAt: createdAt,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Restore replaces the live database with the named snapshot and reopens
// the store. The current data is overwritten.
func (s *Service) Restore(name string) error {
	if err := s.checkDriver(); err != nil {
		return err
	}
	if filepath.Base(name) != name {
		return apperrors.ErrBackupNotFound
	}
	if _, ok := parseSnapshotName(name); !ok {
		return apperrors.ErrBackupNotFound
	}

	src := filepath.Join(s.dir, name)
	if err := checkSQLiteFile(src); err != nil {
		return err
	}

	live := s.store.Path()
	tmp, err := copyToTemp(src, filepath.Dir(live))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}
	defer os.Remove(tmp)

	if err := s.store.Close(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}

	renameErr := os.Rename(tmp, live)
	// The store must come back even when the swap failed.
	if err := s.store.Reopen(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}
	if renameErr != nil {
		return apperrors.Wrap(apperrors.ErrBackupFailed, renameErr)
	}

	// Snapshots from older releases may predate later migrations.
	if err := s.store.Migrate(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}

	logger.Get().Infow("database restored", "from", src)
	return nil
}

func checkSQLiteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.ErrBackupNotFound
		}
		return apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, sqliteHeader) {
		return apperrors.WithMessage(apperrors.ErrBackupFailed, fmt.Sprintf("%s is not a database backup", filepath.Base(path)))
	}
	return nil
}

func copyToTemp(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.CreateTemp(dir, ".restore-*.db")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}
