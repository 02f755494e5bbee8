// Package session persists discovery progress so an interrupted run can be
// resumed. There is a single live session per directory; clearing it moves
// the content into a timestamped archive next to it.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/feature"
	"github.com/felixgeelhaar/devflow/internal/log"
	"github.com/felixgeelhaar/devflow/internal/plan"
)

const (
	// FileName is the live session file inside the session directory
	FileName = "disco-progress.json"

	archivePrefix = "disco-progress-"

	maxArchiveSuffix = 1000
)

// Session is the unit of persistence and recovery for one discovery run
type Session struct {
	Timestamp      string               `json:"timestamp"`
	Input          *feature.Description `json:"input"`
	Clarifications []string             `json:"clarifications"`
	ProjectPlan    *plan.Plan           `json:"projectPlan"`
}

// New returns an empty session
func New() *Session {
	return &Session{Clarifications: []string{}}
}

// HasProgress reports whether the session holds anything worth resuming
func (s *Session) HasProgress() bool {
	return s != nil && (s.Input != nil || s.ProjectPlan != nil)
}

// Config configures a Store
type Config struct {
	Dir string
}

// DefaultConfig stores sessions in the working directory
func DefaultConfig() Config {
	return Config{Dir: "."}
}

// Store handles session persistence and recovery
type Store struct {
	dir    string
	logger *log.Logger
	now    func() time.Time
}

// NewStore creates a session store rooted at cfg.Dir
func NewStore(cfg Config, logger *log.Logger) *Store {
	if cfg.Dir == "" {
		cfg.Dir = DefaultConfig().Dir
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Store{dir: cfg.Dir, logger: logger, now: time.Now}
}

// Path returns the live session file path
func (st *Store) Path() string {
	return filepath.Join(st.dir, FileName)
}

// Save stamps the session with the current time and writes it atomically
func (st *Store) Save(s *Session) error {
	if s == nil {
		return errors.New(errors.ErrCodeSessionWrite, "session is nil")
	}

	s.Timestamp = st.now().UTC().Format(time.RFC3339)
	if s.Clarifications == nil {
		s.Clarifications = []string{}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeSessionWrite, "failed to marshal session", err)
	}

	if err := writeFileAtomic(st.Path(), data); err != nil {
		return errors.Wrap(errors.ErrCodeSessionWrite, "failed to write session file", err)
	}

	return nil
}

// Load reads the live session. A missing or unreadable file yields nil; the
// cause is logged rather than returned.
func (st *Store) Load() *Session {
	s, err := st.read()
	if err != nil {
		st.logger.WithError(err).Warn("could not load session", "path", st.Path())
		return nil
	}
	if s == nil {
		st.logger.Debug("no session file", "path", st.Path())
	}
	return s
}

func (st *Store) read() (*Session, error) {
	data, err := os.ReadFile(st.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeSessionRead, "failed to read session file", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSessionRead, "failed to unmarshal session", err)
	}
	if s.Clarifications == nil {
		s.Clarifications = []string{}
	}

	return &s, nil
}

// HasProgress reports whether the live session has input or a plan
func (st *Store) HasProgress() bool {
	return st.Load().HasProgress()
}

// Clear archives the live session and replaces it with an empty one.
// Clearing when no live file exists does nothing.
func (st *Store) Clear() error {
	data, err := os.ReadFile(st.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeSessionArchive, "failed to read session for archiving", err)
	}

	archive, err := st.writeArchive(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSessionArchive, "failed to write session archive", err)
	}
	st.logger.Debug("session archived", "archive", archive)

	return st.Save(New())
}

// writeArchive creates disco-progress-<millis>.json exclusively. A name
// taken within the same millisecond gets a -1, -2, ... suffix.
func (st *Store) writeArchive(data []byte) (string, error) {
	if err := os.MkdirAll(st.dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	stamp := st.now().UnixMilli()
	for n := 0; n < maxArchiveSuffix; n++ {
		name := fmt.Sprintf("%s%d.json", archivePrefix, stamp)
		if n > 0 {
			name = fmt.Sprintf("%s%d-%d.json", archivePrefix, stamp, n)
		}
		path := filepath.Join(st.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", err
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no free archive name for %d", stamp)
}

// archiveOrder parses disco-progress-<millis>[-<n>].json into its sort key
func archiveOrder(name string) (stamp, seq int64) {
	base := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), ".json")
	ts, suffix, _ := strings.Cut(base, "-")
	stamp, _ = strconv.ParseInt(ts, 10, 64)
	seq, _ = strconv.ParseInt(suffix, 10, 64)
	return stamp, seq
}

// Archives lists archived session files, oldest first
func (st *Store) Archives() ([]string, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeSessionRead, "failed to read session directory", err)
	}

	archives := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, archivePrefix) || filepath.Ext(name) != ".json" {
			continue
		}
		archives = append(archives, filepath.Join(st.dir, name))
	}
	sort.Slice(archives, func(i, j int) bool {
		si, ni := archiveOrder(filepath.Base(archives[i]))
		sj, nj := archiveOrder(filepath.Base(archives[j]))
		if si != sj {
			return si < sj
		}
		return ni < nj
	})

	return archives, nil
}

// writeFileAtomic writes through a temp file in the same directory and renames it into place
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".disco-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
