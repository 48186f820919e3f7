package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Extension is the file extension of stored presets.
const Extension = ".json"

// ErrInvalidName is returned for preset names that would not map to a file
// directly inside the base directory.
var ErrInvalidName = errors.New("invalid preset name")

// Storage maps preset names to JSON documents inside a base directory.
// It assumes a single writer; concurrent Saves of the same name are last
// writer wins.
type Storage struct {
	baseDir string
	log     logrus.FieldLogger

	// beforeRename runs after the temp file is fully written and synced.
	// Tests use it to simulate a crash before the replace.
	beforeRename func(tmp string) error
}

type Option func(*Storage)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Storage) { s.log = log }
}

// NewStorage returns a Storage rooted at baseDir, creating the directory if needed.
func NewStorage(baseDir string, opts ...Option) (*Storage, error) {
	s := &Storage{baseDir: baseDir, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// Initialize ensures the base directory exists. Idempotent.
func (s *Storage) Initialize() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Storage) BaseDir() string { return s.baseDir }

// Path returns the document path for name.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.baseDir, name+Extension)
}

// ValidateName rejects names that are empty, contain a path separator, or
// are a relative directory reference.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ListPresets returns the names of all stored presets in ordinal order.
func (s *Storage) ListPresets() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		name := e.Name()
		// Temp files of in-flight saves end in .tmp-<random>.
		if e.IsDir() || filepath.Ext(name) != Extension {
			continue
		}
		names = append(names, strings.TrimSuffix(name, Extension))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the preset stored under name. A missing document yields a fresh
// preset with a root branch; nothing is written to disk in that case.
func (s *Storage) Load(name string) (*Preset, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.WithField("preset", name).Debug("no stored preset, bootstrapping")
			p := New(name)
			p.TreeNodes[p.RootID] = NewRoot(p.RootID)
			return p, nil
		}
		return nil, err
	}

	p, synthesized, err := decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if synthesized {
		s.log.WithFields(logrus.Fields{"preset": name, "root_id": p.RootID}).
			Warn("stored preset has no root node, synthesized one")
	}
	return p, nil
}

// Save writes p under p.Name, replacing any previous document atomically.
func (s *Storage) Save(p *Preset) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := s.writeAtomic(s.Path(p.Name), data); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"preset": p.Name, "nodes": len(p.TreeNodes), "fields": len(p.Fields)}).
		Debug("saved preset")
	return nil
}

// writeAtomic writes data to a sibling temp file then renames it over path.
// A failure at any step leaves the previous document untouched.
func (s *Storage) writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0644); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if s.beforeRename != nil {
		if err = s.beforeRename(tmp.Name()); err != nil {
			return err
		}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

// syncDir flushes the rename to disk. Not all platforms support it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	d.Close()
}
