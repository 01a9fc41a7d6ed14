// Package layout keeps UI layout presets on disk. Presets are saved
// inside the vendor application and exported to a preset directory so
// they survive re-installs and can be shared between machines. A yaml
// manifest tracks what was exported when, and an optional watcher
// picks up preset files dropped into the directory by hand.
package layout

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/postflow/resolve-mcp/internal/errors"
)

const (
	manifestName = "manifest.yaml"
	presetExt    = ".preset"
)

// Preset is one exported layout preset.
type Preset struct {
	Name    string    `yaml:"name" json:"name"`
	File    string    `yaml:"file" json:"file"`
	SavedAt time.Time `yaml:"saved_at" json:"saved_at"`
}

type manifest struct {
	Presets []Preset `yaml:"presets"`
}

// Store manages the preset directory and its manifest.
type Store struct {
	mu      sync.RWMutex
	dir     string
	presets map[string]Preset
	logger  *slog.Logger
}

// NewStore opens or creates the preset directory and reads the
// manifest. Preset files present on disk but missing from the
// manifest are adopted with their modification time.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	const op = "layout.NewStore"
	if dir == "" {
		return nil, errors.Config(op, "preset directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IOWrap(err, op, "creating preset directory")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{dir: dir, presets: map[string]Preset{}, logger: logger}
	if err := s.loadManifest(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.adoptLooseFiles()
	s.mu.Unlock()
	return s, nil
}

// Dir returns the preset directory.
func (s *Store) Dir() string { return s.dir }

// List returns all known presets sorted by name.
func (s *Store) List() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get looks up a preset by name.
func (s *Store) Get(name string) (Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.presets[name]
	return p, ok
}

// PresetPath returns the on-disk path a preset exports to.
func (s *Store) PresetPath(name string) string {
	return filepath.Join(s.dir, sanitizeName(name)+presetExt)
}

// Record registers a freshly exported preset in the manifest.
func (s *Store) Record(name string) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Preset{
		Name:    name,
		File:    sanitizeName(name) + presetExt,
		SavedAt: time.Now().UTC(),
	}
	s.presets[name] = p
	if err := s.saveManifestLocked(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Remove deletes the preset file and drops the manifest entry.
func (s *Store) Remove(name string) error {
	const op = "layout.Remove"
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.presets[name]
	if !ok {
		return errors.NotFound(op, fmt.Sprintf("layout preset %q not found", name))
	}
	path := filepath.Join(s.dir, p.File)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.IOWrap(err, op, "removing preset file")
	}
	delete(s.presets, name)
	return s.saveManifestLocked()
}

// Watch follows the preset directory until ctx is done, adopting
// preset files that appear and dropping entries whose files vanish.
func (s *Store) Watch(ctx context.Context) error {
	const op = "layout.Watch"
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.IOWrap(err, op, "creating directory watcher")
	}
	defer watcher.Close()
	if err := watcher.Add(s.dir); err != nil {
		return errors.IOWrap(err, op, "watching preset directory")
	}
	s.logger.Debug("watching layout preset directory", "dir", s.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != presetExt {
				continue
			}
			switch {
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Rename):
				s.mu.Lock()
				s.adoptLooseFiles()
				s.pruneMissingLocked()
				s.mu.Unlock()
				s.logger.Info("layout preset directory changed", "event", event.Op.String(), "file", filepath.Base(event.Name))
			case event.Has(fsnotify.Remove):
				s.mu.Lock()
				s.pruneMissingLocked()
				s.mu.Unlock()
				s.logger.Info("layout preset removed externally", "file", filepath.Base(event.Name))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("layout preset watcher error", "error", err)
		}
	}
}

func (s *Store) loadManifest() error {
	const op = "layout.loadManifest"
	raw, err := os.ReadFile(filepath.Join(s.dir, manifestName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.IOWrap(err, op, "reading manifest")
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return errors.ConfigWrap(err, op, "parsing manifest")
	}
	s.mu.Lock()
	for _, p := range m.Presets {
		s.presets[p.Name] = p
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) saveManifestLocked() error {
	const op = "layout.saveManifest"
	m := manifest{Presets: make([]Preset, 0, len(s.presets))}
	for _, p := range s.presets {
		m.Presets = append(m.Presets, p)
	}
	sort.Slice(m.Presets, func(i, j int) bool { return m.Presets[i].Name < m.Presets[j].Name })
	raw, err := yaml.Marshal(&m)
	if err != nil {
		return errors.InternalWrap(err, op, "encoding manifest")
	}
	if err := os.WriteFile(filepath.Join(s.dir, manifestName), raw, 0o644); err != nil {
		return errors.IOWrap(err, op, "writing manifest")
	}
	return nil
}

// adoptLooseFiles registers preset files that exist on disk without a
// manifest entry. Caller holds the lock.
func (s *Store) adoptLooseFiles() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	known := make(map[string]bool, len(s.presets))
	for _, p := range s.presets {
		known[p.File] = true
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != presetExt || known[entry.Name()] {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), presetExt)
		savedAt := time.Now().UTC()
		if info, err := entry.Info(); err == nil {
			savedAt = info.ModTime().UTC()
		}
		s.presets[name] = Preset{Name: name, File: entry.Name(), SavedAt: savedAt}
	}
}

// pruneMissingLocked drops manifest entries whose files are gone.
// Caller holds the lock.
func (s *Store) pruneMissingLocked() {
	for name, p := range s.presets {
		if _, err := os.Stat(filepath.Join(s.dir, p.File)); os.IsNotExist(err) {
			delete(s.presets, name)
		}
	}
	_ = s.saveManifestLocked()
}

// sanitizeName maps a preset name to a safe file stem.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "preset"
	}
	return b.String()
}
