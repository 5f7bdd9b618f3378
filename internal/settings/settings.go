// Package settings persists user-adjustable runtime settings as a
// JSON document addressed by dot-separated paths, with change events
// and a watcher for edits made outside the process.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/lingoflow-ai/lingoflow/internal/event"
	"github.com/lingoflow-ai/lingoflow/internal/logging"
)

// ErrNotFound is returned by Get for an absent path.
var ErrNotFound = errors.New("setting not found")

// Store is a persisted key/value settings document. Values are
// addressed by dot-separated paths ("provider.openai.model"). Every
// Set writes the whole document atomically.
type Store struct {
	path string
	bus  *event.Bus
	lock *fileLock

	mu     sync.RWMutex
	values map[string]any

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Open loads the settings document at path, creating an empty store
// if the file does not exist. bus may be nil.
func Open(path string, bus *event.Bus) (*Store, error) {
	s := &Store{
		path:   path,
		bus:    bus,
		lock:   newFileLock(path),
		values: make(map[string]any),
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload replaces the in-memory document with the file's contents.
func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}

	values := make(map[string]any)
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// Get returns the value at the dot-separated path.
func (s *Store) Get(path string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cur any = s.values
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, ErrNotFound
		}
		cur, ok = m[key]
		if !ok {
			return nil, ErrNotFound
		}
	}
	return cur, nil
}

// GetString returns the string at path, or fallback when the path is
// absent or not a string.
func (s *Store) GetString(path, fallback string) string {
	v, err := s.Get(path)
	if err != nil {
		return fallback
	}
	str, ok := v.(string)
	if !ok {
		return fallback
	}
	return str
}

// Set stores value at the dot-separated path, creating intermediate
// objects as needed, and persists the document. A settings.changed
// event is published after a successful write.
func (s *Store) Set(path string, value any) error {
	s.mu.Lock()
	cur := s.values
	keys := strings.Split(path, ".")
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[key] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		return err
	}

	if s.bus != nil {
		s.bus.Publish(event.Event{
			Type: event.SettingsChanged,
			Data: event.SettingsChangedData{Path: path, Value: value},
		})
	}
	return nil
}

// Delete removes the value at path. Deleting an absent path is not an
// error.
func (s *Store) Delete(path string) error {
	s.mu.Lock()
	cur := s.values
	keys := strings.Split(path, ".")
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			s.mu.Unlock()
			return nil
		}
		cur = next
	}
	delete(cur, keys[len(keys)-1])
	s.mu.Unlock()

	return s.persist()
}

// All returns a deep copy of the whole document.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	data, _ := json.Marshal(s.values)
	s.mu.RUnlock()

	out := make(map[string]any)
	json.Unmarshal(data, &out)
	return out
}

// persist writes the document to a temp file and renames it into
// place, under the cross-process lock.
func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock settings: %w", err)
	}
	defer s.lock.Unlock()

	s.mu.RLock()
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename settings: %w", err)
	}
	return nil
}

// Watch reloads the document when the file changes on disk and
// publishes a settings.changed event with an empty path. It returns
// once the watcher is installed.
func (s *Store) Watch() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors replace files by rename, which a
	// file-level watch loses track of.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch settings dir: %w", err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != s.path {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := s.reload(); err != nil {
					logging.Logger.Warn().Err(err).Msg("failed to reload settings")
					continue
				}
				if s.bus != nil {
					s.bus.Publish(event.Event{
						Type: event.SettingsChanged,
						Data: event.SettingsChangedData{},
					})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Logger.Warn().Err(err).Msg("settings watcher error")
			}
		}
	}()
	return nil
}

// Close stops the watcher, if one is running.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	<-s.done
	s.watcher = nil
	return err
}
