// Package storage persists the coordinator's two state files: the settings
// file holding manually disabled schedule entries and the cache of the last
// successfully fetched course calendar. Both are plain JSON, read on startup
// and rewritten on mutation.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	settingsFile = "settings.json"
	cacheFile    = "schedule.json"
)

// Settings is the content of the settings file. Timestamps are stored in
// RFC 3339 format with their UTC offset.
type Settings struct {
	DisabledEntries []time.Time `json:"disabledEntries"`
}

// Store reads and writes the state files under a base directory. The
// directory is environment-selected ("/data" in production, a scratch
// directory in tests); it must be writable.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// ReadSettings returns the persisted settings. A missing settings file is not
// an error: it returns empty settings.
func (s *Store) ReadSettings() (Settings, error) {
	var settings Settings
	body, err := os.ReadFile(filepath.Join(s.path, settingsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings: %w", err)
	}
	if err = json.Unmarshal(body, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return settings, nil
}

func (s *Store) WriteSettings(settings Settings) error {
	body, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err = os.WriteFile(filepath.Join(s.path, settingsFile), body, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// ReadCourseCache returns the raw calendar payload from the last successful
// fetch, or ok=false when no cache exists.
func (s *Store) ReadCourseCache() ([]byte, bool) {
	body, err := os.ReadFile(filepath.Join(s.path, cacheFile))
	if err != nil {
		return nil, false
	}
	return body, true
}

func (s *Store) WriteCourseCache(body []byte) error {
	if err := os.WriteFile(filepath.Join(s.path, cacheFile), body, 0644); err != nil {
		return fmt.Errorf("write course cache: %w", err)
	}
	return nil
}
