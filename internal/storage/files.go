// Package storage persists raw and derived JSON documents as flat files
// under the data directory. Files are the storage medium of record.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/models"
)

type Store struct {
	dataDir string
}

func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Path resolves a file name relative to the data directory.
func (s *Store) Path(rel string) string {
	return filepath.Join(s.dataDir, rel)
}

// Write persists content trimmed of surrounding whitespace, creating parent
// directories as needed. Raw remote bodies pass through here unmodified apart
// from the trim, so on-disk content stays byte-for-byte what was received.
func (s *Store) Write(rel, content string) error {
	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)), constants.FilePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// WriteJSON marshals v and persists it like Write.
func (s *Store) WriteJSON(rel string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", rel, err)
	}
	return s.Write(rel, string(data))
}

// ReadRaw returns the file contents as stored.
func (s *Store) ReadRaw(rel string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return data, nil
}

// ReadJSON reads and unmarshals a stored JSON document.
func (s *Store) ReadJSON(rel string, v any) error {
	data, err := s.ReadRaw(rel)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", rel, err)
	}
	return nil
}

// LoadRoster reads the static user roster. A missing roster is a startup
// failure, not a per-item condition.
func (s *Store) LoadRoster() (models.Roster, error) {
	var roster models.Roster
	if err := s.ReadJSON(constants.FileUsers, &roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// ProfileFile is the raw profile fragment location for one user.
func ProfileFile(userNo string) string {
	return filepath.Join(constants.DirProfiles, userNo+".json")
}

// CourseRecordFile is the raw record fragment location for one user+category.
func CourseRecordFile(userNo, categoryID string) string {
	return filepath.Join(constants.DirCourseRecords, userNo+"-"+categoryID+".json")
}
