package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store persists the analysis record for one meeting as pretty-printed JSON.
// The write path is fixed at construction and stays stable for the analyst's
// lifetime; loading scans for the newest prior file with the same meeting
// identity so a restarted analyst recovers its state.
type Store struct {
	dataDir   string
	meetingID string
	path      string
}

// NewStore creates a store rooted at dataDir for the given meeting.
func NewStore(dataDir, meetingID string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create analysis data directory: %w", err)
	}

	fileName := fmt.Sprintf("meeting_analysis_%s_%d.json", meetingID, time.Now().Unix())
	return &Store{
		dataDir:   dataDir,
		meetingID: meetingID,
		path:      filepath.Join(dataDir, fileName),
	}, nil
}

// Path returns the file this store writes to.
func (s *Store) Path() string {
	return s.path
}

// Save serializes the record to the store's path.
func (s *Store) Save(record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis record: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write analysis file: %w", err)
	}
	return nil
}

// Load deserializes the newest persisted record for this store's meeting
// identity over record, fully overwriting it. No prior file is not an error;
// record is left untouched and the caller starts fresh.
func (s *Store) Load(record *Record) error {
	path := s.latestPath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read analysis file: %w", err)
	}

	if err := json.Unmarshal(data, record); err != nil {
		return fmt.Errorf("failed to parse analysis file %s: %w", path, err)
	}
	return nil
}

// LoadLatest reads the newest persisted record for a meeting without
// creating a new analysis file. It returns nil when no analysis exists.
func LoadLatest(dataDir, meetingID string) (*Record, error) {
	s := &Store{dataDir: dataDir, meetingID: meetingID}
	if s.latestPath() == "" {
		return nil, nil
	}

	record := NewRecord(meetingID, "")
	if err := s.Load(record); err != nil {
		return nil, err
	}
	return record, nil
}

// latestPath returns the most recently created analysis file for this
// meeting, preferring the highest creation timestamp in the filename.
func (s *Store) latestPath() string {
	prefix := fmt.Sprintf("meeting_analysis_%s_", s.meetingID)
	matches, err := filepath.Glob(filepath.Join(s.dataDir, prefix+"*.json"))
	if err != nil {
		return ""
	}

	best := ""
	bestStamp := int64(-1)
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".json")
		stamp, err := strconv.ParseInt(strings.TrimPrefix(name, prefix), 10, 64)
		if err != nil {
			continue
		}
		if stamp > bestStamp {
			best, bestStamp = m, stamp
		}
	}
	return best
}
