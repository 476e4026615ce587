// Package store is the flat-JSON document store behind follows, reading
// progress, notifications and settings. Single process, single writer;
// every mutation rewrites the document atomically via a temp file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FollowedWork is a user's subscription to a work for update tracking.
type FollowedWork struct {
	ID               string  `json:"id"`
	Source           string  `json:"source"`
	Title            string  `json:"title"`
	URL              string  `json:"url"`
	LastKnownChapter float64 `json:"lastKnownChapter"`
	ImportedProgress float64 `json:"importedReadingProgress,omitempty"`
	Status           string  `json:"status,omitempty"`
}

// Notification is one new-chapter event surfaced to the user.
type Notification struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	MangaID           string    `json:"mangaId"`
	Title             string    `json:"title"`
	OldChapter        float64   `json:"oldChapter"`
	NewChapter        float64   `json:"newChapter"`
	NextChapterToRead float64   `json:"nextChapterToRead"`
	Source            string    `json:"source"`
	SourceURL         string    `json:"sourceUrl"`
	CreatedAt         time.Time `json:"createdAt"`
	Read              bool      `json:"read"`
}

// Settings are the user-tunable knobs the orchestrator reads.
type Settings struct {
	EnabledProviders      []string `json:"enabledProviders,omitempty"`
	NotificationProviders []string `json:"notificationProviders,omitempty"`
	RestrictToKnownSource bool     `json:"restrictToKnownSource"`
}

type document struct {
	Follows       []FollowedWork     `json:"follows"`
	Progress      map[string]float64 `json:"progress"`
	Notifications []Notification     `json:"notifications"`
	Settings      Settings           `json:"settings"`
}

// JSONStore persists the document at a single path.
type JSONStore struct {
	path string

	mu  sync.Mutex
	doc document
}

// Open loads the store at path, creating an empty document when the file
// does not exist yet.
func Open(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}
	s.doc.Progress = make(map[string]float64)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}
	if s.doc.Progress == nil {
		s.doc.Progress = make(map[string]float64)
	}
	return s, nil
}

// saveLocked writes the document atomically. Caller holds mu.
func (s *JSONStore) saveLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// FollowedWorks returns a copy of every follow.
func (s *JSONStore) FollowedWorks() []FollowedWork {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FollowedWork, len(s.doc.Follows))
	copy(out, s.doc.Follows)
	return out
}

// AddFollow inserts or replaces a follow by ID.
func (s *JSONStore) AddFollow(w FollowedWork) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.doc.Follows {
		if existing.ID == w.ID {
			s.doc.Follows[i] = w
			return s.saveLocked()
		}
	}
	s.doc.Follows = append(s.doc.Follows, w)
	return s.saveLocked()
}

// ReadingProgress returns the explicit reading-progress record for a
// work, if one exists.
func (s *JSONStore) ReadingProgress(workID string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.doc.Progress[workID]
	return p, ok
}

// SetReadingProgress records the chapter the user has read up to.
func (s *JSONStore) SetReadingProgress(workID string, chapter float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Progress[workID] = chapter
	return s.saveLocked()
}

// UpdateLastKnownChapter persists a newly discovered latest chapter for
// a followed work.
func (s *JSONStore) UpdateLastKnownChapter(workID string, chapter float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Follows {
		if s.doc.Follows[i].ID == workID {
			s.doc.Follows[i].LastKnownChapter = chapter
			return s.saveLocked()
		}
	}
	return fmt.Errorf("unknown followed work %q", workID)
}

// InsertNotification appends a notification unless an identical one
// (same work, same target chapter) already exists. De-duplication lives
// here so repeated update checks stay idempotent.
func (s *JSONStore) InsertNotification(n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.doc.Notifications {
		if existing.MangaID == n.MangaID && existing.NewChapter == n.NewChapter {
			return nil
		}
	}
	s.doc.Notifications = append(s.doc.Notifications, n)
	return s.saveLocked()
}

// Notifications returns a copy of all stored notifications.
func (s *JSONStore) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.doc.Notifications))
	copy(out, s.doc.Notifications)
	return out
}

// Settings returns the stored settings.
func (s *JSONStore) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Settings
}

// SetSettings replaces the stored settings.
func (s *JSONStore) SetSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Settings = settings
	return s.saveLocked()
}
