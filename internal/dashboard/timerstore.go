package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunningTimer is what survives a restart of the client while a timer runs.
type RunningTimer struct {
	UserID         string    `json:"userId"`
	ProjectID      string    `json:"projectId"`
	SessionID      string    `json:"sessionId"`
	StartTimestamp time.Time `json:"startTimestamp"`
}

// Elapsed is cosmetic. The server measures the session itself.
func (t RunningTimer) Elapsed(now time.Time) time.Duration {
	d := now.Sub(t.StartTimestamp)
	if d < 0 {
		return 0
	}
	return d
}

// TimerStore keeps the running timer in a file, by default ~/.sakura/timer.json.
type TimerStore struct {
	Path string
}

func NewTimerStore(configDir string) *TimerStore {
	return &TimerStore{Path: filepath.Join(configDir, "timer.json")}
}

// Load returns the stored timer for userID, or nil when none is stored for that user.
func (s *TimerStore) Load(userID string) (*RunningTimer, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var t RunningTimer
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	if t.UserID != userID || t.SessionID == "" {
		return nil, nil
	}
	return &t, nil
}

func (s *TimerStore) Save(t RunningTimer) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

func (s *TimerStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
