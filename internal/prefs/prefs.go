// Package prefs keeps the small per-user settings that outlive a session.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jask/embark/internal/state"
)

const prefsFile = "prefs.json"

// Prefs are the persisted user preferences.
type Prefs struct {
	LastSubject string `json:"last_subject,omitempty"`
	LinkMode    bool   `json:"link_mode"`
}

// Store reads and writes Prefs under Dir.
type Store struct {
	Dir string
}

func (s *Store) path() (string, error) {
	dir := s.Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "embark")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, prefsFile), nil
}

// Save writes p, replacing the previous file atomically.
func (s *Store) Save(p Prefs) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the saved prefs, or zero Prefs if none were saved.
func (s *Store) Load() (Prefs, error) {
	path, err := s.path()
	if err != nil {
		return Prefs{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Prefs{}, nil
		}
		return Prefs{}, err
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return p, nil
}

// FromState picks the persisted fields out of s.
func FromState(s state.State) Prefs {
	p := Prefs{LinkMode: s.Subject.LinkMode}
	if s.Subject.ActiveSubject != nil {
		p.LastSubject = s.Subject.ActiveSubject.ID
	}
	return p
}

// Watch saves prefs whenever the persisted part of the store's state changes.
// It returns when ctx is done or the subscription is closed.
func Watch(ctx context.Context, st *state.Store, ps *Store, log zerolog.Logger) {
	changes, cancel := st.Subscribe()
	defer cancel()

	last, err := ps.Load()
	if err != nil {
		log.Warn().Err(err).Msg("load prefs")
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			cur := FromState(st.Snapshot())
			if cur == last {
				continue
			}
			if err := ps.Save(cur); err != nil {
				log.Warn().Err(err).Msg("save prefs")
				continue
			}
			last = cur
			log.Debug().Str("last_subject", cur.LastSubject).Bool("link_mode", cur.LinkMode).Msg("prefs saved")
		}
	}
}
