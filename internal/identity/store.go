package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore mirrors an authenticated session to disk so that consecutive
// CLI invocations share it.
type FileStore struct {
	path string
}

type persisted struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is $XDG_CONFIG_HOME/bookfinder/session.json, falling back to
// the platform's user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bookfinder", "session.json"), nil
}

func (f *FileStore) Path() string { return f.path }

// Load returns the stored grant. ok is false when nothing is stored.
func (f *FileStore) Load() (Grant, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Grant{}, false, nil
	}
	if err != nil {
		return Grant{}, false, fmt.Errorf("read session: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return Grant{}, false, fmt.Errorf("decode session %s: %w", f.path, err)
	}
	if p.AccessToken == "" {
		return Grant{}, false, nil
	}
	return Grant{User: p.User, AccessToken: p.AccessToken, RefreshToken: p.RefreshToken, ExpiresAt: p.ExpiresAt}, true, nil
}

func (f *FileStore) Save(g Grant) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(persisted{
		User:         g.User,
		AccessToken:  g.AccessToken,
		RefreshToken: g.RefreshToken,
		ExpiresAt:    g.ExpiresAt,
	}, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Mirror loads any stored grant into s and keeps the file in step with
// later changes. onErr receives write failures and may be nil.
func (f *FileStore) Mirror(s *Session, onErr func(error)) (unsubscribe func(), err error) {
	g, ok, err := f.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		s.Restore(g)
	}

	return s.Subscribe(func(snap Snapshot) {
		var err error
		switch snap.State {
		case Authenticated:
			if g, ok := s.Grant(); ok {
				err = f.Save(g)
			}
		case Anonymous:
			err = f.Clear()
		}
		if err != nil && onErr != nil {
			onErr(err)
		}
	}), nil
}
