package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Session is the client-side authentication state: the bearer token and
// the user it was issued for. It is restored once at client
// construction and cleared on logout; there is no ambient singleton.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool { return s.Token != "" }

// SessionStore persists a Session across client processes.
type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileStore keeps the session as a JSON file, the Go analogue of the
// browser's localStorage token.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Load() (Session, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		// A corrupt session file is treated as logged out.
		return Session{}, nil
	}
	return s, nil
}

func (f *FileStore) Save(s Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(f.Path, b, 0o600)
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore holds the session in-process only.
type MemoryStore struct {
	s Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (Session, error) { return m.s, nil }

func (m *MemoryStore) Save(s Session) error {
	m.s = s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.s = Session{}
	return nil
}
