// internal/wizard/state.go
package wizard

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// State is the typed client-side store. Every field the wizard persists
// between runs lives here; nothing is stashed under ad-hoc string keys.
type State struct {
	UserEmail         string `json:"userEmail,omitempty"`
	PartnerID         string `json:"partnerId,omitempty"`
	PartnerName       string `json:"partnerName,omitempty"`
	PartnerCode       string `json:"partnerCode,omitempty"`
	IsPartner         bool   `json:"isPartner,omitempty"`
	CurrentSessionID  string `json:"currentSessionId,omitempty"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
}

// ClearAuth drops everything tied to the current identity. Called when the
// backend demands re-authentication.
func (s *State) ClearAuth() {
	s.PartnerID = ""
	s.PartnerName = ""
	s.PartnerCode = ""
	s.IsPartner = false
}

// StateStore persists wizard state between runs.
type StateStore interface {
	Load() (*State, error)
	Save(*State) error
}

// FileStore keeps the state as a JSON file, the desktop analogue of browser
// local storage.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (*State, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return &State{}, nil
	}
	if err != nil {
		return nil, err
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt state file should not brick the wizard.
		return &State{}, nil
	}
	return &s, nil
}

func (f *FileStore) Save(s *State) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}

// MemoryStore is the in-process store used in tests and ephemeral runs.
type MemoryStore struct {
	state State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*State, error) {
	s := m.state
	return &s, nil
}

func (m *MemoryStore) Save(s *State) error {
	m.state = *s
	return nil
}
