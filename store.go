package portalauth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// StorageKey is the namespaced key under which the session record is kept.
const StorageKey = "auth-storage"

// storageSchemaVersion is the current record shape. Records written before
// versioning carry no marker and are migrated on load.
const storageSchemaVersion = 1

// PersistedSession is the subset of session state written to durable storage
// on every mutation and read once at process start.
type PersistedSession struct {
	SchemaVersion   int    `json:"schemaVersion,omitempty"`
	User            *User  `json:"user,omitempty"`
	AccessToken     string `json:"accessToken,omitempty"`
	RefreshToken    string `json:"refreshToken,omitempty"`
	TokenExpiresAt  int64  `json:"tokenExpiresAt,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated,omitempty"`
}

// migrate tolerates records written by older shapes: any missing field is
// treated as absent rather than a failure.
func (p *PersistedSession) migrate() *PersistedSession {
	if p == nil {
		return nil
	}
	if p.SchemaVersion == 0 {
		p.SchemaVersion = storageSchemaVersion
	}
	if p.User == nil {
		p.IsAuthenticated = false
	}
	if p.AccessToken == "" {
		p.TokenExpiresAt = 0
	}
	return p
}

// Clone returns a deep copy so store consumers never alias manager state.
func (p *PersistedSession) Clone() *PersistedSession {
	if p == nil {
		return nil
	}
	cp := *p
	if p.User != nil {
		u := *p.User
		cp.User = &u
	}
	return &cp
}

var _ Store = &MemoryStore{}

// MemoryStore keeps the record in process memory. It is the default store
// and the one tests use.
type MemoryStore struct {
	mu     sync.RWMutex
	record *PersistedSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*PersistedSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.record == nil {
		return nil, false
	}
	return s.record.Clone().migrate(), true
}

func (s *MemoryStore) Save(record *PersistedSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = record.Clone()
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
}

var _ Store = &FileStore{}

// FileStore persists the record as a JSON document on disk so independent
// client processes observe the same session.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger Logger
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: defLogger{},
	}
}

func (s *FileStore) WithLogger(logger Logger) *FileStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *FileStore) Load() (*PersistedSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}

	record := &PersistedSession{}
	if err := json.Unmarshal(raw, record); err != nil {
		s.logger.Warn("session store: discarding corrupt record: %v", err)
		return nil, false
	}

	return record.migrate(), true
}

func (s *FileStore) Save(record *PersistedSession) {
	if record == nil {
		s.Clear()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record = record.Clone()
	record.SchemaVersion = storageSchemaVersion

	raw, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("session store: marshal failed: %v", err)
		return
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Warn("session store: mkdir failed: %v", err)
		return
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		s.logger.Warn("session store: write failed: %v", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warn("session store: rename failed: %v", err)
	}
}

func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("session store: clear failed: %v", err)
	}
}
