package classtop

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-errors"
)

// sessionDocument is the on-disk layout. The profile stays a raw blob so a
// corrupt value degrades to "absent" instead of poisoning the token.
type sessionDocument struct {
	Token string          `json:"token,omitempty"`
	User  json.RawMessage `json:"user,omitempty"`
}

// FileStore persists the session as a single JSON document, the file-system
// counterpart of the browser's origin-scoped storage. A missing or unreadable
// file behaves as an empty store.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	logger Logger
}

// NewFileStore returns a store backed by the document at path. Parent
// directories are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: defLogger{},
	}
}

func (s *FileStore) WithLogger(logger Logger) *FileStore {
	s.logger = logger
	return s
}

func (s *FileStore) GetToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := s.load()
	return doc.Token, doc.Token != ""
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	doc.Token = token
	return s.save(doc)
}

func (s *FileStore) RemoveToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	doc.Token = ""
	return s.save(doc)
}

func (s *FileStore) GetUser() (*UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return decodeProfile(s.load().User)
}

func (s *FileStore) SetUser(user *UserInfo) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to serialize user profile")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	doc.User = payload
	return s.save(doc)
}

func (s *FileStore) RemoveUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	doc.User = nil
	return s.save(doc)
}

// SetSession writes token and profile in one document update so no reader
// observes one without the other.
func (s *FileStore) SetSession(token string, user *UserInfo) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to serialize user profile")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(sessionDocument{Token: token, User: payload})
}

// Clear removes both token and profile. Clearing an empty store is a no-op.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	return s.save(sessionDocument{})
}

// load must run under the lock
func (s *FileStore) load() sessionDocument {
	doc := sessionDocument{}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		return doc
	}

	if err := json.Unmarshal(payload, &doc); err != nil {
		s.logger.Warn("session file is not valid JSON, treating as empty", "path", s.path, "error", err)
		return sessionDocument{}
	}

	return doc
}

func (s *FileStore) save(doc sessionDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to serialize session document")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to create session directory")
	}

	// write-then-rename so readers never see a partial document
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to create session temp file")
	}

	name := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Wrap(err, errors.CategoryInternal, "unable to write session document")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Wrap(err, errors.CategoryInternal, "unable to close session temp file")
	}

	if err := os.Chmod(name, 0o600); err != nil {
		os.Remove(name)
		return errors.Wrap(err, errors.CategoryInternal, "unable to set session file mode")
	}

	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return errors.Wrap(err, errors.CategoryInternal, "unable to replace session file")
	}

	return nil
}

// MemoryStore keeps the session in process memory. Used by tests and by
// hosts that want purely ephemeral sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) GetToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) RemoveToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemoryStore) GetUser() (*UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeProfile(s.user)
}

func (s *MemoryStore) SetUser(user *UserInfo) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to serialize user profile")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = payload
	return nil
}

func (s *MemoryStore) RemoveUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}

func (s *MemoryStore) SetSession(token string, user *UserInfo) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to serialize user profile")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = payload
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}

// decodeProfile treats any undecodable profile blob as absent rather than
// surfacing an error.
func decodeProfile(payload json.RawMessage) (*UserInfo, bool) {
	if len(payload) == 0 || string(payload) == "null" {
		return nil, false
	}

	user := &UserInfo{}
	if err := json.Unmarshal(payload, user); err != nil {
		return nil, false
	}

	return user, true
}

var _ Store = (*FileStore)(nil)
var _ Store = (*MemoryStore)(nil)
