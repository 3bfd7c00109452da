package classtop

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// SessionRecord is the single-row persistence model used by BunStore.
type SessionRecord struct {
	bun.BaseModel `bun:"table:classtop_sessions,alias:cts"`
	ID            int64  `bun:"id,pk" json:"id"`
	Token         string `bun:"token" json:"token"`
	User          []byte `bun:"user_profile" json:"user_profile"`
}

// BunStore persists the session in a bun-managed table for host apps that
// already run bun persistence. Same contract as FileStore.
type BunStore struct {
	mu sync.Mutex
	db *bun.DB
}

// NewBunStore creates the backing table if needed and returns the store.
func NewBunStore(ctx context.Context, db *bun.DB) (*BunStore, error) {
	if _, err := db.NewCreateTable().
		Model((*SessionRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to create session table")
	}

	return &BunStore{db: db}, nil
}

func (s *BunStore) GetToken() (string, bool) {
	record, ok := s.load()
	if !ok {
		return "", false
	}
	return record.Token, record.Token != ""
}

func (s *BunStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, _ := s.load()
	record.Token = token
	return s.save(record)
}

func (s *BunStore) RemoveToken() error {
	return s.SetToken("")
}

func (s *BunStore) GetUser() (*UserInfo, bool) {
	record, ok := s.load()
	if !ok {
		return nil, false
	}
	return decodeProfile(record.User)
}

func (s *BunStore) SetUser(user *UserInfo) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to serialize user profile")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, _ := s.load()
	record.User = payload
	return s.save(record)
}

func (s *BunStore) RemoveUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, _ := s.load()
	record.User = nil
	return s.save(record)
}

func (s *BunStore) SetSession(token string, user *UserInfo) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to serialize user profile")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(SessionRecord{ID: sessionRowID, Token: token, User: payload})
}

func (s *BunStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(SessionRecord{ID: sessionRowID})
}

// sessionRowID pins the store to exactly one active session per database,
// matching the one-token-per-origin rule.
const sessionRowID int64 = 1

func (s *BunStore) load() (SessionRecord, bool) {
	record := SessionRecord{ID: sessionRowID}

	err := s.db.NewSelect().
		Model(&record).
		Where("?TableAlias.id = ?", sessionRowID).
		Limit(1).
		Scan(context.Background())

	if err != nil {
		return SessionRecord{ID: sessionRowID}, false
	}

	return record, true
}

func (s *BunStore) save(record SessionRecord) error {
	record.ID = sessionRowID

	_, err := s.db.NewInsert().
		Model(&record).
		On("CONFLICT (id) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("user_profile = EXCLUDED.user_profile").
		Exec(context.Background())

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to persist session record")
	}

	return nil
}

var _ Store = (*BunStore)(nil)
