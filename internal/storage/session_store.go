package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// Persisted entry names.
const (
	KeyAuthToken = "authToken"
	KeyUsername  = "username"
)

// sealInfo binds derived sealing keys to this use.
const sealInfo = "delivtrack session token v1"

// SessionStore keeps at most one session in a KVEngine.
//
// Both entries are written and cleared in one batch. Load reports a
// session only when both entries are present and non-empty.
type SessionStore struct {
	engine KVEngine
	sealer *Sealer
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithSealer seals the token at rest.
func WithSealer(sealer *Sealer) SessionStoreOption {
	return func(s *SessionStore) {
		s.sealer = sealer
	}
}

// NewSessionStore creates a store over engine.
func NewSessionStore(engine KVEngine, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTokenSealer derives the token sealer from a secret.
func NewTokenSealer(secret []byte) (*Sealer, error) {
	return NewSealer(secret, sealInfo)
}

// Save writes both entries atomically, replacing any previous session.
func (s *SessionStore) Save(ctx context.Context, token, username string) error {
	if token == "" || username == "" {
		return domain.ErrInvalidArgument.WithDetails("token and username are required")
	}

	value := []byte(token)
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(value, []byte(KeyAuthToken))
		if err != nil {
			return domain.ErrSealed.WithCause(err)
		}
		value = sealed
	}

	err := s.engine.Batch(ctx, []Mutation{
		{Key: []byte(KeyAuthToken), Value: value},
		{Key: []byte(KeyUsername), Value: []byte(username)},
	})
	if err != nil {
		return domain.ErrStorage.WithCause(fmt.Errorf("save session: %w", err))
	}
	return nil
}

// Load returns the stored session. ok is false when either entry is
// missing or empty, or when a sealed token cannot be opened.
func (s *SessionStore) Load(ctx context.Context) (domain.Session, bool, error) {
	token, err := s.get(ctx, KeyAuthToken)
	if err != nil || token == nil {
		return domain.Session{}, false, err
	}
	username, err := s.get(ctx, KeyUsername)
	if err != nil || username == nil {
		return domain.Session{}, false, err
	}

	if s.sealer != nil {
		opened, err := s.sealer.Open(token, []byte(KeyAuthToken))
		if err != nil {
			return domain.Session{}, false, nil
		}
		token = opened
	}

	sess := domain.Session{Token: string(token), Username: string(username)}
	if !sess.Valid() {
		return domain.Session{}, false, nil
	}
	return sess, true, nil
}

// Clear removes both entries. Clearing an empty store succeeds.
func (s *SessionStore) Clear(ctx context.Context) error {
	err := s.engine.Batch(ctx, []Mutation{
		{Key: []byte(KeyAuthToken), Delete: true},
		{Key: []byte(KeyUsername), Delete: true},
	})
	if err != nil {
		return domain.ErrStorage.WithCause(fmt.Errorf("clear session: %w", err))
	}
	return nil
}

// Close closes the underlying engine.
func (s *SessionStore) Close() error {
	return s.engine.Close()
}

func (s *SessionStore) get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.engine.Get(ctx, []byte(key))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrStorage.WithCause(fmt.Errorf("load %s: %w", key, err))
	}
	return v, nil
}
