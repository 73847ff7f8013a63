// Package memory is an in-process store with the same semantics as the
// PostgreSQL repositories. It is used by tests and STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/db"
	"github.com/sportevents/backend/internal/model"
)

type Store struct {
	mu sync.RWMutex

	users         map[uuid.UUID]*model.User
	refreshTokens map[string]*model.RefreshToken
	resetTokens   map[string]*model.PasswordResetToken
	events        map[uuid.UUID]*model.SportEvent
	nextID        int64
}

func New() *Store {
	return &Store{
		users:         make(map[uuid.UUID]*model.User),
		refreshTokens: make(map[string]*model.RefreshToken),
		resetTokens:   make(map[string]*model.PasswordResetToken),
		events:        make(map[uuid.UUID]*model.SportEvent),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, db.ErrConflict
		}
	}
	now := time.Now().UTC()
	u := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Store) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteUser removes a user together with its tokens and events, matching
// the ON DELETE CASCADE foreign keys of the SQL schema.
func (s *Store) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return db.ErrNotFound
	}
	delete(s.users, userID)
	for h, t := range s.refreshTokens {
		if t.UserID == userID {
			delete(s.refreshTokens, h)
		}
	}
	for h, t := range s.resetTokens {
		if t.UserID == userID {
			delete(s.resetTokens, h)
		}
	}
	for id, e := range s.events {
		if e.CreatedBy == userID {
			delete(s.events, id)
		}
	}
	return nil
}

func (s *Store) InsertRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertRefreshLocked(userID, tokenHash, expiresAt)
}

func (s *Store) insertRefreshLocked(userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	if _, ok := s.users[userID]; !ok {
		return db.ErrNotFound
	}
	if _, ok := s.refreshTokens[tokenHash]; ok {
		return db.ErrConflict
	}
	s.nextID++
	s.refreshTokens[tokenHash] = &model.RefreshToken{
		ID:        s.nextID,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Store) FindRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.refreshTokens[tokenHash]
	if !ok || !t.ExpiresAt.After(now) {
		return nil, db.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) DeleteRefreshToken(ctx context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.refreshTokens[tokenHash]
	delete(s.refreshTokens, tokenHash)
	return ok, nil
}

func (s *Store) DeleteRefreshTokensByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for h, t := range s.refreshTokens {
		if t.UserID == userID {
			delete(s.refreshTokens, h)
			n++
		}
	}
	return n, nil
}

func (s *Store) RotateRefreshToken(ctx context.Context, oldHash string, userID uuid.UUID, newHash string, newExpiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.refreshTokens[oldHash]
	if !ok || old.UserID != userID {
		return db.ErrNotFound
	}
	delete(s.refreshTokens, oldHash)
	if err := s.insertRefreshLocked(userID, newHash, newExpiresAt); err != nil {
		s.refreshTokens[oldHash] = old
		return err
	}
	return nil
}

func (s *Store) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for h, t := range s.refreshTokens {
		if !t.ExpiresAt.After(now) {
			delete(s.refreshTokens, h)
			n++
		}
	}
	return n, nil
}

func (s *Store) ReplacePasswordResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return db.ErrNotFound
	}
	if _, ok := s.resetTokens[tokenHash]; ok {
		return db.ErrConflict
	}
	for h, t := range s.resetTokens {
		if t.UserID == userID {
			delete(s.resetTokens, h)
		}
	}
	s.nextID++
	s.resetTokens[tokenHash] = &model.PasswordResetToken{
		ID:        s.nextID,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Store) FindPasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.resetTokens[tokenHash]
	if !ok || !t.ExpiresAt.After(now) {
		return nil, db.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) DeletePasswordResetToken(ctx context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.resetTokens[tokenHash]
	delete(s.resetTokens, tokenHash)
	return ok, nil
}

func (s *Store) DeletePasswordResetTokensByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for h, t := range s.resetTokens {
		if t.UserID == userID {
			delete(s.resetTokens, h)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for h, t := range s.resetTokens {
		if !t.ExpiresAt.After(now) {
			delete(s.resetTokens, h)
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateSportEvent(ctx context.Context, event *model.SportEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[event.CreatedBy]; !ok {
		return db.ErrNotFound
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	cp := *event
	cp.Creator = nil
	s.events[event.ID] = &cp
	return nil
}

func (s *Store) ListSportEvents(ctx context.Context) ([]model.SportEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]model.SportEvent, 0, len(s.events))
	for _, e := range s.events {
		list = append(list, s.withCreatorLocked(e))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Store) GetSportEvent(ctx context.Context, id uuid.UUID) (*model.SportEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := s.withCreatorLocked(e)
	return &out, nil
}

func (s *Store) UpdateSportEvent(ctx context.Context, event *model.SportEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[event.ID]
	if !ok {
		return db.ErrNotFound
	}
	e.Name = event.Name
	e.Sport = event.Sport
	e.MaxParticipants = event.MaxParticipants
	e.StartTime = event.StartTime
	e.EndTime = event.EndTime
	e.UpdatedAt = time.Now().UTC()
	event.UpdatedAt = e.UpdatedAt
	return nil
}

func (s *Store) DeleteSportEvent(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *Store) withCreatorLocked(e *model.SportEvent) model.SportEvent {
	out := *e
	if u, ok := s.users[e.CreatedBy]; ok {
		out.Creator = &model.EventCreator{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return out
}
