package memory

import (
	"context"
	"sync"

	"vetclinic-client/internal/domain/users"
	"vetclinic-client/internal/ports/sessionstore"
)

// Store guarda la identidad en memoria (tests / modo efímero).
type Store struct {
	mu   sync.RWMutex
	user users.User
	set  bool
}

var _ sessionstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Save(ctx context.Context, u users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = u
	s.set = true
	return nil
}

func (s *Store) Load(ctx context.Context) (users.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return users.User{}, false, nil
	}
	return s.user, true, nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = users.User{}
	s.set = false
	return nil
}
