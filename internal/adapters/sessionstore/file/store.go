package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vetclinic-client/internal/domain/users"
	"vetclinic-client/internal/ports/sessionstore"
)

// fileName es la clave fija del slot (el "currentUser" del cliente web).
const fileName = "currentUser.json"

// Store persiste la identidad como JSON en disco.
// Es el análogo del localStorage: se lee al arrancar y se borra en logout.
type Store struct {
	path string
}

var _ sessionstore.Store = (*Store)(nil)

// New crea el store en dir. Si dir es vacío usa el config dir del usuario
// (~/.config/vetclinic en Linux).
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("sessionstore/file: resolve config dir: %w", err)
		}
		dir = filepath.Join(base, "vetclinic")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("sessionstore/file: mkdir: %w", err)
	}

	return &Store{path: filepath.Join(dir, fileName)}, nil
}

func (s *Store) Save(ctx context.Context, u users.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("sessionstore/file: marshal: %w", err)
	}

	// Escritura vía tmp + rename para no dejar un slot a medias.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("sessionstore/file: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("sessionstore/file: rename: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (users.User, bool, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return users.User{}, false, nil
		}
		return users.User{}, false, fmt.Errorf("sessionstore/file: read: %w", err)
	}

	var u users.User
	if err := json.Unmarshal(b, &u); err != nil {
		// Slot corrupto: lo tratamos como vacío en vez de bloquear el arranque.
		return users.User{}, false, nil
	}
	if strings.TrimSpace(u.ID) == "" {
		return users.User{}, false, nil
	}
	return u, true, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("sessionstore/file: remove: %w", err)
	}
	return nil
}

// Path expone la ubicación del slot (debug / tests).
func (s *Store) Path() string {
	return s.path
}
