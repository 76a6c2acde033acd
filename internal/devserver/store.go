package devserver

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Store es el storage del backend de desarrollo. Las referencias se guardan
// como ids pelados; el populate se hace en los handlers al responder.
type Store interface {
	CreateUser(ctx context.Context, u users.User, passwordHash []byte) error
	UserByEmail(ctx context.Context, email string) (users.User, []byte, error)
	UserByID(ctx context.Context, id string) (users.User, error)
	ListUsers(ctx context.Context) ([]users.User, error)
	SetUserRole(ctx context.Context, id string, role users.Role) error

	CreatePet(ctx context.Context, p pets.Pet) error
	PetByID(ctx context.Context, id string) (pets.Pet, error)
	ListPets(ctx context.Context) ([]pets.Pet, error)
	ListPetsByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error)

	CreateAppointment(ctx context.Context, a appointments.Appointment) error
	AppointmentByID(ctx context.Context, id string) (appointments.Appointment, error)
	UpdateAppointment(ctx context.Context, a appointments.Appointment) error
	ListAppointments(ctx context.Context) ([]appointments.Appointment, error)
	ListAppointmentsByVet(ctx context.Context, vetID string) ([]appointments.Appointment, error)
}

type memStore struct {
	mu           sync.RWMutex
	usersByID    map[string]users.User
	hashByUserID map[string][]byte
	petsByID     map[string]pets.Pet
	aptsByID     map[string]appointments.Appointment
}

func NewMemStore() Store {
	return &memStore{
		usersByID:    make(map[string]users.User),
		hashByUserID: make(map[string][]byte),
		petsByID:     make(map[string]pets.Pet),
		aptsByID:     make(map[string]appointments.Appointment),
	}
}

func (s *memStore) CreateUser(ctx context.Context, u users.User, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	for _, existing := range s.usersByID {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrAlreadyExists
		}
	}
	s.usersByID[u.ID] = u
	s.hashByUserID[u.ID] = passwordHash
	return nil
}

func (s *memStore) UserByEmail(ctx context.Context, email string) (users.User, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.usersByID {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, s.hashByUserID[u.ID], nil
		}
	}
	return users.User{}, nil, ErrNotFound
}

func (s *memStore) UserByID(ctx context.Context, id string) (users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByID[id]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return u, nil
}

func (s *memStore) ListUsers(ctx context.Context) ([]users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]users.User, 0, len(s.usersByID))
	for _, u := range s.usersByID {
		out = append(out, u)
	}

	// Orden estable por email (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *memStore) SetUserRole(ctx context.Context, id string, role users.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	s.usersByID[id] = u
	return nil
}

func (s *memStore) CreatePet(ctx context.Context, p pets.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := s.petsByID[p.ID]; exists {
		return ErrAlreadyExists
	}
	s.petsByID[p.ID] = p
	return nil
}

func (s *memStore) PetByID(ctx context.Context, id string) (pets.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.petsByID[id]
	if !ok {
		return pets.Pet{}, ErrNotFound
	}
	return p, nil
}

func (s *memStore) ListPets(ctx context.Context) ([]pets.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]pets.Pet, 0, len(s.petsByID))
	for _, p := range s.petsByID {
		out = append(out, p)
	}
	sortPets(out)
	return out, nil
}

func (s *memStore) ListPetsByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range s.petsByID {
		if p.Owner.RefID() == ownerID {
			out = append(out, p)
		}
	}
	sortPets(out)
	return out, nil
}

func (s *memStore) CreateAppointment(ctx context.Context, a appointments.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("appointment id required")
	}
	if _, exists := s.aptsByID[a.ID]; exists {
		return ErrAlreadyExists
	}
	s.aptsByID[a.ID] = a
	return nil
}

func (s *memStore) AppointmentByID(ctx context.Context, id string) (appointments.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.aptsByID[id]
	if !ok {
		return appointments.Appointment{}, ErrNotFound
	}
	return a, nil
}

func (s *memStore) UpdateAppointment(ctx context.Context, a appointments.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.aptsByID[a.ID]; !exists {
		return ErrNotFound
	}
	s.aptsByID[a.ID] = a
	return nil
}

func (s *memStore) ListAppointments(ctx context.Context) ([]appointments.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]appointments.Appointment, 0, len(s.aptsByID))
	for _, a := range s.aptsByID {
		out = append(out, a)
	}
	sortAppointments(out)
	return out, nil
}

func (s *memStore) ListAppointmentsByVet(ctx context.Context, vetID string) ([]appointments.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]appointments.Appointment, 0)
	for _, a := range s.aptsByID {
		if a.Vet.RefID() == vetID {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func sortPets(list []pets.Pet) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func sortAppointments(list []appointments.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// demo accounts del entorno de desarrollo (password: 123)
var seedAccounts = []struct {
	Name  string
	Email string
	Role  users.Role
}{
	{Name: "Администратор", Email: "admin@vet.ru", Role: users.RoleAdmin},
	{Name: "Доктор Айболит", Email: "vet@vet.ru", Role: users.RoleVet},
	{Name: "Иван Петров", Email: "client@vet.ru", Role: users.RoleClient},
}

// Seed crea las cuentas demo si no existen. Idempotente.
func Seed(ctx context.Context, st Store, newID func() string) error {
	for _, acc := range seedAccounts {
		if _, _, err := st.UserByEmail(ctx, acc.Email); err == nil {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		u := users.User{
			ID:    newID(),
			Name:  acc.Name,
			Email: acc.Email,
			Role:  acc.Role,
		}
		if err := st.CreateUser(ctx, u, hash); err != nil && !errors.Is(err, ErrAlreadyExists) {
			return err
		}
	}
	return nil
}
