package session

import (
	"context"

	"vetclinic-client/internal/domain/users"
)

// Refresh recarga las colecciones relevantes al rol actual.
// Cada carga es independiente y best-effort: una falla se loguea y deja la
// colección en su valor anterior, sin frenar a las demás.
func (s *Service) Refresh(ctx context.Context) error {
	u, _, gen, err := s.requireUser()
	if err != nil {
		return err
	}
	s.refresh(ctx, gen, u)
	return nil
}

func (s *Service) refresh(ctx context.Context, gen uint64, u users.User) {
	s.loadPets(ctx, gen)
	s.loadMyPets(ctx, gen, u.ID)
	s.loadAppointments(ctx, gen)

	switch u.Role {
	case users.RoleAdmin:
		s.loadUsers(ctx, gen)
	case users.RoleVet:
		s.loadVetAppointments(ctx, gen, u.ID)
	}
}

func (s *Service) loadPets(ctx context.Context, gen uint64) {
	list, err := s.backend.ListPets(ctx)
	if err != nil {
		s.log.Error("session: load pets failed", map[string]any{"err": err.Error()})
		return
	}
	s.apply(gen, func() { s.pets = list })
}

func (s *Service) loadMyPets(ctx context.Context, gen uint64, ownerID string) {
	list, err := s.backend.ListPetsByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error("session: load my pets failed", map[string]any{"err": err.Error()})
		return
	}
	s.apply(gen, func() { s.myPets = list })
}

func (s *Service) loadAppointments(ctx context.Context, gen uint64) {
	list, err := s.backend.ListAppointments(ctx)
	if err != nil {
		s.log.Error("session: load appointments failed", map[string]any{"err": err.Error()})
		return
	}
	s.apply(gen, func() { s.appointments = list })
}

func (s *Service) loadUsers(ctx context.Context, gen uint64) {
	list, err := s.backend.ListUsers(ctx)
	if err != nil {
		s.log.Error("session: load users failed", map[string]any{"err": err.Error()})
		return
	}
	s.apply(gen, func() { s.users = list })
}

func (s *Service) loadVetAppointments(ctx context.Context, gen uint64, vetID string) {
	list, err := s.backend.ListAppointmentsByVet(ctx, vetID)
	if err != nil {
		s.log.Error("session: load vet appointments failed", map[string]any{"err": err.Error()})
		return
	}
	s.apply(gen, func() { s.vetAppointments = list })
}
