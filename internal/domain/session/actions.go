package session

import (
	"context"
	"strings"

	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
	"vetclinic-client/internal/ports/backend"
)

// Todas las mutaciones siguen el mismo contrato: precondición local, llamada
// al backend (que es la autoridad final) y, en éxito, actualización de las
// colecciones afectadas. En fallo no se toca ningún estado cacheado y no se
// reintenta; la sesión sobrevive.

type AddPetInput struct {
	Name  string
	Type  string
	Breed string
	Age   string
}

// AddPet registra una mascota del usuario actual. Cualquier rol autenticado.
// En éxito la mascota entra a las caches de todas-las-mascotas y mis-mascotas
// (exactamente una vez) y la vista pasa a mis-mascotas.
func (s *Service) AddPet(ctx context.Context, in AddPetInput) (pets.Pet, error) {
	u, _, gen, err := s.requireUser()
	if err != nil {
		return pets.Pet{}, err
	}

	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Type) == "" {
		return pets.Pet{}, ErrInvalidInput
	}

	p, err := s.backend.CreatePet(ctx, backend.CreatePetInput{
		Name:    in.Name,
		Type:    in.Type,
		Breed:   in.Breed,
		Age:     in.Age,
		OwnerID: u.ID,
	})
	if err != nil {
		return pets.Pet{}, err
	}

	s.apply(gen, func() {
		if !containsPet(s.pets, p.ID) {
			s.pets = append(s.pets, p)
		}
		if !containsPet(s.myPets, p.ID) {
			s.myPets = append(s.myPets, p)
		}
		s.active = TabMyPets
	})
	return p, nil
}

type CreateAppointmentInput struct {
	PetID  string
	Date   string
	Time   string
	Reason string
}

// CreateAppointment crea una cita (rol client) para una mascota propia.
// El backend la crea en estado pending. En éxito la cita entra a la cache
// de citas y la vista pasa a mis-citas.
func (s *Service) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (appointments.Appointment, error) {
	u, _, gen, err := s.requireUser()
	if err != nil {
		return appointments.Appointment{}, err
	}
	if u.Role != users.RoleClient {
		return appointments.Appointment{}, ErrForbidden
	}

	s.mu.Lock()
	hasPets := len(s.myPets) > 0
	s.mu.Unlock()
	if !hasPets {
		return appointments.Appointment{}, ErrBadState
	}

	if strings.TrimSpace(in.PetID) == "" ||
		strings.TrimSpace(in.Date) == "" ||
		strings.TrimSpace(in.Time) == "" ||
		strings.TrimSpace(in.Reason) == "" {
		return appointments.Appointment{}, ErrInvalidInput
	}

	apt, err := s.backend.CreateAppointment(ctx, backend.CreateAppointmentInput{
		PetID:   in.PetID,
		Date:    in.Date,
		Time:    in.Time,
		Reason:  in.Reason,
		OwnerID: u.ID,
	})
	if err != nil {
		return appointments.Appointment{}, err
	}

	s.apply(gen, func() {
		if !containsAppointment(s.appointments, apt.ID) {
			s.appointments = append(s.appointments, apt)
		}
		s.active = TabMyAppointments
	})
	return apt, nil
}

// ChangeUserRole (admin) cambia el rol de otro usuario y re-lee la colección
// completa de usuarios.
func (s *Service) ChangeUserRole(ctx context.Context, userID string, role users.Role) error {
	u, sctx, gen, err := s.requireUser()
	if err != nil {
		return err
	}
	if u.Role != users.RoleAdmin {
		return ErrForbidden
	}
	if strings.TrimSpace(userID) == "" || !role.IsValid() {
		return ErrInvalidInput
	}

	if err := s.backend.ChangeUserRole(ctx, userID, role); err != nil {
		return err
	}

	s.loadUsers(sctx, gen)
	return nil
}

// ConfirmAppointment (admin) confirma una cita pending.
func (s *Service) ConfirmAppointment(ctx context.Context, appointmentID string) error {
	u, sctx, gen, err := s.requireUser()
	if err != nil {
		return err
	}

	apt, ok := s.findAppointment(appointmentID)
	if !ok {
		return ErrNotFound
	}

	// La tabla de transiciones decide qué acción se ofrece desde qué estado.
	t, ok := appointments.TransitionFor(apt.Status, appointments.StatusConfirmed)
	if !ok {
		return ErrBadState
	}
	if !t.Allows(u.Role) {
		return ErrForbidden
	}

	if err := s.backend.ConfirmAppointment(ctx, appointmentID); err != nil {
		return err
	}

	s.loadAppointments(sctx, gen)
	return nil
}

// AssignVet (vet) asigna al veterinario actual una cita sin veterinario.
// Una vez asignada, la acción deja de ofrecerse (vetId es inmutable acá).
func (s *Service) AssignVet(ctx context.Context, appointmentID string) error {
	u, sctx, gen, err := s.requireUser()
	if err != nil {
		return err
	}
	if u.Role != users.RoleVet {
		return ErrForbidden
	}

	apt, ok := s.findAppointment(appointmentID)
	if !ok {
		return ErrNotFound
	}
	if apt.HasVet() {
		return ErrBadState
	}

	if err := s.backend.AssignVet(ctx, appointmentID, u.ID); err != nil {
		return err
	}

	s.loadAppointments(sctx, gen)
	s.loadVetAppointments(sctx, gen, u.ID)
	return nil
}

// UpdateStatus (vet/admin) sobreescribe el status de una cita. No valida el
// orden de la transición (el backend es la autoridad), pero sí que el valor
// sea uno de los cinco definidos y que completed venga con diagnóstico y
// tratamiento — eso se corta antes de tocar la red.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID string, status appointments.Status, diagnosis, treatment string) error {
	u, sctx, gen, err := s.requireUser()
	if err != nil {
		return err
	}
	if u.Role != users.RoleVet && u.Role != users.RoleAdmin {
		return ErrForbidden
	}
	if strings.TrimSpace(appointmentID) == "" {
		return ErrInvalidInput
	}
	if !status.IsValid() {
		return ErrInvalidInput
	}
	if status == appointments.StatusCompleted {
		if strings.TrimSpace(diagnosis) == "" || strings.TrimSpace(treatment) == "" {
			return ErrInvalidInput
		}
	}

	err = s.backend.UpdateAppointmentStatus(ctx, appointmentID, backend.StatusUpdate{
		Status:    status,
		Diagnosis: diagnosis,
		Treatment: treatment,
	})
	if err != nil {
		return err
	}

	s.loadAppointments(sctx, gen)
	if u.Role == users.RoleVet {
		s.loadVetAppointments(sctx, gen, u.ID)
	}
	return nil
}

// CompleteAppointment (vet) cierra una cita in_progress con diagnóstico y
// tratamiento; delega en UpdateStatus con status=completed.
func (s *Service) CompleteAppointment(ctx context.Context, appointmentID, diagnosis, treatment string) error {
	u, _, _, err := s.requireUser()
	if err != nil {
		return err
	}

	apt, ok := s.findAppointment(appointmentID)
	if !ok {
		return ErrNotFound
	}

	t, ok := appointments.TransitionFor(apt.Status, appointments.StatusCompleted)
	if !ok {
		return ErrBadState
	}
	if !t.Allows(u.Role) {
		return ErrForbidden
	}

	return s.UpdateStatus(ctx, appointmentID, appointments.StatusCompleted, diagnosis, treatment)
}

func (s *Service) findAppointment(id string) (appointments.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, apt := range s.appointments {
		if apt.ID == id {
			return apt, true
		}
	}
	return appointments.Appointment{}, false
}

func containsPet(list []pets.Pet, id string) bool {
	for _, p := range list {
		if p.ID == id {
			return true
		}
	}
	return false
}

func containsAppointment(list []appointments.Appointment, id string) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}
