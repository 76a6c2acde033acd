package session

import (
	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
)

// Los accessors devuelven copias: las caches internas solo mutan vía
// loaders y mutaciones.

func (s *Service) Pets() []pets.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pets.Pet(nil), s.pets...)
}

func (s *Service) MyPets() []pets.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pets.Pet(nil), s.myPets...)
}

func (s *Service) Appointments() []appointments.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appointments.Appointment(nil), s.appointments...)
}

func (s *Service) Users() []users.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]users.User(nil), s.users...)
}

func (s *Service) VetAppointments() []appointments.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appointments.Appointment(nil), s.vetAppointments...)
}

// MyAppointments filtra la cache de citas por dueño actual (filtro local,
// igual que el cliente web).
func (s *Service) MyAppointments() []appointments.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	out := make([]appointments.Appointment, 0)
	for _, apt := range s.appointments {
		if apt.Owner.RefID() == s.current.ID {
			out = append(out, apt)
		}
	}
	return out
}

// Schedule devuelve la agenda operativa: citas confirmed o in_progress.
func (s *Service) Schedule() []appointments.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]appointments.Appointment, 0)
	for _, apt := range s.appointments {
		if apt.Status == appointments.StatusConfirmed || apt.Status == appointments.StatusInProgress {
			out = append(out, apt)
		}
	}
	return out
}

// Stats son los contadores del dashboard.
type Stats struct {
	TotalPets         int
	MyPets            int
	TotalAppointments int
	MyAppointments    int
	VetAppointments   int
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		TotalPets:         len(s.pets),
		MyPets:            len(s.myPets),
		TotalAppointments: len(s.appointments),
		VetAppointments:   len(s.vetAppointments),
	}

	if s.current != nil {
		for _, apt := range s.appointments {
			if apt.Owner.RefID() == s.current.ID {
				st.MyAppointments++
			}
		}
	}
	return st
}

// ActionsFor devuelve las transiciones que el usuario actual puede ejecutar
// sobre una cita, según la tabla de ciclo de vida. Es lo que la capa de
// presentación consulta para decidir qué controles mostrar.
func (s *Service) ActionsFor(apt appointments.Appointment) []appointments.Transition {
	u, ok := s.CurrentUser()
	if !ok {
		return nil
	}
	return appointments.AllowedActions(apt.Status, u.Role)
}

// CanTakeAppointment indica si el usuario actual (vet) puede tomar la cita:
// solo mientras no tenga veterinario asignado.
func (s *Service) CanTakeAppointment(apt appointments.Appointment) bool {
	u, ok := s.CurrentUser()
	if !ok || u.Role != users.RoleVet {
		return false
	}
	return !apt.HasVet()
}
