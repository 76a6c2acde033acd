package backend

import (
	"context"

	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
)

// Client es el puerto hacia el backend de la clínica (HTTP/JSON).
// Toda persistencia y toda regla de negocio final viven del otro lado;
// este cliente solo orquesta llamadas y cachea resultados.
type Client interface {
	Login(ctx context.Context, email, password string) (users.User, error)
	Register(ctx context.Context, in RegisterInput) (users.User, error)

	ListPets(ctx context.Context) ([]pets.Pet, error)
	ListPetsByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error)
	CreatePet(ctx context.Context, in CreatePetInput) (pets.Pet, error)

	ListAppointments(ctx context.Context) ([]appointments.Appointment, error)
	ListAppointmentsByVet(ctx context.Context, vetID string) ([]appointments.Appointment, error)
	CreateAppointment(ctx context.Context, in CreateAppointmentInput) (appointments.Appointment, error)

	ListUsers(ctx context.Context) ([]users.User, error)
	ChangeUserRole(ctx context.Context, userID string, role users.Role) error

	ConfirmAppointment(ctx context.Context, appointmentID string) error
	UpdateAppointmentStatus(ctx context.Context, appointmentID string, in StatusUpdate) error
	AssignVet(ctx context.Context, appointmentID, vetID string) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     users.Role
}

type CreatePetInput struct {
	Name    string
	Type    string
	Breed   string
	Age     string
	OwnerID string
}

type CreateAppointmentInput struct {
	PetID   string
	Date    string
	Time    string
	Reason  string
	OwnerID string
}

type StatusUpdate struct {
	Status    appointments.Status
	Diagnosis string
	Treatment string
}
