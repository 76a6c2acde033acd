package appointments

import (
	"encoding/json"
	"strings"
	"time"

	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
)

// Appointment representa una cita tal como la entrega el backend.
// Date y Time se mantienen como texto del formulario ("2025-03-10", "14:30"):
// el backend no los normaliza y el cliente solo los muestra.
type Appointment struct {
	ID string

	Pet   pets.Ref
	Owner users.Ref
	Vet   users.Ref // ausente hasta que un veterinario toma la cita

	Date   string
	Time   string
	Reason string

	Status    Status
	Diagnosis string
	Treatment string

	CreatedAt time.Time
}

// HasVet indica si la cita ya tiene veterinario asignado.
// Una vez asignado, este cliente no expone reasignación.
func (a Appointment) HasVet() bool {
	return !a.Vet.IsZero()
}

type appointmentJSON struct {
	MongoID   string     `json:"_id,omitempty"`
	ID        string     `json:"id,omitempty"`
	Pet       pets.Ref   `json:"petId"`
	Owner     users.Ref  `json:"ownerId"`
	Vet       users.Ref  `json:"vetId,omitempty"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Reason    string     `json:"reason"`
	Status    Status     `json:"status"`
	Diagnosis string     `json:"diagnosis,omitempty"`
	Treatment string     `json:"treatment,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (a *Appointment) UnmarshalJSON(data []byte) error {
	var raw appointmentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := strings.TrimSpace(raw.MongoID)
	if id == "" {
		id = strings.TrimSpace(raw.ID)
	}

	a.ID = id
	a.Pet = raw.Pet
	a.Owner = raw.Owner
	a.Vet = raw.Vet
	a.Date = strings.TrimSpace(raw.Date)
	a.Time = strings.TrimSpace(raw.Time)
	a.Reason = strings.TrimSpace(raw.Reason)
	a.Status = raw.Status
	a.Diagnosis = raw.Diagnosis
	a.Treatment = raw.Treatment
	if raw.CreatedAt != nil {
		a.CreatedAt = *raw.CreatedAt
	} else {
		a.CreatedAt = time.Time{}
	}
	return nil
}

func (a Appointment) MarshalJSON() ([]byte, error) {
	var created *time.Time
	if !a.CreatedAt.IsZero() {
		created = &a.CreatedAt
	}

	return json.Marshal(appointmentJSON{
		MongoID:   a.ID,
		ID:        a.ID,
		Pet:       a.Pet,
		Owner:     a.Owner,
		Vet:       a.Vet,
		Date:      a.Date,
		Time:      a.Time,
		Reason:    a.Reason,
		Status:    a.Status,
		Diagnosis: a.Diagnosis,
		Treatment: a.Treatment,
		CreatedAt: created,
	})
}
