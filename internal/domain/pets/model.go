package pets

import (
	"encoding/json"
	"strings"
	"time"

	"vetclinic-client/internal/domain/users"
)

// Pet representa el perfil de una mascota registrada en la clínica.
// Type es texto libre (perro, gato, ...) tal como lo captura el formulario.
type Pet struct {
	ID    string
	Name  string
	Type  string
	Breed string
	Age   string

	Owner users.Ref

	CreatedAt time.Time
}

type petJSON struct {
	MongoID   string          `json:"_id,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Breed     string          `json:"breed,omitempty"`
	Age       json.RawMessage `json:"age,omitempty"`
	Owner     users.Ref       `json:"ownerId"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

func (p *Pet) UnmarshalJSON(data []byte) error {
	var raw petJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := strings.TrimSpace(raw.MongoID)
	if id == "" {
		id = strings.TrimSpace(raw.ID)
	}

	p.ID = id
	p.Name = strings.TrimSpace(raw.Name)
	p.Type = strings.TrimSpace(raw.Type)
	p.Breed = strings.TrimSpace(raw.Breed)
	p.Age = decodeAge(raw.Age)
	p.Owner = raw.Owner
	if raw.CreatedAt != nil {
		p.CreatedAt = *raw.CreatedAt
	} else {
		p.CreatedAt = time.Time{}
	}
	return nil
}

func (p Pet) MarshalJSON() ([]byte, error) {
	var age json.RawMessage
	if p.Age != "" {
		b, err := json.Marshal(p.Age)
		if err != nil {
			return nil, err
		}
		age = b
	}

	var created *time.Time
	if !p.CreatedAt.IsZero() {
		created = &p.CreatedAt
	}

	return json.Marshal(petJSON{
		MongoID:   p.ID,
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		Breed:     p.Breed,
		Age:       age,
		Owner:     p.Owner,
		CreatedAt: created,
	})
}

// decodeAge tolera age como string ("3") o como número JSON (3).
// El formulario original manda string, pero hay datos viejos con número.
func decodeAge(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return strings.TrimSpace(string(raw))
}
