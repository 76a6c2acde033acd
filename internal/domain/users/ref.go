package users

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UnknownLabel es el fallback de display cuando no hay referencia.
const UnknownLabel = "Неизвестно"

// Ref es un campo de relación "reference-or-embedded": el backend puede
// mandar el id pelado ("64f...") o el documento completo (populate de Mongo).
// Exactamente una de las dos variantes está presente; si ambas están vacías,
// la referencia está ausente.
type Ref struct {
	ID   string
	User *User
}

func (r Ref) IsZero() bool {
	return r.ID == "" && r.User == nil
}

// RefID devuelve el id de la referencia, venga como venga.
func (r Ref) RefID() string {
	if r.User != nil && r.User.ID != "" {
		return r.User.ID
	}
	return r.ID
}

// DisplayName resuelve el nombre para mostrar.
// Con id pelado no hay nombre: se muestra el id tal cual (comportamiento del
// backend sin populate). Referencia ausente => UnknownLabel.
func (r Ref) DisplayName() string {
	if r.User != nil {
		if r.User.Name != "" {
			return r.User.Name
		}
		return UnknownLabel
	}
	if r.ID != "" {
		return r.ID
	}
	return UnknownLabel
}

// DisplayEmail resuelve el email; sin documento embebido no hay email.
func (r Ref) DisplayEmail() string {
	if r.User != nil {
		return r.User.Email
	}
	return ""
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: strings.TrimSpace(id)}
		return nil
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return err
	}
	*r = Ref{ID: u.ID, User: &u}
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.User != nil {
		return json.Marshal(r.User)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}
