package pets

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UnknownLabel duplicado a propósito respecto de users: cada módulo resuelve
// sus propias referencias sin helpers compartidos prematuros.
const UnknownLabel = "Неизвестно"

// Ref es el campo "reference-or-embedded" hacia una mascota:
// id pelado o documento completo, según si el backend hizo populate.
type Ref struct {
	ID  string
	Pet *Pet
}

func (r Ref) IsZero() bool {
	return r.ID == "" && r.Pet == nil
}

func (r Ref) RefID() string {
	if r.Pet != nil && r.Pet.ID != "" {
		return r.Pet.ID
	}
	return r.ID
}

// DisplayName resuelve el nombre; con id pelado se muestra el id tal cual.
func (r Ref) DisplayName() string {
	if r.Pet != nil {
		if r.Pet.Name != "" {
			return r.Pet.Name
		}
		return UnknownLabel
	}
	if r.ID != "" {
		return r.ID
	}
	return UnknownLabel
}

// DisplayType resuelve la especie; sin documento embebido no hay especie.
func (r Ref) DisplayType() string {
	if r.Pet != nil {
		return r.Pet.Type
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

	var p Pet
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ref{ID: p.ID, Pet: &p}
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Pet != nil {
		return json.Marshal(r.Pet)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}
