package users

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrUnknownRole = errors.New("unknown role")
)

// Role define los roles soportados por el backend.
// @Enum client, vet, admin
type Role string

const (
	RoleClient Role = "client"
	RoleVet    Role = "vet"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleVet, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// User representa la identidad que entrega el backend.
// El backend es Mongo-style: los documentos llegan con "_id" (a veces también "id").
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

type userJSON struct {
	MongoID string `json:"_id,omitempty"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw userJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := strings.TrimSpace(raw.MongoID)
	if id == "" {
		id = strings.TrimSpace(raw.ID)
	}

	u.ID = id
	u.Name = strings.TrimSpace(raw.Name)
	u.Email = strings.TrimSpace(raw.Email)
	u.Role = raw.Role
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	// Emitimos ambos ids; el backend real expone "_id" y el virtual "id".
	return json.Marshal(userJSON{
		MongoID: u.ID,
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
	})
}
