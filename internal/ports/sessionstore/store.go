package sessionstore

import (
	"context"

	"vetclinic-client/internal/domain/users"
)

// Store es el slot durable donde se persiste la identidad entre arranques
// (el equivalente del localStorage del cliente web, bajo una clave fija).
// La persistencia es un side-effect inyectado: el controlador de sesión
// nunca habla con el storage directamente.
type Store interface {
	// Save reemplaza la identidad persistida.
	Save(ctx context.Context, u users.User) error
	// Load lee la identidad; ok=false si el slot está vacío.
	Load(ctx context.Context) (u users.User, ok bool, err error)
	// Clear vacía el slot. Limpiar un slot ya vacío no es error.
	Clear(ctx context.Context) error
}
