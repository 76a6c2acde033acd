package appointments

import (
	"vetclinic-client/internal/domain/users"
)

// Action es una acción de ciclo de vida sobre una cita.
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Transition describe una fila de la tabla de transiciones:
// estado origen + acción + quién puede ejecutarla + estado resultante.
// La tabla es la única fuente de verdad para qué controles se ofrecen;
// el backend sigue siendo la autoridad final sobre transiciones.
type Transition struct {
	From   Status
	Action Action
	To     Status
	Roles  []users.Role
}

// RequiresDetails indica si la transición exige diagnóstico + tratamiento.
func (t Transition) RequiresDetails() bool {
	return t.To == StatusCompleted
}

func (t Transition) Allows(role users.Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// transitions: pending -> confirmed -> in_progress -> {completed | cancelled}.
// Los estados terminales no aparecen como origen.
var transitions = []Transition{
	{From: StatusPending, Action: ActionConfirm, To: StatusConfirmed, Roles: []users.Role{users.RoleAdmin}},
	{From: StatusConfirmed, Action: ActionStart, To: StatusInProgress, Roles: []users.Role{users.RoleVet}},
	{From: StatusInProgress, Action: ActionComplete, To: StatusCompleted, Roles: []users.Role{users.RoleVet}},
	{From: StatusInProgress, Action: ActionCancel, To: StatusCancelled, Roles: []users.Role{users.RoleVet}},
}

// AllowedActions devuelve las transiciones que un rol puede ejecutar desde un
// estado. Es lo que la capa de presentación usa para decidir qué botones
// renderizar, y se testea sin renderizar nada.
func AllowedActions(from Status, role users.Role) []Transition {
	out := make([]Transition, 0, 2)
	for _, t := range transitions {
		if t.From != from {
			continue
		}
		if !t.Allows(role) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// CanTransition valida si el par (from, to) existe en la tabla,
// sin importar el rol.
func CanTransition(from, to Status) bool {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// TransitionFor busca la fila exacta para (from, to).
func TransitionFor(from, to Status) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}
