package appointments

import (
	"errors"
	"strings"
)

var (
	ErrUnknownStatus = errors.New("unknown status")
)

// Status define el ciclo de vida de una cita.
// @Enum pending, confirmed, in_progress, completed, cancelled
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal: desde completed/cancelled no se expone ninguna acción.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Label devuelve el texto de UI (el producto es en ruso).
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Ожидает подтверждения"
	case StatusConfirmed:
		return "Подтверждена"
	case StatusInProgress:
		return "В процессе"
	case StatusCompleted:
		return "Завершена"
	case StatusCancelled:
		return "Отменена"
	default:
		return string(s)
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrUnknownStatus
	}
	return st, nil
}
