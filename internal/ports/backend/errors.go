package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable: el backend no respondió (red caída, DNS, timeout).
	ErrUnreachable = errors.New("backend unreachable")
	// ErrUpstream: respuesta no-2xx sin payload de aplicación utilizable.
	ErrUpstream = errors.New("backend upstream error")
)

// RejectedError es el fallo a nivel aplicación: el backend respondió
// {"success": false, "message": "..."}. Message es texto para el usuario.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "backend rejected request"
	}
	return fmt.Sprintf("backend rejected request: %s", e.Message)
}

// AsRejected extrae el RejectedError de una cadena de errores, si existe.
func AsRejected(err error) (*RejectedError, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
