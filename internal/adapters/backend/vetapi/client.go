package vetapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
	"vetclinic-client/internal/platform/httpclient"
	"vetclinic-client/internal/ports/backend"
)

var (
	ErrNotConfigured = errors.New("vetapi client not configured")
)

// Config del cliente hacia el backend de la clínica.
// BaseURL normalmente viene de env (VET_API_URL) e incluye el prefijo /api.
type Config struct {
	BaseURL string

	// Timeout HTTP. El cliente web original no tenía timeout y un request
	// colgado colgaba la acción para siempre; acá sí cortamos.
	Timeout time.Duration

	// Transport inyectable (tests).
	Transport http.RoundTripper
}

// Client implementa backend.Client sobre HTTP/JSON.
type Client struct {
	http *httpclient.Client
}

var _ backend.Client = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}

	hc, err := httpclient.New(cfg.BaseURL, cfg.Timeout, cfg.Transport)
	if err != nil {
		return nil, err
	}

	// Correlación por request; el backend lo ignora hoy, pero queda en logs.
	hc.DefaultHeaders = func() map[string]string {
		return map[string]string{"X-Request-ID": uuid.NewString()}
	}

	return &Client{http: hc}, nil
}

// envelope es la respuesta de aplicación de toda mutación:
// {"success": bool, "message": "..."} más la entidad creada según endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e envelope) reject() error {
	return &backend.RejectedError{Message: strings.TrimSpace(e.Message)}
}

// call clasifica errores de transporte:
// - red caída => backend.ErrUnreachable
// - status no-2xx con envelope decodificable => backend.RejectedError
// - status no-2xx sin payload útil => backend.ErrUpstream
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	err := c.http.DoJSON(ctx, method, path, nil, in, out)
	if err == nil {
		return nil
	}

	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		var env envelope
		if he.Body != "" && json.Unmarshal([]byte(he.Body), &env) == nil && env.Message != "" {
			return env.reject()
		}
		return fmt.Errorf("%w: status=%d", backend.ErrUpstream, he.StatusCode)
	}

	return fmt.Errorf("%w: %v", backend.ErrUnreachable, err)
}

// -------------------------
// Sesión
// -------------------------

type authResponse struct {
	envelope
	User *users.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (users.User, error) {
	body := map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}

	var resp authResponse
	if err := c.call(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return users.User{}, err
	}
	if !resp.Success || resp.User == nil {
		return users.User{}, resp.reject()
	}
	return *resp.User, nil
}

func (c *Client) Register(ctx context.Context, in backend.RegisterInput) (users.User, error) {
	body := map[string]string{
		"name":     strings.TrimSpace(in.Name),
		"email":    strings.TrimSpace(in.Email),
		"password": in.Password,
		"role":     string(in.Role),
	}

	var resp authResponse
	if err := c.call(ctx, http.MethodPost, "/register", body, &resp); err != nil {
		return users.User{}, err
	}
	if !resp.Success || resp.User == nil {
		return users.User{}, resp.reject()
	}
	return *resp.User, nil
}

// -------------------------
// Mascotas
// -------------------------

func (c *Client) ListPets(ctx context.Context) ([]pets.Pet, error) {
	var out []pets.Pet
	if err := c.call(ctx, http.MethodGet, "/pets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPetsByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("vetapi: ownerID required")
	}

	var out []pets.Pet
	if err := c.call(ctx, http.MethodGet, "/pets/user/"+ownerID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type petResponse struct {
	envelope
	Pet *pets.Pet `json:"pet"`
}

func (c *Client) CreatePet(ctx context.Context, in backend.CreatePetInput) (pets.Pet, error) {
	body := map[string]string{
		"name":    strings.TrimSpace(in.Name),
		"type":    strings.TrimSpace(in.Type),
		"breed":   strings.TrimSpace(in.Breed),
		"age":     strings.TrimSpace(in.Age),
		"ownerId": strings.TrimSpace(in.OwnerID),
	}

	var resp petResponse
	if err := c.call(ctx, http.MethodPost, "/pets", body, &resp); err != nil {
		return pets.Pet{}, err
	}
	if !resp.Success || resp.Pet == nil {
		return pets.Pet{}, resp.reject()
	}
	return *resp.Pet, nil
}

// -------------------------
// Citas
// -------------------------

func (c *Client) ListAppointments(ctx context.Context) ([]appointments.Appointment, error) {
	var out []appointments.Appointment
	if err := c.call(ctx, http.MethodGet, "/appointments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAppointmentsByVet(ctx context.Context, vetID string) ([]appointments.Appointment, error) {
	vetID = strings.TrimSpace(vetID)
	if vetID == "" {
		return nil, errors.New("vetapi: vetID required")
	}

	var out []appointments.Appointment
	if err := c.call(ctx, http.MethodGet, "/appointments/vet/"+vetID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type appointmentResponse struct {
	envelope
	Appointment *appointments.Appointment `json:"appointment"`
}

func (c *Client) CreateAppointment(ctx context.Context, in backend.CreateAppointmentInput) (appointments.Appointment, error) {
	body := map[string]string{
		"petId":   strings.TrimSpace(in.PetID),
		"date":    strings.TrimSpace(in.Date),
		"time":    strings.TrimSpace(in.Time),
		"reason":  strings.TrimSpace(in.Reason),
		"ownerId": strings.TrimSpace(in.OwnerID),
	}

	var resp appointmentResponse
	if err := c.call(ctx, http.MethodPost, "/appointments", body, &resp); err != nil {
		return appointments.Appointment{}, err
	}
	if !resp.Success || resp.Appointment == nil {
		return appointments.Appointment{}, resp.reject()
	}
	return *resp.Appointment, nil
}

// -------------------------
// Usuarios (admin)
// -------------------------

func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	var out []users.User
	if err := c.call(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ChangeUserRole(ctx context.Context, userID string, role users.Role) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("vetapi: userID required")
	}

	var resp envelope
	err := c.call(ctx, http.MethodPut, "/users/"+userID+"/role", map[string]string{
		"role": string(role),
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return resp.reject()
	}
	return nil
}

// -------------------------
// Transiciones de citas
// -------------------------

func (c *Client) ConfirmAppointment(ctx context.Context, appointmentID string) error {
	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return errors.New("vetapi: appointmentID required")
	}

	var resp envelope
	if err := c.call(ctx, http.MethodPut, "/appointments/"+appointmentID+"/confirm", nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return resp.reject()
	}
	return nil
}

func (c *Client) UpdateAppointmentStatus(ctx context.Context, appointmentID string, in backend.StatusUpdate) error {
	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return errors.New("vetapi: appointmentID required")
	}

	body := map[string]string{
		"status":    string(in.Status),
		"diagnosis": in.Diagnosis,
		"treatment": in.Treatment,
	}

	var resp envelope
	if err := c.call(ctx, http.MethodPut, "/appointments/"+appointmentID+"/status", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return resp.reject()
	}
	return nil
}

func (c *Client) AssignVet(ctx context.Context, appointmentID, vetID string) error {
	appointmentID = strings.TrimSpace(appointmentID)
	vetID = strings.TrimSpace(vetID)
	if appointmentID == "" || vetID == "" {
		return errors.New("vetapi: appointmentID and vetID required")
	}

	var resp envelope
	err := c.call(ctx, http.MethodPut, "/appointments/"+appointmentID+"/assign-vet", map[string]string{
		"vetId": vetID,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return resp.reject()
	}
	return nil
}
