package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
)

// handlers implementa el contrato REST del backend real lo suficiente como
// para desarrollar y testear el cliente contra él. Sin auth: el backend real
// tampoco exige token en estos endpoints (el cliente manda ownerId/vetId en
// el body y el servidor le cree).
type handlers struct {
	store Store
	newID func() string
	now   func() time.Time
}

func registerRoutes(r chi.Router, st Store) {
	h := &handlers{
		store: st,
		newID: uuid.NewString,
		now:   time.Now,
	}

	r.Post("/login", h.login)
	r.Post("/register", h.register)

	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", h.listPets)
		pr.Post("/", h.createPet)
		pr.Get("/user/{userID}", h.listPetsByOwner)
	})

	r.Route("/appointments", func(ar chi.Router) {
		ar.Get("/", h.listAppointments)
		ar.Post("/", h.createAppointment)
		ar.Get("/vet/{vetID}", h.listAppointmentsByVet)
		ar.Put("/{appointmentID}/confirm", h.confirmAppointment)
		ar.Put("/{appointmentID}/status", h.updateAppointmentStatus)
		ar.Put("/{appointmentID}/assign-vet", h.assignVet)
	})

	r.Route("/users", func(ur chi.Router) {
		ur.Get("/", h.listUsers)
		ur.Put("/{userID}/role", h.changeUserRole)
	})
}

// -------------------------
// Sesión
// -------------------------

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	u, hash, err := h.store.UserByEmail(r.Context(), req.Email)
	if err != nil {
		writeFail(w, "Неверный email или пароль")
		return
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeFail(w, "Неверный email или пароль")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    u,
	})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeFail(w, "Заполните все поля")
		return
	}

	role := users.RoleClient
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := users.ParseRole(req.Role)
		if err != nil {
			writeFail(w, "Недопустимая роль")
			return
		}
		role = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	u := users.User{
		ID:    h.newID(),
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Role:  role,
	}

	if err := h.store.CreateUser(r.Context(), u, hash); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			writeFail(w, "Пользователь с таким email уже существует")
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    u,
	})
}

// -------------------------
// Mascotas
// -------------------------

func (h *handlers) createPet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		Breed   string `json:"breed"`
		Age     string `json:"age"`
		OwnerID string `json:"ownerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Type) == "" {
		writeFail(w, "Укажите имя и вид питомца")
		return
	}
	if _, err := h.store.UserByID(r.Context(), strings.TrimSpace(req.OwnerID)); err != nil {
		writeFail(w, "Владелец не найден")
		return
	}

	p := pets.Pet{
		ID:        h.newID(),
		Name:      strings.TrimSpace(req.Name),
		Type:      strings.TrimSpace(req.Type),
		Breed:     strings.TrimSpace(req.Breed),
		Age:       strings.TrimSpace(req.Age),
		Owner:     users.Ref{ID: strings.TrimSpace(req.OwnerID)},
		CreatedAt: h.now().UTC(),
	}

	if err := h.store.CreatePet(r.Context(), p); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// El create responde con refs peladas; los listados hacen populate.
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"pet":     p,
	})
}

func (h *handlers) listPets(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPets(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]pets.Pet, 0, len(items))
	for _, p := range items {
		out = append(out, h.populatePet(r, p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) listPetsByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "userID")

	items, err := h.store.ListPetsByOwner(r.Context(), ownerID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]pets.Pet, 0, len(items))
	for _, p := range items {
		out = append(out, h.populatePet(r, p))
	}
	writeJSON(w, http.StatusOK, out)
}

// -------------------------
// Citas
// -------------------------

func (h *handlers) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PetID   string `json:"petId"`
		Date    string `json:"date"`
		Time    string `json:"time"`
		Reason  string `json:"reason"`
		OwnerID string `json:"ownerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.PetID) == "" ||
		strings.TrimSpace(req.Date) == "" ||
		strings.TrimSpace(req.Time) == "" ||
		strings.TrimSpace(req.Reason) == "" {
		writeFail(w, "Заполните все поля записи")
		return
	}
	if _, err := h.store.PetByID(r.Context(), strings.TrimSpace(req.PetID)); err != nil {
		writeFail(w, "Питомец не найден")
		return
	}

	a := appointments.Appointment{
		ID:        h.newID(),
		Pet:       pets.Ref{ID: strings.TrimSpace(req.PetID)},
		Owner:     users.Ref{ID: strings.TrimSpace(req.OwnerID)},
		Date:      strings.TrimSpace(req.Date),
		Time:      strings.TrimSpace(req.Time),
		Reason:    strings.TrimSpace(req.Reason),
		Status:    appointments.StatusPending,
		CreatedAt: h.now().UTC(),
	}

	if err := h.store.CreateAppointment(r.Context(), a); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"appointment": a,
	})
}

func (h *handlers) listAppointments(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListAppointments(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]appointments.Appointment, 0, len(items))
	for _, a := range items {
		out = append(out, h.populateAppointment(r, a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) listAppointmentsByVet(w http.ResponseWriter, r *http.Request) {
	vetID := chi.URLParam(r, "vetID")

	items, err := h.store.ListAppointmentsByVet(r.Context(), vetID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]appointments.Appointment, 0, len(items))
	for _, a := range items {
		out = append(out, h.populateAppointment(r, a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) confirmAppointment(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.AppointmentByID(r.Context(), chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeFail(w, "Запись не найдена")
		return
	}

	if !appointments.CanTransition(a.Status, appointments.StatusConfirmed) {
		writeFail(w, "Запись нельзя подтвердить в статусе "+a.Status.Label())
		return
	}

	a.Status = appointments.StatusConfirmed
	if err := h.store.UpdateAppointment(r.Context(), a); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *handlers) updateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status    string `json:"status"`
		Diagnosis string `json:"diagnosis"`
		Treatment string `json:"treatment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	status, err := appointments.ParseStatus(req.Status)
	if err != nil {
		writeFail(w, "Недопустимый статус")
		return
	}

	a, err := h.store.AppointmentByID(r.Context(), chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeFail(w, "Запись не найдена")
		return
	}

	// El servidor es la autoridad de la máquina de estados: misma tabla
	// que usa el cliente para decidir qué ofrecer.
	if !appointments.CanTransition(a.Status, status) {
		writeFail(w, "Недопустимый переход статуса")
		return
	}

	if status == appointments.StatusCompleted {
		if strings.TrimSpace(req.Diagnosis) == "" || strings.TrimSpace(req.Treatment) == "" {
			writeFail(w, "Укажите диагноз и лечение")
			return
		}
		a.Diagnosis = strings.TrimSpace(req.Diagnosis)
		a.Treatment = strings.TrimSpace(req.Treatment)
	}

	a.Status = status
	if err := h.store.UpdateAppointment(r.Context(), a); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *handlers) assignVet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VetID string `json:"vetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	a, err := h.store.AppointmentByID(r.Context(), chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeFail(w, "Запись не найдена")
		return
	}
	if a.HasVet() {
		writeFail(w, "Врач уже назначен")
		return
	}

	vet, err := h.store.UserByID(r.Context(), strings.TrimSpace(req.VetID))
	if err != nil || vet.Role != users.RoleVet {
		writeFail(w, "Врач не найден")
		return
	}

	a.Vet = users.Ref{ID: vet.ID}
	if err := h.store.UpdateAppointment(r.Context(), a); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// -------------------------
// Usuarios
// -------------------------

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListUsers(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) changeUserRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	role, err := users.ParseRole(req.Role)
	if err != nil {
		writeFail(w, "Недопустимая роль")
		return
	}

	if err := h.store.SetUserRole(r.Context(), chi.URLParam(r, "userID"), role); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeFail(w, "Пользователь не найден")
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// -------------------------
// Populate de referencias
// -------------------------

// Los listados devuelven referencias embebidas (populate); los creates
// devuelven ids pelados. Así el cliente ejercita ambas formas del wire.

func (h *handlers) populatePet(r *http.Request, p pets.Pet) pets.Pet {
	if owner, err := h.store.UserByID(r.Context(), p.Owner.RefID()); err == nil {
		p.Owner = users.Ref{ID: owner.ID, User: &owner}
	}
	return p
}

func (h *handlers) populateAppointment(r *http.Request, a appointments.Appointment) appointments.Appointment {
	if p, err := h.store.PetByID(r.Context(), a.Pet.RefID()); err == nil {
		a.Pet = pets.Ref{ID: p.ID, Pet: &p}
	}
	if owner, err := h.store.UserByID(r.Context(), a.Owner.RefID()); err == nil {
		a.Owner = users.Ref{ID: owner.ID, User: &owner}
	}
	if !a.Vet.IsZero() {
		if vet, err := h.store.UserByID(r.Context(), a.Vet.RefID()); err == nil {
			a.Vet = users.Ref{ID: vet.ID, User: &vet}
		}
	}
	return a
}

func writeFail(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": false,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
