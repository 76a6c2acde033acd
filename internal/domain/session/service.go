package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
	"vetclinic-client/internal/platform/logger"
	"vetclinic-client/internal/ports/backend"
	"vetclinic-client/internal/ports/sessionstore"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrBadState         = errors.New("invalid state")
	ErrNotFound         = errors.New("not found")
)

// Service es el controlador de sesión y flujo de citas: identidad
// autenticada + colecciones cacheadas + tab activo. Login/Logout/Refresh
// son los únicos mutators de sesión; la persistencia de identidad entra
// como puerto inyectado.
type Service struct {
	backend backend.Client
	store   sessionstore.Store
	log     logger.Logger

	mu      sync.Mutex
	current *users.User
	active  Tab

	// gen crece en cada login/logout. Un fetch que estaba en vuelo cuando
	// cambió la sesión descarta su resultado en vez de escribir sobre un
	// estado que ya no le pertenece.
	gen        uint64
	sessionCtx context.Context
	cancel     context.CancelFunc

	pets            []pets.Pet
	myPets          []pets.Pet
	appointments    []appointments.Appointment
	users           []users.User
	vetAppointments []appointments.Appointment
}

func NewService(b backend.Client, store sessionstore.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		backend: b,
		store:   store,
		log:     log,
		active:  TabLogin,
	}
}

// adoptLocked instala una identidad nueva: cancela lo que hubiera en vuelo
// de la sesión anterior y abre el scope de la nueva. mu debe estar tomado.
func (s *Service) adoptLocked(u users.User) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	sctx, cancel := context.WithCancel(context.Background())
	s.sessionCtx = sctx
	s.cancel = cancel

	s.current = &u
	s.gen++
	s.active = TabDashboard
	return sctx, s.gen
}

// Login autentica y, en éxito, persiste la identidad, pasa a dashboard y
// carga las colecciones relevantes al rol. En fallo la sesión no cambia.
func (s *Service) Login(ctx context.Context, email, password string) (users.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return users.User{}, ErrInvalidInput
	}

	u, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return users.User{}, err
	}

	s.mu.Lock()
	sctx, gen := s.adoptLocked(u)
	s.mu.Unlock()

	// La persistencia es best-effort: una falla del slot no invalida el login.
	if err := s.store.Save(ctx, u); err != nil {
		s.log.Warn("session: persist identity failed", map[string]any{"err": err.Error()})
	}

	s.refresh(sctx, gen, u)
	return u, nil
}

// Register crea la cuenta y sigue el mismo camino de éxito que Login.
// El rol lo elige el cliente entre los tres soportados.
func (s *Service) Register(ctx context.Context, name, email, password string, role users.Role) (users.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return users.User{}, ErrInvalidInput
	}
	if !role.IsValid() {
		return users.User{}, ErrInvalidInput
	}

	u, err := s.backend.Register(ctx, backend.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return users.User{}, err
	}

	s.mu.Lock()
	sctx, gen := s.adoptLocked(u)
	s.mu.Unlock()

	if err := s.store.Save(ctx, u); err != nil {
		s.log.Warn("session: persist identity failed", map[string]any{"err": err.Error()})
	}

	s.refresh(sctx, gen, u)
	return u, nil
}

// Restore lee el slot durable al arrancar; si hay identidad la adopta y
// carga colecciones. ok=false si el slot estaba vacío.
func (s *Service) Restore(ctx context.Context) (users.User, bool, error) {
	u, ok, err := s.store.Load(ctx)
	if err != nil {
		return users.User{}, false, err
	}
	if !ok {
		return users.User{}, false, nil
	}

	s.mu.Lock()
	sctx, gen := s.adoptLocked(u)
	s.mu.Unlock()

	s.refresh(sctx, gen, u)
	return u, true, nil
}

// Logout cancela requests en vuelo, limpia identidad y todas las colecciones,
// vacía el slot persistido y vuelve a la vista de login.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.sessionCtx = nil
	}
	s.current = nil
	s.gen++
	s.active = TabLogin
	s.pets = nil
	s.myPets = nil
	s.appointments = nil
	s.users = nil
	s.vetAppointments = nil
	s.mu.Unlock()

	return s.store.Clear(ctx)
}

// CurrentUser devuelve la identidad activa, si hay.
func (s *Service) CurrentUser() (users.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return users.User{}, false
	}
	return *s.current, true
}

// ActiveTab devuelve la vista activa.
func (s *Service) ActiveTab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Tabs devuelve las vistas visibles para la sesión actual.
func (s *Service) Tabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return AnonTabs()
	}
	return TabsFor(s.current.Role)
}

// SetActiveTab cambia de vista si el rol actual puede verla.
func (s *Service) SetActiveTab(t Tab) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed := AnonTabs()
	if s.current != nil {
		allowed = TabsFor(s.current.Role)
	}
	if !tabAllowed(allowed, t) {
		return ErrForbidden
	}
	s.active = t
	return nil
}

// requireUser devuelve la identidad y los datos de aplicación del scope.
func (s *Service) requireUser() (users.User, context.Context, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.sessionCtx == nil {
		return users.User{}, nil, 0, ErrNotAuthenticated
	}
	return *s.current, s.sessionCtx, s.gen, nil
}

// apply ejecuta una escritura de cache solo si la sesión sigue siendo la
// misma que originó el fetch.
func (s *Service) apply(gen uint64, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return
	}
	fn()
}
