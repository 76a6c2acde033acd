package session

import (
	"context"
	"errors"
	"testing"

	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
	"vetclinic-client/internal/ports/backend"
)

// fakeBackend es un doble en memoria del puerto backend: datos enlatados,
// errores inyectables y contadores de llamadas.
type fakeBackend struct {
	user users.User

	pets            []pets.Pet
	myPets          []pets.Pet
	appointments    []appointments.Appointment
	users           []users.User
	vetAppointments []appointments.Appointment

	loginErr error

	createdPet pets.Pet
	createdApt appointments.Appointment

	createPetCalls    int
	createAptCalls    int
	updateStatusCalls int
	confirmCalls      int
	assignCalls       int
	roleCalls         int

	lastStatusUpdate backend.StatusUpdate
	lastAssignVetID  string

	// onListPets permite meter un efecto colateral en medio de un refresh
	// (p.ej. un logout concurrente).
	onListPets func()
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (users.User, error) {
	if f.loginErr != nil {
		return users.User{}, f.loginErr
	}
	return f.user, nil
}

func (f *fakeBackend) Register(ctx context.Context, in backend.RegisterInput) (users.User, error) {
	return users.User{ID: "new", Name: in.Name, Email: in.Email, Role: in.Role}, nil
}

func (f *fakeBackend) ListPets(ctx context.Context) ([]pets.Pet, error) {
	if f.onListPets != nil {
		f.onListPets()
	}
	return f.pets, nil
}

func (f *fakeBackend) ListPetsByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	return f.myPets, nil
}

func (f *fakeBackend) CreatePet(ctx context.Context, in backend.CreatePetInput) (pets.Pet, error) {
	f.createPetCalls++
	return f.createdPet, nil
}

func (f *fakeBackend) ListAppointments(ctx context.Context) ([]appointments.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeBackend) ListAppointmentsByVet(ctx context.Context, vetID string) ([]appointments.Appointment, error) {
	return f.vetAppointments, nil
}

func (f *fakeBackend) CreateAppointment(ctx context.Context, in backend.CreateAppointmentInput) (appointments.Appointment, error) {
	f.createAptCalls++
	return f.createdApt, nil
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]users.User, error) {
	return f.users, nil
}

func (f *fakeBackend) ChangeUserRole(ctx context.Context, userID string, role users.Role) error {
	f.roleCalls++
	return nil
}

func (f *fakeBackend) ConfirmAppointment(ctx context.Context, appointmentID string) error {
	f.confirmCalls++
	return nil
}

func (f *fakeBackend) UpdateAppointmentStatus(ctx context.Context, appointmentID string, in backend.StatusUpdate) error {
	f.updateStatusCalls++
	f.lastStatusUpdate = in
	return nil
}

func (f *fakeBackend) AssignVet(ctx context.Context, appointmentID, vetID string) error {
	f.assignCalls++
	f.lastAssignVetID = vetID
	return nil
}

// fakeStore registra Save/Clear en memoria.
type fakeStore struct {
	saved      *users.User
	saveCalls  int
	clearCalls int
	loadErr    error
}

func (f *fakeStore) Save(ctx context.Context, u users.User) error {
	f.saved = &u
	f.saveCalls++
	return nil
}

func (f *fakeStore) Load(ctx context.Context) (users.User, bool, error) {
	if f.loadErr != nil {
		return users.User{}, false, f.loadErr
	}
	if f.saved == nil {
		return users.User{}, false, nil
	}
	return *f.saved, true, nil
}

func (f *fakeStore) Clear(ctx context.Context) error {
	f.saved = nil
	f.clearCalls++
	return nil
}

func clientUser() users.User {
	return users.User{ID: "c1", Name: "Иван Петров", Email: "client@vet.ru", Role: users.RoleClient}
}

func vetUser() users.User {
	return users.User{ID: "v1", Name: "Доктор Айболит", Email: "vet@vet.ru", Role: users.RoleVet}
}

func adminUser() users.User {
	return users.User{ID: "a1", Name: "Администратор", Email: "admin@vet.ru", Role: users.RoleAdmin}
}

func newTestService(b *fakeBackend, st *fakeStore) *Service {
	return NewService(b, st, nil)
}

func TestLoginLoadsCollectionsAndSwitchesTab(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user:   clientUser(),
		pets:   []pets.Pet{{ID: "p1"}, {ID: "p2"}},
		myPets: []pets.Pet{{ID: "p1"}},
		appointments: []appointments.Appointment{
			{ID: "apt1", Owner: users.Ref{ID: "c1"}, Status: appointments.StatusPending},
		},
	}
	st := &fakeStore{}
	svc := newTestService(fb, st)

	u, err := svc.Login(ctx, "client@vet.ru", "123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Role != users.RoleClient {
		t.Errorf("Role = %s", u.Role)
	}
	if svc.ActiveTab() != TabDashboard {
		t.Errorf("ActiveTab = %s, quiero dashboard", svc.ActiveTab())
	}
	if len(svc.Pets()) != 2 || len(svc.MyPets()) != 1 || len(svc.Appointments()) != 1 {
		t.Errorf("colecciones: pets=%d myPets=%d apts=%d", len(svc.Pets()), len(svc.MyPets()), len(svc.Appointments()))
	}
	// Client no carga usuarios ni agenda de vet.
	if len(svc.Users()) != 0 || len(svc.VetAppointments()) != 0 {
		t.Error("client no debe cargar users ni vetAppointments")
	}
	if st.saveCalls != 1 || st.saved == nil || st.saved.ID != "c1" {
		t.Errorf("identidad no persistida: %+v", st.saved)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{loginErr: errors.New("credenciales")}
	st := &fakeStore{}
	svc := newTestService(fb, st)

	if _, err := svc.Login(ctx, "x@y.z", "bad"); err == nil {
		t.Fatal("quiero error de login")
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Error("no debe haber sesión tras login fallido")
	}
	if svc.ActiveTab() != TabLogin {
		t.Errorf("ActiveTab = %s", svc.ActiveTab())
	}
	if st.saveCalls != 0 {
		t.Error("no debe persistir identidad en fallo")
	}
}

func TestLoginValidatesInput(t *testing.T) {
	svc := newTestService(&fakeBackend{}, &fakeStore{})
	if _, err := svc.Login(context.Background(), "  ", "123"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, quiero ErrInvalidInput", err)
	}
	if _, err := svc.Login(context.Background(), "a@b.c", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, quiero ErrInvalidInput", err)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user: adminUser(),
		pets: []pets.Pet{{ID: "p1"}},
		users: []users.User{
			adminUser(), clientUser(),
		},
	}
	st := &fakeStore{}
	svc := newTestService(fb, st)

	if _, err := svc.Login(ctx, "admin@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}
	if len(svc.Users()) != 2 {
		t.Fatalf("admin debe cargar usuarios")
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Error("sesión no limpiada")
	}
	if svc.ActiveTab() != TabLogin {
		t.Errorf("ActiveTab = %s", svc.ActiveTab())
	}
	if len(svc.Pets()) != 0 || len(svc.Users()) != 0 || len(svc.Appointments()) != 0 {
		t.Error("caches no limpiadas")
	}
	if st.clearCalls != 1 {
		t.Error("slot persistido no limpiado")
	}
}

func TestRestoreAdoptsPersistedIdentity(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{myPets: []pets.Pet{{ID: "p1"}}}
	st := &fakeStore{}
	vu := vetUser()
	st.saved = &vu
	fb.vetAppointments = []appointments.Appointment{{ID: "apt1", Vet: users.Ref{ID: "v1"}}}

	svc := newTestService(fb, st)
	u, ok, err := svc.Restore(ctx)
	if err != nil || !ok {
		t.Fatalf("Restore = %v, %v", ok, err)
	}
	if u.ID != "v1" {
		t.Errorf("u.ID = %s", u.ID)
	}
	if svc.ActiveTab() != TabDashboard {
		t.Errorf("ActiveTab = %s", svc.ActiveTab())
	}
	if len(svc.VetAppointments()) != 1 {
		t.Error("agenda de vet no cargada tras restore")
	}
}

func TestRestoreEmptySlot(t *testing.T) {
	svc := newTestService(&fakeBackend{}, &fakeStore{})
	if _, ok, err := svc.Restore(context.Background()); err != nil || ok {
		t.Fatalf("Restore con slot vacío = %v, %v", ok, err)
	}
}

func TestAddPetAppearsOnceInBothCaches(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user:       clientUser(),
		createdPet: pets.Pet{ID: "p9", Name: "Рекс", Type: "Собака", Owner: users.Ref{ID: "c1"}},
	}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "client@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}

	p, err := svc.AddPet(ctx, AddPetInput{Name: "Рекс", Type: "Собака"})
	if err != nil {
		t.Fatalf("AddPet: %v", err)
	}
	if p.ID != "p9" {
		t.Errorf("p.ID = %s", p.ID)
	}
	if len(svc.Pets()) != 1 || len(svc.MyPets()) != 1 {
		t.Errorf("pets=%d myPets=%d, quiero 1/1", len(svc.Pets()), len(svc.MyPets()))
	}
	if svc.ActiveTab() != TabMyPets {
		t.Errorf("ActiveTab = %s, quiero my-pets", svc.ActiveTab())
	}

	// Repetir con el mismo id no duplica.
	if _, err := svc.AddPet(ctx, AddPetInput{Name: "Рекс", Type: "Собака"}); err != nil {
		t.Fatal(err)
	}
	if len(svc.Pets()) != 1 || len(svc.MyPets()) != 1 {
		t.Error("mascota duplicada en cache")
	}
}

func TestAddPetRequiresSessionAndFields(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{user: clientUser()}
	svc := newTestService(fb, &fakeStore{})

	if _, err := svc.AddPet(ctx, AddPetInput{Name: "X", Type: "Y"}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, quiero ErrNotAuthenticated", err)
	}

	if _, err := svc.Login(ctx, "client@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddPet(ctx, AddPetInput{Name: " ", Type: "Собака"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, quiero ErrInvalidInput", err)
	}
	if fb.createPetCalls != 0 {
		t.Error("validación local no debe llegar al backend")
	}
}

func TestCreateAppointmentRoleAndPreconditions(t *testing.T) {
	ctx := context.Background()

	// Vet no puede crear citas.
	fb := &fakeBackend{user: vetUser()}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "vet@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateAppointment(ctx, CreateAppointmentInput{PetID: "p1", Date: "2026-09-01", Time: "10:00", Reason: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, quiero ErrForbidden", err)
	}

	// Client sin mascotas tampoco.
	fb = &fakeBackend{user: clientUser()}
	svc = newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "client@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateAppointment(ctx, CreateAppointmentInput{PetID: "p1", Date: "2026-09-01", Time: "10:00", Reason: "x"}); !errors.Is(err, ErrBadState) {
		t.Fatalf("err = %v, quiero ErrBadState", err)
	}
	if fb.createAptCalls != 0 {
		t.Error("precondición local no debe llegar al backend")
	}
}

func TestCreateAppointmentHappyPath(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user:       clientUser(),
		myPets:     []pets.Pet{{ID: "p1", Owner: users.Ref{ID: "c1"}}},
		createdApt: appointments.Appointment{ID: "apt9", Owner: users.Ref{ID: "c1"}, Status: appointments.StatusPending},
	}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "client@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}

	// Campos incompletos se cortan antes de la red.
	if _, err := svc.CreateAppointment(ctx, CreateAppointmentInput{PetID: "p1", Date: "2026-09-01", Time: "10:00", Reason: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, quiero ErrInvalidInput", err)
	}
	if fb.createAptCalls != 0 {
		t.Error("reason vacío no debe llegar al backend")
	}

	apt, err := svc.CreateAppointment(ctx, CreateAppointmentInput{PetID: "p1", Date: "2026-09-01", Time: "10:00", Reason: "Вакцинация"})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if apt.Status != appointments.StatusPending {
		t.Errorf("Status = %s, quiero pending", apt.Status)
	}
	if len(svc.Appointments()) != 1 {
		t.Error("cita no entró a la cache")
	}
	if svc.ActiveTab() != TabMyAppointments {
		t.Errorf("ActiveTab = %s", svc.ActiveTab())
	}
}

func TestConfirmAppointment(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user: adminUser(),
		appointments: []appointments.Appointment{
			{ID: "apt1", Status: appointments.StatusPending},
			{ID: "apt2", Status: appointments.StatusConfirmed},
		},
	}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "admin@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}

	if err := svc.ConfirmAppointment(ctx, "apt1"); err != nil {
		t.Fatalf("ConfirmAppointment: %v", err)
	}
	if fb.confirmCalls != 1 {
		t.Error("backend no llamado")
	}

	if err := svc.ConfirmAppointment(ctx, "apt2"); !errors.Is(err, ErrBadState) {
		t.Fatalf("confirmar confirmada: err = %v, quiero ErrBadState", err)
	}
	if err := svc.ConfirmAppointment(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, quiero ErrNotFound", err)
	}
}

func TestConfirmAppointmentForbiddenForVet(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user:         vetUser(),
		appointments: []appointments.Appointment{{ID: "apt1", Status: appointments.StatusPending}},
	}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "vet@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}
	if err := svc.ConfirmAppointment(ctx, "apt1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, quiero ErrForbidden", err)
	}
	if fb.confirmCalls != 0 {
		t.Error("backend no debe ser llamado")
	}
}

func TestAssignVet(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user: vetUser(),
		appointments: []appointments.Appointment{
			{ID: "apt1", Status: appointments.StatusConfirmed},
			{ID: "apt2", Status: appointments.StatusConfirmed, Vet: users.Ref{ID: "otro"}},
		},
	}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "vet@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}

	if err := svc.AssignVet(ctx, "apt1"); err != nil {
		t.Fatalf("AssignVet: %v", err)
	}
	if fb.lastAssignVetID != "v1" {
		t.Errorf("vetId enviado = %q", fb.lastAssignVetID)
	}

	// Con veterinario asignado la acción ya no corre.
	if err := svc.AssignVet(ctx, "apt2"); !errors.Is(err, ErrBadState) {
		t.Fatalf("err = %v, quiero ErrBadState", err)
	}
}

func TestUpdateStatusCompletedRequiresDetails(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user:         vetUser(),
		appointments: []appointments.Appointment{{ID: "apt1", Status: appointments.StatusInProgress}},
	}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "vet@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}

	err := svc.UpdateStatus(ctx, "apt1", appointments.StatusCompleted, "", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, quiero ErrInvalidInput", err)
	}
	err = svc.UpdateStatus(ctx, "apt1", appointments.StatusCompleted, "Диагноз", " ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, quiero ErrInvalidInput", err)
	}
	if fb.updateStatusCalls != 0 {
		t.Fatal("completed sin detalles no debe llegar al backend")
	}

	if err := svc.UpdateStatus(ctx, "apt1", appointments.StatusCompleted, "Отит", "Капли"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if fb.updateStatusCalls != 1 {
		t.Fatal("backend no llamado")
	}
	if fb.lastStatusUpdate.Diagnosis != "Отит" || fb.lastStatusUpdate.Treatment != "Капли" {
		t.Errorf("payload = %+v", fb.lastStatusUpdate)
	}
}

func TestUpdateStatusRejectsUnknownStatusAndClients(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user:         vetUser(),
		appointments: []appointments.Appointment{{ID: "apt1", Status: appointments.StatusConfirmed}},
	}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "vet@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}
	if err := svc.UpdateStatus(ctx, "apt1", appointments.Status("paused"), "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, quiero ErrInvalidInput", err)
	}

	fb2 := &fakeBackend{user: clientUser()}
	svc2 := newTestService(fb2, &fakeStore{})
	if _, err := svc2.Login(ctx, "client@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}
	if err := svc2.UpdateStatus(ctx, "apt1", appointments.StatusCancelled, "", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, quiero ErrForbidden", err)
	}
}

func TestCompleteAppointmentChecksCachedState(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user: vetUser(),
		appointments: []appointments.Appointment{
			{ID: "apt1", Status: appointments.StatusInProgress},
			{ID: "apt2", Status: appointments.StatusPending},
		},
	}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "vet@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}

	if err := svc.CompleteAppointment(ctx, "apt1", "Отит", "Капли"); err != nil {
		t.Fatalf("CompleteAppointment: %v", err)
	}
	if err := svc.CompleteAppointment(ctx, "apt2", "Отит", "Капли"); !errors.Is(err, ErrBadState) {
		t.Fatalf("completar pending: err = %v, quiero ErrBadState", err)
	}
}

func TestTabsPerRole(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeBackend{user: clientUser()}, &fakeStore{})

	anon := svc.Tabs()
	if len(anon) != 2 || anon[0] != TabLogin || anon[1] != TabRegister {
		t.Fatalf("tabs anónimos = %v", anon)
	}

	if _, err := svc.Login(ctx, "client@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}
	for _, tab := range svc.Tabs() {
		if tab == TabAdminUsers || tab == TabVetSchedule {
			t.Errorf("client no debe ver %s", tab)
		}
	}
	if err := svc.SetActiveTab(TabAdminUsers); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, quiero ErrForbidden", err)
	}
	if err := svc.SetActiveTab(TabAllPets); err != nil {
		t.Fatalf("SetActiveTab: %v", err)
	}
	if svc.ActiveTab() != TabAllPets {
		t.Errorf("ActiveTab = %s", svc.ActiveTab())
	}
}

func TestQueriesFilterCachedAppointments(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user: clientUser(),
		appointments: []appointments.Appointment{
			{ID: "a1", Owner: users.Ref{ID: "c1"}, Status: appointments.StatusPending},
			{ID: "a2", Owner: users.Ref{ID: "otro"}, Status: appointments.StatusConfirmed},
			{ID: "a3", Owner: users.Ref{User: &users.User{ID: "c1"}}, Status: appointments.StatusInProgress},
			{ID: "a4", Owner: users.Ref{ID: "otro"}, Status: appointments.StatusCompleted},
		},
	}
	svc := newTestService(fb, &fakeStore{})
	if _, err := svc.Login(ctx, "client@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}

	mine := svc.MyAppointments()
	if len(mine) != 2 {
		t.Fatalf("MyAppointments = %d, quiero 2 (id pelado + doc embebido)", len(mine))
	}

	sched := svc.Schedule()
	if len(sched) != 2 {
		t.Fatalf("Schedule = %d, quiero 2", len(sched))
	}
	for _, apt := range sched {
		if apt.Status != appointments.StatusConfirmed && apt.Status != appointments.StatusInProgress {
			t.Errorf("Schedule incluye %s", apt.Status)
		}
	}

	st := svc.Stats()
	if st.TotalAppointments != 4 || st.MyAppointments != 2 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestStaleRefreshDiscardedAfterLogout(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		user: clientUser(),
		pets: []pets.Pet{{ID: "p1"}},
	}
	st := &fakeStore{}
	svc := newTestService(fb, st)

	if _, err := svc.Login(ctx, "client@vet.ru", "123"); err != nil {
		t.Fatal(err)
	}

	// El logout ocurre mientras el refresh está leyendo pets: el resultado
	// llega con generación vieja y se descarta.
	fb.onListPets = func() {
		fb.onListPets = nil
		if err := svc.Logout(ctx); err != nil {
			t.Errorf("Logout: %v", err)
		}
	}
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if len(svc.Pets()) != 0 {
		t.Error("escritura de sesión vieja no descartada")
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Error("sesión debería estar cerrada")
	}
}
