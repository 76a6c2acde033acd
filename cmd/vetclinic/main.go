package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"vetclinic-client/internal/adapters/backend/vetapi"
	fileStore "vetclinic-client/internal/adapters/sessionstore/file"
	memStore "vetclinic-client/internal/adapters/sessionstore/memory"
	redisStore "vetclinic-client/internal/adapters/sessionstore/redis"
	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/session"
	"vetclinic-client/internal/domain/users"
	"vetclinic-client/internal/platform/logger"
	"vetclinic-client/internal/ports/backend"
	"vetclinic-client/internal/ports/sessionstore"
)

// defaultAPIURL es el backend de producción; se pisa con VET_API_URL
// (p.ej. http://localhost:8080/api contra el devserver).
const defaultAPIURL = "https://vetbackend-mby3.onrender.com/api"

func main() {
	_ = godotenv.Load()

	lg := logger.NewFromEnv()
	ctx := context.Background()

	apiURL := os.Getenv("VET_API_URL")
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultAPIURL
	}

	client, err := vetapi.NewClient(vetapi.Config{
		BaseURL: apiURL,
		Timeout: 10 * time.Second,
	})
	if err != nil {
		log.Fatalf("vetapi client: %v", err)
	}

	store, err := buildSessionStore(ctx)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}

	svc := session.NewService(client, store, lg)

	if u, ok, err := svc.Restore(ctx); err != nil {
		lg.Warn("restore session failed", map[string]any{"err": err.Error()})
	} else if ok {
		fmt.Printf("Сессия восстановлена: %s (%s)\n", u.Name, u.Role)
	}

	fmt.Println("🐾 Ветеринарная клиника — терминальный клиент. Команда: help")
	repl(ctx, svc)
}

func buildSessionStore(ctx context.Context) (sessionstore.Store, error) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SESSION_STORE"))) {
	case "redis":
		db := 0
		if v := os.Getenv("REDIS_DB"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				db = n
			}
		}
		return redisStore.New(ctx, redisStore.Config{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       db,
		})
	case "memory":
		return memStore.New(), nil
	default:
		return fileStore.New(os.Getenv("SESSION_DIR"))
	}
}

func repl(ctx context.Context, svc *session.Service) {
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", svc.ActiveTab())
		if !sc.Scan() {
			return
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		if cmd == "quit" || cmd == "exit" {
			return
		}
		if err := run(ctx, svc, cmd, args); err != nil {
			printErr(err)
		}
	}
}

func run(ctx context.Context, svc *session.Service, cmd string, args []string) error {
	switch cmd {
	case "help":
		printHelp()

	case "tabs":
		for _, t := range svc.Tabs() {
			fmt.Printf("  %-20s %s\n", t, t.Label())
		}
	case "open":
		if len(args) != 1 {
			return usage("open <tab>")
		}
		return svc.SetActiveTab(session.Tab(args[0]))

	case "login":
		if len(args) != 2 {
			return usage("login <email> <password>")
		}
		u, err := svc.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Добро пожаловать, %s (%s)\n", u.Name, u.Role)
	case "register":
		if len(args) < 3 || len(args) > 4 {
			return usage("register <name> <email> <password> [role]")
		}
		role := users.RoleClient
		if len(args) == 4 {
			parsed, err := users.ParseRole(args[3])
			if err != nil {
				return err
			}
			role = parsed
		}
		u, err := svc.Register(ctx, args[0], args[1], args[2], role)
		if err != nil {
			return err
		}
		fmt.Printf("Аккаунт создан: %s (%s)\n", u.Name, u.Role)
	case "logout":
		return svc.Logout(ctx)

	case "refresh":
		return svc.Refresh(ctx)

	case "stats":
		st := svc.Stats()
		fmt.Printf("Всего питомцев: %d\n", st.TotalPets)
		fmt.Printf("Мои питомцы: %d\n", st.MyPets)
		fmt.Printf("Всего записей: %d\n", st.TotalAppointments)
		fmt.Printf("Мои записи: %d\n", st.MyAppointments)
		if st.VetAppointments > 0 {
			fmt.Printf("Мои приемы: %d\n", st.VetAppointments)
		}

	case "pets":
		printPetsOf(svc.Pets())
	case "my-pets":
		printPetsOf(svc.MyPets())
	case "appointments":
		printAppointments(svc.Appointments())
	case "my-appointments":
		printAppointments(svc.MyAppointments())
	case "vet-appointments":
		printAppointments(svc.VetAppointments())
	case "schedule":
		printAppointments(svc.Schedule())
	case "users":
		for _, u := range svc.Users() {
			fmt.Printf("  %s  %-25s %-10s %s\n", u.ID, u.Email, u.Role, u.Name)
		}

	case "add-pet":
		if len(args) < 2 {
			return usage("add-pet <name> <type> [breed] [age]")
		}
		in := session.AddPetInput{Name: args[0], Type: args[1]}
		if len(args) > 2 {
			in.Breed = args[2]
		}
		if len(args) > 3 {
			in.Age = args[3]
		}
		p, err := svc.AddPet(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("Питомец добавлен: %s (%s)\n", p.Name, p.ID)

	case "add-appointment":
		if len(args) < 4 {
			return usage("add-appointment <petId> <date> <time> <reason...>")
		}
		apt, err := svc.CreateAppointment(ctx, session.CreateAppointmentInput{
			PetID:  args[0],
			Date:   args[1],
			Time:   args[2],
			Reason: strings.Join(args[3:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Запись создана: %s. Ожидайте подтверждения администратором.\n", apt.ID)

	case "set-role":
		if len(args) != 2 {
			return usage("set-role <userId> <role>")
		}
		role, err := users.ParseRole(args[1])
		if err != nil {
			return err
		}
		if err := svc.ChangeUserRole(ctx, args[0], role); err != nil {
			return err
		}
		fmt.Println("Роль успешно изменена")

	case "confirm":
		if len(args) != 1 {
			return usage("confirm <appointmentId>")
		}
		if err := svc.ConfirmAppointment(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Запись подтверждена")
	case "take":
		if len(args) != 1 {
			return usage("take <appointmentId>")
		}
		if err := svc.AssignVet(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Врач назначен")
	case "start":
		if len(args) != 1 {
			return usage("start <appointmentId>")
		}
		return svc.UpdateStatus(ctx, args[0], appointments.StatusInProgress, "", "")
	case "cancel":
		if len(args) != 1 {
			return usage("cancel <appointmentId>")
		}
		return svc.UpdateStatus(ctx, args[0], appointments.StatusCancelled, "", "")
	case "complete":
		// diagnosis|treatment separados por "|" para poder llevar espacios
		if len(args) < 2 {
			return usage("complete <appointmentId> <диагноз>|<лечение>")
		}
		parts := strings.SplitN(strings.Join(args[1:], " "), "|", 2)
		if len(parts) != 2 {
			return usage("complete <appointmentId> <диагноз>|<лечение>")
		}
		if err := svc.CompleteAppointment(ctx, args[0], strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])); err != nil {
			return err
		}
		fmt.Println("Прием завершен")

	default:
		return fmt.Errorf("неизвестная команда %q (help)", cmd)
	}
	return nil
}

func printPetsOf(list []pets.Pet) {
	for _, p := range list {
		fmt.Printf("  %s  %-12s %-10s %-15s %s лет  владелец: %s\n",
			p.ID, p.Name, p.Type, p.Breed, p.Age, p.Owner.DisplayName())
	}
}

func printAppointments(list []appointments.Appointment) {
	for _, apt := range list {
		vet := ""
		if apt.HasVet() {
			vet = "  врач: " + apt.Vet.DisplayName()
		}
		fmt.Printf("  %s  %s %s  %s (%s)  владелец: %s  [%s]%s\n",
			apt.ID,
			apt.Date,
			apt.Time,
			apt.Pet.DisplayName(),
			apt.Pet.DisplayType(),
			apt.Owner.DisplayName(),
			apt.Status.Label(),
			vet,
		)
		if apt.Diagnosis != "" {
			fmt.Printf("      диагноз: %s; лечение: %s\n", apt.Diagnosis, apt.Treatment)
		}
	}
}

func printErr(err error) {
	if rej, ok := backend.AsRejected(err); ok && rej.Message != "" {
		fmt.Println("⚠", rej.Message)
		return
	}
	fmt.Println("⚠", err)
}

func usage(s string) error {
	return fmt.Errorf("uso: %s", s)
}

func printHelp() {
	fmt.Print(`Команды:
  login <email> <password>                 вход (демо: client@vet.ru / 123)
  register <name> <email> <password> [role]
  logout                                   выход и очистка сессии
  refresh                                  перезагрузить коллекции
  tabs / open <tab>                        вкладки, смена вкладки
  stats                                    счетчики панели управления
  pets | my-pets                           питомцы
  appointments | my-appointments           записи
  vet-appointments | schedule              приемы врача, расписание
  users                                    пользователи (админ)
  add-pet <name> <type> [breed] [age]
  add-appointment <petId> <date> <time> <reason...>
  set-role <userId> <role>                 смена роли (админ)
  confirm <id>                             подтвердить (админ)
  take <id>                                взять на себя (врач)
  start <id> | cancel <id>                 начать / отменить прием (врач)
  complete <id> <диагноз>|<лечение>        завершить прием (врач)
  quit
`)
}
