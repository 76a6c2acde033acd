package session

import (
	"vetclinic-client/internal/domain/users"
)

// Tab identifica una vista del cliente. La transición entre tabs es estado
// local puro; las dos reglas automáticas (autenticado en login => dashboard,
// identidad limpiada => login) viven en los mutators de sesión.
type Tab string

const (
	TabLogin    Tab = "login"
	TabRegister Tab = "register"

	TabDashboard       Tab = "dashboard"
	TabMyPets          Tab = "my-pets"
	TabAllPets         Tab = "all-pets"
	TabMyAppointments  Tab = "my-appointments"
	TabAllAppointments Tab = "all-appointments"
	TabAddPet          Tab = "add-pet"
	TabAddAppointment  Tab = "add-appointment"

	TabAdminUsers        Tab = "admin-users"
	TabAdminAppointments Tab = "admin-appointments"

	TabVetAppointments Tab = "vet-appointments"
	TabVetSchedule     Tab = "vet-schedule"
)

// Label devuelve el rótulo de UI del tab (producto en ruso).
func (t Tab) Label() string {
	switch t {
	case TabLogin:
		return "Вход"
	case TabRegister:
		return "Регистрация"
	case TabDashboard:
		return "📊 Главная"
	case TabMyPets:
		return "🐶 Мои питомцы"
	case TabAllPets:
		return "📋 Все питомцы"
	case TabMyAppointments:
		return "📅 Мои записи"
	case TabAllAppointments:
		return "🗓️ Все записи"
	case TabAddPet:
		return "➕ Добавить питомца"
	case TabAddAppointment:
		return "🕒 Новая запись"
	case TabAdminUsers:
		return "👥 Управление пользователями"
	case TabAdminAppointments:
		return "📋 Все записи (админ)"
	case TabVetAppointments:
		return "🏥 Мои приемы"
	case TabVetSchedule:
		return "📅 Расписание"
	default:
		return string(t)
	}
}

// AnonTabs son las vistas disponibles sin sesión.
func AnonTabs() []Tab {
	return []Tab{TabLogin, TabRegister}
}

// TabsFor devuelve las vistas visibles para un rol autenticado:
// las siete base más las específicas de admin o vet.
func TabsFor(role users.Role) []Tab {
	tabs := []Tab{
		TabDashboard,
		TabMyPets,
		TabAllPets,
		TabMyAppointments,
		TabAllAppointments,
		TabAddPet,
		TabAddAppointment,
	}

	switch role {
	case users.RoleAdmin:
		tabs = append(tabs, TabAdminUsers, TabAdminAppointments)
	case users.RoleVet:
		tabs = append(tabs, TabVetAppointments, TabVetSchedule)
	}

	return tabs
}

func tabAllowed(tabs []Tab, t Tab) bool {
	for _, x := range tabs {
		if x == t {
			return true
		}
	}
	return false
}
