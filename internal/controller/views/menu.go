package views

import (
	"github.com/go-telegram/bot/models"

	"github.com/zdorovieplus/clinic_bot/internal/controller/keyboard"
)

// Callback data главного меню. Используются и командами, и кнопками.
const (
	MenuAppointment    = "appointment"
	MenuMyAppointments = "my_appointments"
	MenuDoctors        = "doctors"
	MenuClinicInfo     = "clinic_info"
	MenuConsultation   = "consultation"
	MenuReviews        = "reviews"
	MenuNews           = "news"
)

// MainMenuKeyboard строит клавиатуру главного меню
func MainMenuKeyboard() *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().
		Row(keyboard.Button("📅 Записаться на приём", MenuAppointment)).
		Row(keyboard.Button("🗂 Мои записи", MenuMyAppointments)).
		Row(keyboard.Button("👨‍⚕️ Наши врачи", MenuDoctors)).
		Row(keyboard.Button("ℹ️ О клинике", MenuClinicInfo)).
		Row(keyboard.Button("💬 Онлайн-консультация", MenuConsultation)).
		Row(keyboard.Button("⭐ Отзывы", MenuReviews)).
		Row(keyboard.Button("🔔 Новости и акции", MenuNews)).
		Build()
}
