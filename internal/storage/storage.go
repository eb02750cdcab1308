package storage

import (
	"context"

	"github.com/zdorovieplus/clinic_bot/internal/model"
)

// Названия листов в книге/таблице
const (
	AppointmentsSheet  = "Записи на прием"
	ReviewsSheet       = "Отзывы"
	ConsultationsSheet = "Онлайн консультации"
	SubscribersSheet   = "Подписчики"
)

// Заголовки листов. Порядок колонок - часть контракта, по нему
// разбираются и собираются строки.
var (
	AppointmentsHeader = []string{
		"Дата записи", "Время", "ФИО пациента", "Телефон",
		"Врач", "Специализация", "Статус", "ID пользователя", "Дата создания",
	}
	ReviewsHeader = []string{
		"Дата", "ФИО", "Оценка", "Отзыв", "ID пользователя", "Статус",
	}
	ConsultationsHeader = []string{
		"Дата", "Вопрос", "ID пользователя", "Статус", "Ответ",
	}
	SubscribersHeader = []string{
		"ID пользователя", "Имя", "Дата подписки",
	}
)

// Store - единый контракт табличного хранилища. Две реализации:
// локальная книга Excel и таблица Google Sheets; обе взаимозаменяемы,
// остальной код от бэкенда не зависит.
//
// Семантика, общая для обеих реализаций:
//   - AddAppointment дедуплицирует по слот-ключу (пользователь, дата,
//     время, врач), оставляя строку с самой поздней датой создания;
//   - AppointmentsByUser возвращает уже дедуплицированный список;
//   - DeleteAppointment удаляет строку только при полном совпадении
//     всех пяти ключевых полей и сообщает, была ли что-то удалено;
//   - AddSubscriber идемпотентна по ID пользователя.
type Store interface {
	AddAppointment(ctx context.Context, appt model.Appointment) error
	Appointments(ctx context.Context) ([]model.Appointment, error)
	AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error)
	BookedTimes(ctx context.Context, doctorName, date string) (map[string]struct{}, error)
	DeleteAppointment(ctx context.Context, key model.IdentityKey) (bool, error)
	UpdateAppointmentStatus(ctx context.Context, rowIndex int, status string) error

	AddReview(ctx context.Context, review model.Review) error
	Reviews(ctx context.Context) ([]model.Review, error)
	UpdateReviewStatus(ctx context.Context, rowIndex int, status string) error

	AddConsultation(ctx context.Context, c model.Consultation) error
	Consultations(ctx context.Context) ([]model.Consultation, error)

	AddSubscriber(ctx context.Context, s model.Subscriber) error
	Subscribers(ctx context.Context) ([]model.Subscriber, error)
}
