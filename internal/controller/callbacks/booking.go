package callbacks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/zdorovieplus/clinic_bot/internal/config"
	"github.com/zdorovieplus/clinic_bot/internal/controller/keyboard"
	"github.com/zdorovieplus/clinic_bot/internal/controller/state"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
)

// Шаги записи на приём: специализация → врач → дата → время,
// дальше диалог продолжается текстом (ФИО и телефон).

func (h *Handler) handleShowSpecializations(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	builder := keyboard.NewBuilder()
	var buttons []models.InlineKeyboardButton
	for _, spec := range config.Specializations {
		buttons = append(buttons, keyboard.Button(spec, SpecPrefix+spec))
	}
	builder.Grid(2, buttons...)
	builder.Row(keyboard.Button("🔙 Назад", BackToMenu))

	h.edit(ctx, b, callback, "Выберите специализацию врача:", builder.Build())
}

func (h *Handler) handleSpecialization(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	spec := strings.TrimPrefix(callback.Data, SpecPrefix)

	doctors := config.Doctors[spec]
	if len(doctors) == 0 {
		h.answerAlert(ctx, b, callback.ID,
			"К сожалению, по этой специализации сейчас нет доступных врачей.")
		return
	}
	h.answer(ctx, b, callback.ID, "")

	text := fmt.Sprintf("Врачи по специализации «%s»:\n\n", spec)
	builder := keyboard.NewBuilder()
	for i, d := range doctors {
		text += fmt.Sprintf("%s %s\nОпыт работы: %s\n%s\n\n", d.Photo, d.Name, d.Experience, d.Description)
		builder.Row(keyboard.Button(
			fmt.Sprintf("%s %s", d.Photo, d.Name),
			fmt.Sprintf("%s%s_%d", DoctorPrefix, spec, i),
		))
	}
	builder.Row(keyboard.Button("🔙 Назад", views.MenuAppointment))

	h.edit(ctx, b, callback, text, builder.Build())
}

func (h *Handler) handleDoctor(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	payload := strings.TrimPrefix(callback.Data, DoctorPrefix)
	sep := strings.LastIndex(payload, "_")
	if sep < 0 {
		h.answerAlert(ctx, b, callback.ID, "Не удалось определить врача. Начните запись заново.")
		return
	}
	spec := payload[:sep]
	index, err := strconv.Atoi(payload[sep+1:])
	doctors := config.Doctors[spec]
	if err != nil || index < 0 || index >= len(doctors) {
		h.answerAlert(ctx, b, callback.ID, "Не удалось определить врача. Начните запись заново.")
		return
	}
	doctor := doctors[index]
	h.answer(ctx, b, callback.ID, "")

	h.stateManager.Update(callback.From.ID, func(s *state.Session) {
		s.Booking = state.BookingDraft{
			Specialization: spec,
			DoctorName:     doctor.Name,
		}
	})

	dates := h.appointments.AvailableDates(time.Now())
	builder := keyboard.NewBuilder()
	var buttons []models.InlineKeyboardButton
	for _, d := range dates {
		buttons = append(buttons, keyboard.Button(d, DatePrefix+d))
	}
	builder.Grid(3, buttons...)
	builder.Row(keyboard.Button("🔙 Назад", SpecPrefix+spec))

	text := fmt.Sprintf("Вы выбрали: %s %s\n\nВыберите дату приёма:", doctor.Photo, doctor.Name)
	h.edit(ctx, b, callback, text, builder.Build())
}

func (h *Handler) handleDate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	date := strings.TrimPrefix(callback.Data, DatePrefix)

	session, ok := h.stateManager.Session(callback.From.ID)
	if !ok || session.Booking.DoctorName == "" {
		h.answerAlert(ctx, b, callback.ID, "Сначала выберите врача. Начните запись заново.")
		return
	}
	h.answer(ctx, b, callback.ID, "")

	h.stateManager.Update(callback.From.ID, func(s *state.Session) {
		s.Booking.Date = date
	})

	times := h.appointments.AvailableTimes(ctx, session.Booking.DoctorName, date)
	if len(times) == 0 {
		kb := keyboard.NewBuilder().
			Row(keyboard.Button("🔙 Выбрать другого врача", SpecPrefix+session.Booking.Specialization)).
			Row(keyboard.Button("🔙 Главное меню", BackToMenu)).
			Build()
		h.edit(ctx, b, callback,
			fmt.Sprintf("На %s у врача %s нет свободного времени.\nВыберите другую дату.", date, session.Booking.DoctorName), kb)
		return
	}

	builder := keyboard.NewBuilder()
	var buttons []models.InlineKeyboardButton
	for _, t := range times {
		buttons = append(buttons, keyboard.Button(t, TimePrefix+t))
	}
	builder.Grid(3, buttons...)
	builder.Row(keyboard.Button("🔙 Главное меню", BackToMenu))

	text := fmt.Sprintf("Дата: %s\nВрач: %s\n\nВыберите время приёма:", date, session.Booking.DoctorName)
	h.edit(ctx, b, callback, text, builder.Build())
}

func (h *Handler) handleTime(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	timeSlot := strings.TrimPrefix(callback.Data, TimePrefix)

	session, ok := h.stateManager.Session(callback.From.ID)
	if !ok || session.Booking.DoctorName == "" || session.Booking.Date == "" {
		h.answerAlert(ctx, b, callback.ID, "Данные записи устарели. Начните запись заново.")
		return
	}
	h.answer(ctx, b, callback.ID, "")

	h.stateManager.Update(callback.From.ID, func(s *state.Session) {
		s.Booking.Time = timeSlot
		s.State = state.StateBookingName
	})

	text := fmt.Sprintf("Врач: %s\nДата: %s\nВремя: %s\n\nДля завершения записи введите ваше ФИО:",
		session.Booking.DoctorName, session.Booking.Date, timeSlot)
	h.edit(ctx, b, callback, text, nil)
}
