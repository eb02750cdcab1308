package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/controller/keyboard"
	"github.com/zdorovieplus/clinic_bot/internal/controller/state"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
)

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от
// состояния пользователя. Сообщение вне активного диалога игнорируется.
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Команды обрабатываются другими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)
	if currentState == state.StateNone {
		return
	}

	h.logger.Info("Handling dialog step",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateBookingName:
		h.handleBookingNameStep(ctx, b, update)
	case state.StateBookingPhone:
		h.handleBookingPhoneStep(ctx, b, update)
	case state.StateReviewText:
		h.handleReviewTextStep(ctx, b, update)
	case state.StateConsultationQuestion:
		h.handleConsultationStep(ctx, b, update)
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
	}
}

// handleBookingNameStep обрабатывает ввод ФИО пациента
func (h *Handlers) handleBookingNameStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	name := strings.TrimSpace(update.Message.Text)

	if name == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ ФИО не может быть пустым.\n\nПопробуйте ещё раз:",
		})
		return
	}

	h.stateManager.Update(telegramID, func(s *state.Session) {
		s.Booking.PatientName = name
		s.State = state.StateBookingPhone
	})

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "Теперь введите ваш номер телефона:",
	})
}

// handleBookingPhoneStep завершает запись: сохраняет строку в таблицу
func (h *Handlers) handleBookingPhoneStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	phone := strings.TrimSpace(update.Message.Text)

	text, kb := h.finishBooking(ctx, telegramID, phone)

	params := &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	b.SendMessage(ctx, params)
}

// finishBooking - терминальный шаг диалога записи.
// Сессия очищается независимо от исхода, чтобы диалог не завис.
func (h *Handlers) finishBooking(ctx context.Context, telegramID int64, phone string) (string, *models.InlineKeyboardMarkup) {
	session, ok := h.stateManager.Session(telegramID)
	h.stateManager.Clear(telegramID)

	draft := session.Booking
	draft.Phone = phone
	if !ok || !draft.ReadyToBook() {
		// Терминальный шаг без накопленных данных - защитный no-op
		h.logger.Warn("Booking draft is incomplete at terminal step",
			zap.Int64("telegram_id", telegramID))
		return "❌ Данные записи не найдены. Начните запись заново через главное меню.", nil
	}

	appt, err := h.appointments.Book(ctx, telegramID,
		draft.PatientName, draft.Phone, draft.DoctorName,
		draft.Specialization, draft.Date, draft.Time)
	if err != nil {
		h.logger.Error("Failed to book appointment", zap.Error(err))
		return "❌ Произошла ошибка при создании записи. Попробуйте позже.", nil
	}

	confirmation := fmt.Sprintf(
		"✅ Запись успешно создана!\n\n"+
			"Врач: %s\n"+
			"Специализация: %s\n"+
			"Дата: %s\n"+
			"Время: %s\n"+
			"ФИО: %s\n"+
			"Телефон: %s\n\n"+
			"Мы напомним вам за день до приема.",
		appt.DoctorName, appt.Specialization, appt.Date, appt.Time,
		appt.PatientName, appt.Phone,
	)
	kb := keyboard.NewBuilder().
		Row(keyboard.Button("🔙 Главное меню", views.BackToMenu)).
		Build()
	return confirmation, kb
}

// handleReviewTextStep завершает отзыв.
// Оценка очищается даже при сбое записи в таблицу.
func (h *Handlers) handleReviewTextStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	text := update.Message.Text

	session, ok := h.stateManager.Session(telegramID)
	h.stateManager.Clear(telegramID)

	if !ok || session.Review.Rating == 0 {
		h.logger.Warn("Review draft is missing rating at terminal step",
			zap.Int64("telegram_id", telegramID))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Оценка не найдена. Начните отзыв заново через меню «Отзывы».",
		})
		return
	}

	user := update.Message.From
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)

	if err := h.reviews.Add(ctx, telegramID, name, session.Review.Rating, text); err != nil {
		h.logger.Error("Failed to save review", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Произошла ошибка при сохранении отзыва. Попробуйте позже.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "✅ Спасибо за ваш отзыв! Он будет опубликован после модерации.",
	})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        "Выберите нужную опцию:",
		ReplyMarkup: views.MainMenuKeyboard(),
	})
}

// handleConsultationStep сохраняет вопрос для онлайн-консультации
func (h *Handlers) handleConsultationStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	question := update.Message.Text

	h.stateManager.Clear(telegramID)

	if err := h.consultations.Add(ctx, telegramID, question); err != nil {
		h.logger.Error("Failed to save consultation", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Произошла ошибка при отправке вопроса. Попробуйте позже.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "✅ Ваш вопрос отправлен! Врач свяжется с вами в ближайшее время.",
	})
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        "Выберите нужную опцию:",
		ReplyMarkup: views.MainMenuKeyboard(),
	})
}
