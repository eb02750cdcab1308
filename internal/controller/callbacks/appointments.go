package callbacks

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/config"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
	"github.com/zdorovieplus/clinic_bot/internal/service"
)

func clinicPhone() string { return config.Clinic.Phone }

func (h *Handler) handleMyAppointments(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	userID := callback.From.ID
	appts := h.appointments.ForUser(ctx, userID)
	text, kb := views.BuildListing(appts, time.Now())

	edited := h.edit(ctx, b, callback, text, kb)
	if edited == nil {
		return
	}

	// Запоминаем показанный список: кнопки отмены ссылаются на номера именно из него
	h.viewCache.Remember(userID, views.Entry{
		ChatID:    edited.Chat.ID,
		MessageID: edited.ID,
		Snapshot:  appts,
	})
}

func (h *Handler) handleCancelAppointment(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	userID := callback.From.ID

	index, err := strconv.Atoi(strings.TrimPrefix(callback.Data, CancelApptPrefix))
	if err != nil {
		h.answerAlert(ctx, b, callback.ID, "Не удалось определить запись. Обновите список.")
		return
	}

	appt, err := h.viewCache.AppointmentAt(userID, index)
	if err != nil {
		h.answerAlert(ctx, b, callback.ID, "Список записей устарел. Откройте «Мои записи» ещё раз.")
		return
	}

	switch err := h.appointments.Cancel(ctx, appt); {
	case err == nil:
		h.answerAlert(ctx, b, callback.ID, "✅ Запись отменена")
	case errors.Is(err, service.ErrAlreadyCancelled):
		h.answerAlert(ctx, b, callback.ID, "Эта запись уже отменена.")
	case errors.Is(err, service.ErrTooLate):
		h.answerAlert(ctx, b, callback.ID,
			"До приёма осталось меньше 24 часов. Для отмены позвоните в регистратуру: "+clinicPhone())
		return
	case errors.Is(err, service.ErrBadDate):
		h.answerAlert(ctx, b, callback.ID,
			"Не удалось определить дату приёма. Обратитесь в регистратуру: "+clinicPhone())
		return
	case errors.Is(err, service.ErrNotFound):
		h.answerAlert(ctx, b, callback.ID, "Запись не найдена. Возможно, она уже удалена.")
	default:
		h.logger.Error("Failed to cancel appointment",
			zap.Int64("user_id", userID),
			zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка при отмене. Попробуйте позже.")
		return
	}

	// Перерисовываем список по актуальным данным
	appts := h.appointments.ForUser(ctx, userID)
	text, kb := views.BuildListing(appts, time.Now())
	edited := h.edit(ctx, b, callback, text, kb)
	if edited != nil {
		h.viewCache.Remember(userID, views.Entry{
			ChatID:    edited.Chat.ID,
			MessageID: edited.ID,
			Snapshot:  appts,
		})
	}
}
