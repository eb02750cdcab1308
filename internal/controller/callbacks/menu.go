package callbacks

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/config"
	"github.com/zdorovieplus/clinic_bot/internal/controller/keyboard"
	"github.com/zdorovieplus/clinic_bot/internal/controller/state"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
)

func (h *Handler) handleBackToMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")
	h.edit(ctx, b, callback, "Выберите нужную опцию:", views.MainMenuKeyboard())
}

func (h *Handler) handleShowDoctors(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	text := "Наши врачи:\n\n"
	for _, spec := range config.Specializations {
		doctors := config.Doctors[spec]
		if len(doctors) == 0 {
			continue
		}
		text += fmt.Sprintf("🏥 %s:\n", spec)
		for _, d := range doctors {
			text += fmt.Sprintf("  %s %s - %s\n", d.Photo, d.Name, d.Experience)
		}
		text += "\n"
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("📅 Записаться на приём", views.MenuAppointment)).
		Row(keyboard.Button("🔙 Назад", BackToMenu)).
		Build()
	h.edit(ctx, b, callback, text, kb)
}

func (h *Handler) handleClinicInfo(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	info := config.Clinic
	text := fmt.Sprintf("🏥 %s\n\n", info.Name)
	if info.Description != "" {
		text += info.Description + "\n\n"
	}
	text += fmt.Sprintf("📍 Адрес: %s\n", info.Address)
	text += fmt.Sprintf("⏰ Часы работы:\n%s\n", info.WorkingHours)
	text += fmt.Sprintf("📞 Телефон: %s\n", info.Phone)
	if info.Email != "" {
		text += fmt.Sprintf("✉️ Email: %s\n", info.Email)
	}
	text += fmt.Sprintf("🌐 Сайт: %s", info.Website)

	kb := keyboard.NewBuilder().
		Row(keyboard.URLButton("🗺️ Открыть карту", info.MapURL)).
		Row(keyboard.URLButton("🌐 Перейти на сайт", info.Website)).
		Row(keyboard.Button("🔙 Назад", BackToMenu)).
		Build()

	// Кнопки с URL иногда ломают редактирование - тогда шлём новое сообщение
	if h.edit(ctx, b, callback, text, kb) == nil {
		if msg := message(callback); msg != nil {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:      msg.Chat.ID,
				Text:        text,
				ReplyMarkup: kb,
			})
		}
	}
}

func (h *Handler) handleShowNews(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	text := "🔔 Новости и акции\n\n" +
		"🎉 Только в августе! Консультация кардиолога за 500₽ вместо 1000₽\n\n" +
		"🆕 Новый врач-невролог в нашей клинике\n\n" +
		"💉 Акция на анализы крови - скидка 20%\n\n" +
		"Подпишитесь на рассылку, чтобы получать уведомления о новых акциях!"

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("📧 Подписаться на рассылку", SubscribeNews)).
		Row(keyboard.Button("🔙 Назад", BackToMenu)).
		Build()
	h.edit(ctx, b, callback, text, kb)
}

func (h *Handler) handleSubscribeNews(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	user := callback.From
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("🔙 Главное меню", BackToMenu)).
		Build()

	if err := h.subscribers.Subscribe(ctx, user.ID, name); err != nil {
		h.logger.Error("Failed to subscribe user", zap.Error(err))
		h.edit(ctx, b, callback, "❌ Произошла ошибка при подписке. Попробуйте позже.", kb)
		return
	}

	h.edit(ctx, b, callback, "✅ Вы успешно подписались на рассылку новостей и акций!", kb)
}

func (h *Handler) handleStartConsultation(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	h.stateManager.SetState(callback.From.ID, state.StateConsultationQuestion)

	text := "💬 Онлайн-консультация\n\n" +
		"Опишите ваш вопрос, и наш врач свяжется с вами в ближайшее время."

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("🔙 Назад", BackToMenu)).
		Build()
	h.edit(ctx, b, callback, text, kb)
}
