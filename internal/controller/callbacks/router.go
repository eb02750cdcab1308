package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/controller/state"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
	"github.com/zdorovieplus/clinic_bot/internal/service"
)

// ========================
// Callback Data Patterns
// ========================

const (
	BackToMenu = views.BackToMenu

	// Меню отзывов
	WriteReview = "write_review"
	ViewReviews = "view_reviews"

	// Подписка на новости
	SubscribeNews = "subscribe_news"

	// Шаги записи на приём
	SpecPrefix   = "spec_"   // spec_Терапевт
	DoctorPrefix = "doctor_" // doctor_Терапевт_0 (специализация_индекс)
	DatePrefix   = "date_"   // date_15.09.2025
	TimePrefix   = "time_"   // time_10:00

	// Оценка отзыва
	RatingPrefix = "rating_" // rating_5

	// Отмена записи по номеру из показанного списка
	CancelApptPrefix = "cancel_appt_" // cancel_appt_2
)

// Handler содержит зависимости всех callback-обработчиков
type Handler struct {
	appointments *service.AppointmentService
	reviews      *service.ReviewService
	subscribers  *service.SubscriberService
	stateManager *state.Manager
	viewCache    *views.Cache
	logger       *zap.Logger
}

func NewHandler(
	appointments *service.AppointmentService,
	reviews *service.ReviewService,
	subscribers *service.SubscriberService,
	stateManager *state.Manager,
	viewCache *views.Cache,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		appointments: appointments,
		reviews:      reviews,
		subscribers:  subscribers,
		stateManager: stateManager,
		viewCache:    viewCache,
		logger:       logger,
	}
}

// HandleCallbackQuery распределяет нажатия кнопок по обработчикам
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}
	data := callback.Data

	h.logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID))

	switch {
	case data == BackToMenu:
		h.handleBackToMenu(ctx, b, callback)
	case data == views.MenuAppointment:
		h.handleShowSpecializations(ctx, b, callback)
	case data == views.MenuMyAppointments:
		h.handleMyAppointments(ctx, b, callback)
	case data == views.MenuDoctors:
		h.handleShowDoctors(ctx, b, callback)
	case data == views.MenuClinicInfo:
		h.handleClinicInfo(ctx, b, callback)
	case data == views.MenuConsultation:
		h.handleStartConsultation(ctx, b, callback)
	case data == views.MenuReviews:
		h.handleReviewsMenu(ctx, b, callback)
	case data == views.MenuNews:
		h.handleShowNews(ctx, b, callback)
	case data == SubscribeNews:
		h.handleSubscribeNews(ctx, b, callback)
	case data == WriteReview:
		h.handleWriteReview(ctx, b, callback)
	case data == ViewReviews:
		h.handleViewReviews(ctx, b, callback)
	case strings.HasPrefix(data, RatingPrefix):
		h.handleRating(ctx, b, callback)
	case strings.HasPrefix(data, CancelApptPrefix):
		h.handleCancelAppointment(ctx, b, callback)
	case strings.HasPrefix(data, SpecPrefix):
		h.handleSpecialization(ctx, b, callback)
	case strings.HasPrefix(data, DoctorPrefix):
		h.handleDoctor(ctx, b, callback)
	case strings.HasPrefix(data, DatePrefix):
		h.handleDate(ctx, b, callback)
	case strings.HasPrefix(data, TimePrefix):
		h.handleTime(ctx, b, callback)
	default:
		h.logger.Warn("Unknown callback data", zap.String("data", data))
		h.answer(ctx, b, callback.ID, "")
	}
}

// answer подтверждает callback query (без alert)
func (h *Handler) answer(ctx context.Context, b *bot.Bot, callbackID, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// answerAlert подтверждает callback query всплывающим окном
func (h *Handler) answerAlert(ctx context.Context, b *bot.Bot, callbackID, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// message извлекает сообщение из callback query
func message(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// edit заменяет текст и клавиатуру сообщения, по которому нажали кнопку
func (h *Handler) edit(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string, kb *models.InlineKeyboardMarkup) *models.Message {
	msg := message(callback)
	if msg == nil {
		return nil
	}
	params := &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	edited, err := b.EditMessageText(ctx, params)
	if err != nil {
		h.logger.Warn("Failed to edit message", zap.Error(err))
		return nil
	}
	return edited
}
