package callbacks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/zdorovieplus/clinic_bot/internal/controller/keyboard"
	"github.com/zdorovieplus/clinic_bot/internal/controller/state"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
)

const reviewListLimit = 10

func (h *Handler) handleReviewsMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("✍️ Оставить отзыв", WriteReview)).
		Row(keyboard.Button("👀 Посмотреть отзывы", ViewReviews)).
		Row(keyboard.Button("🔙 Назад", BackToMenu)).
		Build()
	h.edit(ctx, b, callback, "⭐ Отзывы о клинике\n\nВыберите действие:", kb)
}

func (h *Handler) handleWriteReview(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	builder := keyboard.NewBuilder()
	var buttons []models.InlineKeyboardButton
	for i := 1; i <= 5; i++ {
		buttons = append(buttons, keyboard.Button(
			fmt.Sprintf("%s (%d)", strings.Repeat("⭐", i), i),
			fmt.Sprintf("%s%d", RatingPrefix, i),
		))
	}
	builder.Grid(1, buttons...)
	builder.Row(keyboard.Button("🔙 Назад", views.MenuReviews))

	h.edit(ctx, b, callback, "Оцените нашу клинику от 1 до 5 звёзд:", builder.Build())
}

func (h *Handler) handleRating(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	rating, err := strconv.Atoi(strings.TrimPrefix(callback.Data, RatingPrefix))
	if err != nil || rating < 1 || rating > 5 {
		h.answerAlert(ctx, b, callback.ID, "Не удалось определить оценку. Попробуйте ещё раз.")
		return
	}
	h.answer(ctx, b, callback.ID, "")

	h.stateManager.Update(callback.From.ID, func(s *state.Session) {
		s.Review = state.ReviewDraft{Rating: rating}
		s.State = state.StateReviewText
	})

	text := fmt.Sprintf("Ваша оценка: %s\n\nТеперь напишите текст отзыва:", strings.Repeat("⭐", rating))
	h.edit(ctx, b, callback, text, nil)
}

func (h *Handler) handleViewReviews(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.answer(ctx, b, callback.ID, "")

	reviews := h.reviews.All(ctx)

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("✍️ Оставить отзыв", WriteReview)).
		Row(keyboard.Button("🔙 Назад", BackToMenu)).
		Build()

	if len(reviews) == 0 {
		h.edit(ctx, b, callback, "Отзывов пока нет. Будьте первым!", kb)
		return
	}

	// Показываем последние отзывы, свежие сверху
	start := len(reviews) - reviewListLimit
	if start < 0 {
		start = 0
	}
	text := "⭐ Отзывы о клинике:\n\n"
	for i := len(reviews) - 1; i >= start; i-- {
		r := reviews[i]
		rating, _ := strconv.Atoi(r.Rating)
		stars := r.Rating
		if rating >= 1 && rating <= 5 {
			stars = strings.Repeat("⭐", rating)
		}
		text += fmt.Sprintf("%s\n%s\n- %s, %s\n\n", stars, r.Text, r.Name, r.Date)
	}

	h.edit(ctx, b, callback, text, kb)
}
