// Package views отвечает за экран «Мои записи»: построение текста и
// клавиатуры, кеш показанного снимка и автообновление сообщения,
// когда фоновая сверка замечает изменения в таблице.
package views

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/controller/keyboard"
	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/service"
)

const BackToMenu = "back_to_menu"

// ErrIndexOutOfRange - номер записи не соответствует показанному списку
var ErrIndexOutOfRange = errors.New("номер записи вне показанного списка")

// Entry - запомненный экран пользователя: какой снимок списка показан
// и в каком сообщении. Кнопки отмены ссылаются на порядковые номера
// именно этого снимка, поэтому отмена резолвится по нему, а не по
// свежему чтению таблицы, которое могло бы перемешать номера.
type Entry struct {
	ChatID    int64
	MessageID int
	Snapshot  []model.Appointment
}

// Cache хранит по одному экрану «Мои записи» на пользователя
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[int64]Entry)}
}

// Remember запоминает показанный экран пользователя
func (c *Cache) Remember(userID int64, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry
}

// Get возвращает запомненный экран, если он есть
func (c *Cache) Get(userID int64) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[userID]
	return entry, ok
}

// AppointmentAt резолвит однобазовый номер из кнопки отмены против
// запомненного снимка. Номер вне диапазона - ошибка, а не тихий no-op.
func (c *Cache) AppointmentAt(userID int64, index int) (model.Appointment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[userID]
	if !ok {
		return model.Appointment{}, ErrIndexOutOfRange
	}
	if index < 1 || index > len(entry.Snapshot) {
		return model.Appointment{}, ErrIndexOutOfRange
	}
	return entry.Snapshot[index-1], nil
}

// BuildListing строит текст и клавиатуру экрана «Мои записи» по снимку.
// Кнопка отмены появляется только у записей, которые ещё можно отменить.
func BuildListing(appts []model.Appointment, now time.Time) (string, *models.InlineKeyboardMarkup) {
	if len(appts) == 0 {
		kb := keyboard.NewBuilder().
			Row(keyboard.Button("🔙 Назад", BackToMenu)).
			Build()
		return "У вас пока нет записей.", kb
	}

	text := "🗂 Ваши записи:\n\n"
	builder := keyboard.NewBuilder()
	anyCancellable := false

	for i, a := range appts {
		text += fmt.Sprintf("%d. 📅 %s %s\n", i+1, a.Date, a.Time)
		text += fmt.Sprintf("   👨‍⚕️ %s (%s)\n", a.DoctorName, a.Specialization)
		text += fmt.Sprintf("   👤 %s\n", a.PatientName)
		text += fmt.Sprintf("   📞 %s\n", a.Phone)
		text += fmt.Sprintf("   🔖 Статус: %s\n", a.Status)
		text += fmt.Sprintf("   🕒 Создано: %s\n\n", a.CreatedAt)

		if a.CanCancel(now) {
			anyCancellable = true
			builder.Row(keyboard.Button(
				fmt.Sprintf("❌ Отменить #%d", i+1),
				fmt.Sprintf("cancel_appt_%d", i+1),
			))
		}
	}

	if !anyCancellable {
		text += "\nОтменить запись можно только более чем за 24 часа до приёма."
	}

	builder.Row(keyboard.Button("🔙 Назад", BackToMenu))
	return text, builder.Build()
}

// Refresher перестраивает запомненный экран пользователя по свежим данным
// и редактирует сообщение на месте. Используется фоновой сверкой.
type Refresher struct {
	bot    *bot.Bot
	appts  *service.AppointmentService
	cache  *Cache
	logger *zap.Logger
}

func NewRefresher(b *bot.Bot, appts *service.AppointmentService, cache *Cache, logger *zap.Logger) *Refresher {
	return &Refresher{bot: b, appts: appts, cache: cache, logger: logger}
}

// Refresh обновляет экран «Мои записи», если пользователь его открывал.
// Отсутствие запомненного экрана - не ошибка.
func (r *Refresher) Refresh(ctx context.Context, userID int64) {
	entry, ok := r.cache.Get(userID)
	if !ok {
		return
	}

	appts := r.appts.ForUser(ctx, userID)
	text, kb := BuildListing(appts, time.Now())

	r.cache.Remember(userID, Entry{
		ChatID:    entry.ChatID,
		MessageID: entry.MessageID,
		Snapshot:  appts,
	})

	_, err := r.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      entry.ChatID,
		MessageID:   entry.MessageID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		r.logger.Debug("Failed to refresh appointments view",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}
