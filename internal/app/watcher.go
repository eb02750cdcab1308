package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/service"
)

// Notifier - минимальный контракт транспорта для уведомлений
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// ListingRefresher обновляет экран «Мои записи» пользователя, если тот
// открыт. Отсутствие экрана - не ошибка, просто нечего обновлять.
type ListingRefresher interface {
	Refresh(ctx context.Context, userID int64)
}

const reviewPreviewLimit = 120

// Watcher - фоновая сверка таблицы. Периодически строит множества активных
// ключей записей и отзывов, сравнивает с прошлым снимком и уведомляет
// пользователей о записях, пропавших из таблицы (отменили или удалили
// администраторы), и об отзывах, убранных модерацией.
type Watcher struct {
	sync      *service.SyncService
	notifier  Notifier
	refresher ListingRefresher
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}

	knownAppts   map[model.IdentityKey]struct{}
	knownReviews map[model.ReviewKey]struct{}
}

func NewWatcher(
	syncService *service.SyncService,
	notifier Notifier,
	refresher ListingRefresher,
	interval time.Duration,
	logger *zap.Logger,
) *Watcher {
	return &Watcher{
		sync:      syncService,
		notifier:  notifier,
		refresher: refresher,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start запускает цикл сверки в фоне
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("Starting spreadsheet watcher",
		zap.Duration("interval", w.interval))
	go w.run(ctx)
}

// Stop останавливает цикл
func (w *Watcher) Stop() {
	w.logger.Info("Stopping spreadsheet watcher")
	close(w.stopChan)
}

func (w *Watcher) run(ctx context.Context) {
	// Первый снимок - базовая линия, уведомления по нему не шлём,
	// иначе каждый рестарт превращался бы в шторм сообщений
	w.baseline(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Tick(ctx)
		case <-w.stopChan:
			w.logger.Info("Spreadsheet watcher stopped")
			return
		case <-ctx.Done():
			w.logger.Info("Spreadsheet watcher cancelled")
			return
		}
	}
}

func (w *Watcher) baseline(ctx context.Context) {
	appts, err := w.sync.ActiveAppointmentKeys(ctx)
	if err != nil {
		w.logger.Warn("Baseline appointments snapshot failed", zap.Error(err))
		appts = map[model.IdentityKey]struct{}{}
	}
	reviews, err := w.sync.ActiveReviewKeys(ctx)
	if err != nil {
		w.logger.Warn("Baseline reviews snapshot failed", zap.Error(err))
		reviews = map[model.ReviewKey]struct{}{}
	}
	w.knownAppts = appts
	w.knownReviews = reviews
}

// Tick выполняет один шаг сверки. Любой сбой внутри шага не должен
// остановить цикл: лог и повтор на следующем интервале.
func (w *Watcher) Tick(ctx context.Context) {
	curAppts, err := w.sync.ActiveAppointmentKeys(ctx)
	if err != nil {
		w.logger.Warn("Appointments snapshot failed, will retry", zap.Error(err))
		return
	}
	curReviews, err := w.sync.ActiveReviewKeys(ctx)
	if err != nil {
		w.logger.Warn("Reviews snapshot failed, will retry", zap.Error(err))
		return
	}

	// До базовой линии тик не диффуем
	if w.knownAppts == nil && w.knownReviews == nil {
		w.knownAppts = curAppts
		w.knownReviews = curReviews
		return
	}

	for _, key := range service.RemovedAppointments(w.knownAppts, curAppts) {
		w.notifyAppointmentRemoved(ctx, key)
	}
	for _, key := range service.RemovedReviews(w.knownReviews, curReviews) {
		w.notifyReviewRemoved(ctx, key)
	}

	// Базовая линия заменяется независимо от успеха уведомлений,
	// чтобы неудачная отправка не повторялась на каждом тике
	w.knownAppts = curAppts
	w.knownReviews = curReviews
}

func (w *Watcher) notifyAppointmentRemoved(ctx context.Context, key model.IdentityKey) {
	chatID, err := strconv.ParseInt(key.UserID, 10, 64)
	if err != nil {
		w.logger.Warn("Removed appointment has non-numeric user id",
			zap.String("user_id", key.UserID))
		return
	}

	text := fmt.Sprintf(
		"Вашу запись на %s %s к %s отменили администраторы или она была удалена.\n"+
			"При необходимости запишитесь заново.",
		key.Date, key.Time, key.Doctor,
	)
	if err := w.notifier.SendMessage(ctx, chatID, text); err != nil {
		w.logger.Warn("Failed to notify about removed appointment",
			zap.Int64("user_id", chatID), zap.Error(err))
		return
	}

	if w.refresher != nil {
		w.refresher.Refresh(ctx, chatID)
	}
}

func (w *Watcher) notifyReviewRemoved(ctx context.Context, key model.ReviewKey) {
	chatID, err := strconv.ParseInt(key.UserID, 10, 64)
	if err != nil {
		w.logger.Warn("Removed review has non-numeric user id",
			zap.String("user_id", key.UserID))
		return
	}

	preview := key.Text
	if len([]rune(preview)) > reviewPreviewLimit {
		preview = string([]rune(preview)[:reviewPreviewLimit]) + "…"
	}

	text := fmt.Sprintf(
		"Ваш отзыв от %s (оценка %s) был удалён/скрыт администратором.\nТекст: %s",
		key.Date, key.Rating, preview,
	)
	if err := w.notifier.SendMessage(ctx, chatID, text); err != nil {
		w.logger.Warn("Failed to notify about removed review",
			zap.Int64("user_id", chatID), zap.Error(err))
	}
}
