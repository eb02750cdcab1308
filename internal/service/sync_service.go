package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/storage"
)

// SyncService строит множества активных ключей для фоновой сверки.
// Сверка работает по множествам ключей, а не по номерам строк: у таблицы
// нет стабильных id, и правка посторонней колонки администратором не должна
// выглядеть как удаление записи.
type SyncService struct {
	store  storage.Store
	logger *zap.Logger
}

func NewSyncService(store storage.Store, logger *zap.Logger) *SyncService {
	return &SyncService{store: store, logger: logger}
}

// ActiveAppointmentKeys возвращает ключи всех неотменённых записей
func (s *SyncService) ActiveAppointmentKeys(ctx context.Context) (map[model.IdentityKey]struct{}, error) {
	appts, err := s.store.Appointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("read appointments: %w", err)
	}

	keys := make(map[model.IdentityKey]struct{}, len(appts))
	for _, a := range appts {
		if model.IsCancelledStatus(a.Status) {
			continue
		}
		keys[storage.NormalizeAppointment(a).IdentityKey()] = struct{}{}
	}
	return keys, nil
}

// ActiveReviewKeys возвращает ключи всех отзывов, не убранных модерацией
func (s *SyncService) ActiveReviewKeys(ctx context.Context) (map[model.ReviewKey]struct{}, error) {
	reviews, err := s.store.Reviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("read reviews: %w", err)
	}

	keys := make(map[model.ReviewKey]struct{}, len(reviews))
	for _, r := range reviews {
		if model.IsHiddenReviewStatus(r.Status) {
			continue
		}
		key := r.Key()
		key.Date = storage.NormalizeCreatedAt(key.Date)
		keys[key] = struct{}{}
	}
	return keys, nil
}

// RemovedAppointments возвращает ключи, пропавшие из активного множества
func RemovedAppointments(prev, cur map[model.IdentityKey]struct{}) []model.IdentityKey {
	var removed []model.IdentityKey
	for key := range prev {
		if _, ok := cur[key]; !ok {
			removed = append(removed, key)
		}
	}
	return removed
}

// RemovedReviews возвращает ключи отзывов, пропавшие из активного множества
func RemovedReviews(prev, cur map[model.ReviewKey]struct{}) []model.ReviewKey {
	var removed []model.ReviewKey
	for key := range prev {
		if _, ok := cur[key]; !ok {
			removed = append(removed, key)
		}
	}
	return removed
}
