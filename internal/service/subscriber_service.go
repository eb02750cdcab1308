package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/storage"
)

type SubscriberService struct {
	store  storage.Store
	logger *zap.Logger
}

func NewSubscriberService(store storage.Store, logger *zap.Logger) *SubscriberService {
	return &SubscriberService{store: store, logger: logger}
}

// Subscribe подписывает пользователя на рассылку.
// Повторная подписка не создаёт дубликата - это гарантирует хранилище.
func (s *SubscriberService) Subscribe(ctx context.Context, userID int64, name string) error {
	sub := model.Subscriber{
		UserID:       strconv.FormatInt(userID, 10),
		Name:         name,
		SubscribedAt: time.Now().Format(model.CreatedAtLayout),
	}

	if err := s.store.AddSubscriber(ctx, sub); err != nil {
		return fmt.Errorf("add subscriber: %w", err)
	}

	s.logger.Info("News subscription saved", zap.Int64("user_id", userID))
	return nil
}
