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

type ReviewService struct {
	store  storage.Store
	logger *zap.Logger
}

func NewReviewService(store storage.Store, logger *zap.Logger) *ReviewService {
	return &ReviewService{store: store, logger: logger}
}

// Add сохраняет завершённый отзыв со статусом «Новый»
func (s *ReviewService) Add(ctx context.Context, userID int64, name string, rating int, text string) error {
	review := model.Review{
		Date:   time.Now().Format(model.CreatedAtLayout),
		Name:   name,
		Rating: strconv.Itoa(rating),
		Text:   text,
		UserID: strconv.FormatInt(userID, 10),
		Status: string(model.ReviewStatusNew),
	}

	if err := s.store.AddReview(ctx, review); err != nil {
		return fmt.Errorf("add review: %w", err)
	}

	s.logger.Info("Review saved",
		zap.Int64("user_id", userID),
		zap.Int("rating", rating))
	return nil
}

// All возвращает все отзывы; сбой чтения деградирует до пустого списка
func (s *ReviewService) All(ctx context.Context) []model.Review {
	reviews, err := s.store.Reviews(ctx)
	if err != nil {
		s.logger.Warn("Failed to read reviews, showing empty list", zap.Error(err))
		return nil
	}
	return reviews
}
