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

type ConsultationService struct {
	store  storage.Store
	logger *zap.Logger
}

func NewConsultationService(store storage.Store, logger *zap.Logger) *ConsultationService {
	return &ConsultationService{store: store, logger: logger}
}

// Add записывает вопрос пациента в журнал консультаций.
// Ответ и статус заполняет врач прямо в таблице.
func (s *ConsultationService) Add(ctx context.Context, userID int64, question string) error {
	c := model.Consultation{
		Date:     time.Now().Format(model.CreatedAtLayout),
		Question: question,
		UserID:   strconv.FormatInt(userID, 10),
		Status:   "Новая",
		Answer:   "",
	}

	if err := s.store.AddConsultation(ctx, c); err != nil {
		return fmt.Errorf("add consultation: %w", err)
	}

	s.logger.Info("Consultation question saved", zap.Int64("user_id", userID))
	return nil
}
