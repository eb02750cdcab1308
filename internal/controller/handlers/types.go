package handlers

import (
	"github.com/zdorovieplus/clinic_bot/internal/controller/state"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
	"github.com/zdorovieplus/clinic_bot/internal/service"
	"go.uber.org/zap"
)

// Exporter отдаёт источник данных для команды /export: либо путь к
// локальному файлу книги, либо ссылку на таблицу
type Exporter interface {
	ExportTarget() (filePath string, url string)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	appointments  *service.AppointmentService
	reviews       *service.ReviewService
	consultations *service.ConsultationService
	stateManager  *state.Manager
	viewCache     *views.Cache
	exporter      Exporter
	adminID       string
	logger        *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	appointments *service.AppointmentService,
	reviews *service.ReviewService,
	consultations *service.ConsultationService,
	stateManager *state.Manager,
	viewCache *views.Cache,
	exporter Exporter,
	adminID string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		appointments:  appointments,
		reviews:       reviews,
		consultations: consultations,
		stateManager:  stateManager,
		viewCache:     viewCache,
		exporter:      exporter,
		adminID:       adminID,
		logger:        logger,
	}
}
