package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/config"
	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/storage"
)

// Причины отказа в отмене записи. Пользователь всегда получает конкретное
// объяснение, а не молчаливый no-op.
var (
	ErrTooLate          = errors.New("до приёма меньше 24 часов")
	ErrAlreadyCancelled = errors.New("запись уже отменена")
	ErrBadDate          = errors.New("не удалось разобрать дату записи")
	ErrNotFound         = errors.New("запись не найдена в таблице")
)

// Сколько дней вперёд предлагается для записи
const bookingHorizonDays = 14

type AppointmentService struct {
	store  storage.Store
	logger *zap.Logger
}

func NewAppointmentService(store storage.Store, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{store: store, logger: logger}
}

// Book сохраняет завершённую запись со статусом «Новая»
func (s *AppointmentService) Book(ctx context.Context, userID int64, patientName, phone, doctorName, specialization, date, timeSlot string) (model.Appointment, error) {
	appt := model.Appointment{
		Date:           date,
		Time:           timeSlot,
		PatientName:    patientName,
		Phone:          phone,
		DoctorName:     doctorName,
		Specialization: specialization,
		Status:         string(model.AppointmentStatusNew),
		UserID:         strconv.FormatInt(userID, 10),
		CreatedAt:      time.Now().Format(model.CreatedAtLayout),
	}

	if err := s.store.AddAppointment(ctx, appt); err != nil {
		return model.Appointment{}, fmt.Errorf("add appointment: %w", err)
	}

	s.logger.Info("Appointment booked",
		zap.Int64("user_id", userID),
		zap.String("doctor", doctorName),
		zap.String("date", date),
		zap.String("time", timeSlot))
	return appt, nil
}

// ForUser возвращает записи пользователя, свежие первыми.
// Сбой чтения деградирует до пустого списка: таблица может быть временно
// занята, это не повод ронять обработчик.
func (s *AppointmentService) ForUser(ctx context.Context, userID int64) []model.Appointment {
	appts, err := s.store.AppointmentsByUser(ctx, strconv.FormatInt(userID, 10))
	if err != nil {
		s.logger.Warn("Failed to read user appointments, showing empty list",
			zap.Int64("user_id", userID), zap.Error(err))
		return nil
	}

	sort.SliceStable(appts, func(i, j int) bool {
		return storage.NormalizeCreatedAt(appts[i].CreatedAt) > storage.NormalizeCreatedAt(appts[j].CreatedAt)
	})
	return appts
}

// AvailableDates возвращает даты для записи: ближайшие 14 дней без выходных.
// Чистая функция от текущего момента, ничего не хранит.
func (s *AppointmentService) AvailableDates(now time.Time) []string {
	dates := make([]string, 0, bookingHorizonDays)
	for i := 1; i <= bookingHorizonDays; i++ {
		day := now.AddDate(0, 0, i)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, day.Format(model.DateLayout))
	}
	return dates
}

// AvailableTimes вычитает занятые слоты врача из общей сетки времени.
// Сбой чтения деградирует до пустого множества занятых - лучше предложить
// весь каталог, чем ничего.
func (s *AppointmentService) AvailableTimes(ctx context.Context, doctorName, date string) []string {
	booked, err := s.store.BookedTimes(ctx, doctorName, date)
	if err != nil {
		s.logger.Warn("Failed to read booked times, offering full grid",
			zap.String("doctor", doctorName), zap.String("date", date), zap.Error(err))
		booked = nil
	}

	free := make([]string, 0, len(config.AvailableTimes))
	for _, t := range config.AvailableTimes {
		if _, taken := booked[t]; taken {
			continue
		}
		free = append(free, t)
	}
	return free
}

// Cancel удаляет запись из таблицы, предварительно проверив право на отмену
func (s *AppointmentService) Cancel(ctx context.Context, appt model.Appointment) error {
	if model.IsCancelledStatus(appt.Status) {
		return ErrAlreadyCancelled
	}
	startsAt, err := appt.StartsAt()
	if err != nil {
		return ErrBadDate
	}
	if startsAt.Sub(time.Now()) <= model.CancelWindow {
		return ErrTooLate
	}

	removed, err := s.store.DeleteAppointment(ctx, appt.IdentityKey())
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if !removed {
		return ErrNotFound
	}

	s.logger.Info("Appointment cancelled",
		zap.String("user_id", appt.UserID),
		zap.String("doctor", appt.DoctorName),
		zap.String("date", appt.Date),
		zap.String("time", appt.Time))
	return nil
}
