// Package excel реализует табличное хранилище поверх локальной книги xlsx.
//
// Книгу может параллельно держать открытой администратор, поэтому каждая
// операция открывает файл заново, а сохранение повторяется с бэкоффом,
// если файл временно занят.
package excel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/storage"
)

const (
	saveRetries   = 4
	saveRetryBase = 150 * time.Millisecond
)

type Store struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// New открывает (или создаёт) книгу и готовит листы с заголовками
func New(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}

	f, created, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if err := s.ensureSheets(f); err != nil {
		return nil, fmt.Errorf("prepare workbook sheets: %w", err)
	}

	if created {
		err = f.SaveAs(path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return nil, fmt.Errorf("save workbook %s: %w", path, err)
	}

	logger.Info("Excel storage ready", zap.String("file", path))
	return s, nil
}

// Path возвращает путь к файлу книги (для команды экспорта)
func (s *Store) Path() string {
	return s.path
}

func (s *Store) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, err
}

func (s *Store) ensureSheets(f *excelize.File) error {
	sheets := map[string][]string{
		storage.AppointmentsSheet:  storage.AppointmentsHeader,
		storage.ReviewsSheet:       storage.ReviewsHeader,
		storage.ConsultationsSheet: storage.ConsultationsHeader,
		storage.SubscribersSheet:   storage.SubscribersHeader,
	}

	existing := make(map[string]struct{})
	for _, name := range f.GetSheetList() {
		existing[name] = struct{}{}
	}

	for name, header := range sheets {
		if _, ok := existing[name]; !ok {
			if _, err := f.NewSheet(name); err != nil {
				return err
			}
		}
		if err := s.writeHeader(f, name, header); err != nil {
			return err
		}
	}

	// Дефолтный лист новой книги не нужен
	for _, name := range f.GetSheetList() {
		if _, ok := sheets[name]; !ok && name == "Sheet1" {
			_ = f.DeleteSheet(name)
		}
	}
	return nil
}

// writeHeader проставляет заголовок, если первая ячейка листа пуста
func (s *Store) writeHeader(f *excelize.File, sheet string, header []string) error {
	first, err := f.GetCellValue(sheet, "A1")
	if err == nil && first != "" {
		return nil
	}

	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return err
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"CCCCCC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, styleID)
}

// save сохраняет книгу, повторяя попытку, пока файл занят другим процессом
func (s *Store) save(ctx context.Context, f *excelize.File) error {
	backoff := retry.WithMaxRetries(saveRetries, retry.NewFibonacci(saveRetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := f.Save(); err != nil {
			s.logger.Warn("Workbook save failed, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
}

// rows читает лист без заголовка, выравнивая строки до ожидаемой ширины:
// GetRows отбрасывает пустые хвостовые ячейки
func (s *Store) rows(f *excelize.File, sheet string, width int) ([][]string, error) {
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(raw) <= 1 {
		return nil, nil
	}
	body := make([][]string, 0, len(raw)-1)
	for _, row := range raw[1:] {
		if isEmptyRow(row) {
			continue
		}
		for len(row) < width {
			row = append(row, "")
		}
		body = append(body, row)
	}
	return body, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// rewriteSheet полностью заменяет содержимое листа: так же поступает
// исходный вариант на pandas, чтобы после дедупликации не оставалось
// хвостов от старых строк
func (s *Store) rewriteSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	if err := f.DeleteSheet(sheet); err != nil {
		return fmt.Errorf("reset sheet %q: %w", sheet, err)
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("recreate sheet %q: %w", sheet, err)
	}
	if err := s.writeHeader(f, sheet, header); err != nil {
		return fmt.Errorf("restore header %q: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, sheet, err)
		}
	}
	return nil
}

// appendRow дописывает строку в конец листа
func (s *Store) appendRow(ctx context.Context, sheet string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	existing, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(existing)+1)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("append to %q: %w", sheet, err)
	}
	return s.save(ctx, f)
}

func (s *Store) AddAppointment(ctx context.Context, appt model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	appts, err := s.readAppointments(f)
	if err != nil {
		return err
	}
	appts = append(appts, appt)
	appts = storage.DedupAppointments(appts)

	rows := make([][]string, len(appts))
	for i, a := range appts {
		rows[i] = a.Row()
	}
	if err := s.rewriteSheet(f, storage.AppointmentsSheet, storage.AppointmentsHeader, rows); err != nil {
		return err
	}
	return s.save(ctx, f)
}

func (s *Store) readAppointments(f *excelize.File) ([]model.Appointment, error) {
	body, err := s.rows(f, storage.AppointmentsSheet, model.AppointmentColumns)
	if err != nil {
		return nil, err
	}
	appts := make([]model.Appointment, 0, len(body))
	for _, row := range body {
		a, err := model.ParseAppointmentRow(row)
		if err != nil {
			s.logger.Warn("Skipping malformed appointment row", zap.Error(err))
			continue
		}
		appts = append(appts, a)
	}
	return appts, nil
}

func (s *Store) Appointments(ctx context.Context) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return s.readAppointments(f)
}

func (s *Store) AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	all, err := s.Appointments(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]model.Appointment, 0, len(all))
	for _, a := range all {
		if strings.TrimSpace(a.UserID) == strings.TrimSpace(userID) {
			mine = append(mine, a)
		}
	}
	return storage.DedupAppointments(mine), nil
}

func (s *Store) BookedTimes(ctx context.Context, doctorName, date string) (map[string]struct{}, error) {
	all, err := s.Appointments(ctx)
	if err != nil {
		return nil, err
	}
	wantDate := storage.NormalizeDate(date)

	booked := make(map[string]struct{})
	for _, a := range storage.DedupAppointments(all) {
		if model.IsCancelledStatus(a.Status) {
			continue
		}
		if strings.TrimSpace(a.DoctorName) != strings.TrimSpace(doctorName) {
			continue
		}
		if storage.NormalizeDate(a.Date) != wantDate {
			continue
		}
		booked[strings.TrimSpace(a.Time)] = struct{}{}
	}
	return booked, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, key model.IdentityKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return false, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	appts, err := s.readAppointments(f)
	if err != nil {
		return false, err
	}

	kept := make([]model.Appointment, 0, len(appts))
	removed := false
	for _, a := range appts {
		n := storage.NormalizeAppointment(a)
		if n.IdentityKey() == normalizeKey(key) {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return false, nil
	}

	rows := make([][]string, len(kept))
	for i, a := range kept {
		rows[i] = a.Row()
	}
	if err := s.rewriteSheet(f, storage.AppointmentsSheet, storage.AppointmentsHeader, rows); err != nil {
		return false, err
	}
	if err := s.save(ctx, f); err != nil {
		return false, err
	}
	return true, nil
}

func normalizeKey(key model.IdentityKey) model.IdentityKey {
	key.Date = storage.NormalizeDate(key.Date)
	key.Time = strings.TrimSpace(key.Time)
	key.Doctor = strings.TrimSpace(key.Doctor)
	key.UserID = strings.TrimSpace(key.UserID)
	key.CreatedAt = storage.NormalizeCreatedAt(key.CreatedAt)
	return key
}

// UpdateAppointmentStatus меняет статус в строке листа.
// rowIndex - однобазовый номер строки вместе с заголовком, как в таблице.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, rowIndex int, status string) error {
	return s.setCell(ctx, storage.AppointmentsSheet, 7, rowIndex, status)
}

func (s *Store) UpdateReviewStatus(ctx context.Context, rowIndex int, status string) error {
	return s.setCell(ctx, storage.ReviewsSheet, 6, rowIndex, status)
}

func (s *Store) setCell(ctx context.Context, sheet string, col, row int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return s.save(ctx, f)
}

func (s *Store) AddReview(ctx context.Context, review model.Review) error {
	return s.appendRow(ctx, storage.ReviewsSheet, review.Row())
}

func (s *Store) Reviews(ctx context.Context) ([]model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	body, err := s.rows(f, storage.ReviewsSheet, model.ReviewColumns)
	if err != nil {
		return nil, err
	}
	reviews := make([]model.Review, 0, len(body))
	for _, row := range body {
		r, err := model.ParseReviewRow(row)
		if err != nil {
			s.logger.Warn("Skipping malformed review row", zap.Error(err))
			continue
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

func (s *Store) AddConsultation(ctx context.Context, c model.Consultation) error {
	return s.appendRow(ctx, storage.ConsultationsSheet, c.Row())
}

func (s *Store) Consultations(ctx context.Context) ([]model.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	body, err := s.rows(f, storage.ConsultationsSheet, model.ConsultationColumns)
	if err != nil {
		return nil, err
	}
	consults := make([]model.Consultation, 0, len(body))
	for _, row := range body {
		c, err := model.ParseConsultationRow(row)
		if err != nil {
			s.logger.Warn("Skipping malformed consultation row", zap.Error(err))
			continue
		}
		consults = append(consults, c)
	}
	return consults, nil
}

// AddSubscriber идемпотентна: повторная подписка того же пользователя - no-op
func (s *Store) AddSubscriber(ctx context.Context, sub model.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	body, err := s.rows(f, storage.SubscribersSheet, model.SubscriberColumns)
	if err != nil {
		return err
	}
	for _, row := range body {
		if strings.TrimSpace(row[0]) == strings.TrimSpace(sub.UserID) {
			return nil
		}
	}

	// Позиция вставки считается по сырому листу: body пропускает пустые
	// строки, и оставленный администратором пробел сдвинул бы запись
	// на занятую строку
	existing, err := f.GetRows(storage.SubscribersSheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", storage.SubscribersSheet, err)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(existing)+1)
	if err != nil {
		return err
	}
	row := sub.Row()
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	if err := f.SetSheetRow(storage.SubscribersSheet, cell, &cells); err != nil {
		return fmt.Errorf("append subscriber: %w", err)
	}
	return s.save(ctx, f)
}

func (s *Store) Subscribers(ctx context.Context) ([]model.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	body, err := s.rows(f, storage.SubscribersSheet, model.SubscriberColumns)
	if err != nil {
		return nil, err
	}
	subs := make([]model.Subscriber, 0, len(body))
	for _, row := range body {
		sub, err := model.ParseSubscriberRow(row)
		if err != nil {
			s.logger.Warn("Skipping malformed subscriber row", zap.Error(err))
			continue
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Backup сохраняет копию книги рядом с оригиналом и возвращает её путь
func (s *Store) Backup(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.open()
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := fmt.Sprintf("backup_clinic_data_%s_%s.xlsx",
		time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	if err := f.SaveAs(name); err != nil {
		return "", fmt.Errorf("save backup %s: %w", name, err)
	}
	s.logger.Info("Workbook backup created", zap.String("file", name))
	return name, nil
}
