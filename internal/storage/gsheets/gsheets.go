// Package gsheets реализует табличное хранилище поверх таблицы Google Sheets.
//
// Семантика повторяет локальный Excel-бэкенд: дедупликация при добавлении,
// удаление по полному ключу через перезапись листа, идемпотентная подписка.
// Сетевые сбои считаются преходящими, вызовы повторяются с бэкоффом.
package gsheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/storage"
)

const (
	callRetries   = 3
	callRetryBase = 200 * time.Millisecond
)

// Credentials описывает способ авторизации сервисного аккаунта:
// либо JSON ключа одной строкой, либо путь к файлу с ним
type Credentials struct {
	JSON string
	File string
}

type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// New авторизуется в API и готовит листы с заголовками
func New(ctx context.Context, spreadsheetID string, creds Credentials, logger *zap.Logger) (*Store, error) {
	var opts []option.ClientOption
	switch {
	case creds.JSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(creds.JSON)))
	case creds.File != "":
		opts = append(opts, option.WithCredentialsFile(creds.File))
	default:
		return nil, fmt.Errorf("google credentials are not configured: set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_APPLICATION_CREDENTIALS")
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	s := &Store{svc: svc, spreadsheetID: spreadsheetID, logger: logger}
	if err := s.ensureSheets(ctx); err != nil {
		return nil, fmt.Errorf("prepare spreadsheet: %w", err)
	}

	logger.Info("Google Sheets storage ready", zap.String("spreadsheet_id", spreadsheetID))
	return s, nil
}

// URL возвращает ссылку на таблицу (для команды экспорта)
func (s *Store) URL() string {
	return "https://docs.google.com/spreadsheets/d/" + s.spreadsheetID
}

func (s *Store) ensureSheets(ctx context.Context) error {
	spreadsheet, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}

	existing := make(map[string]struct{})
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = struct{}{}
		}
	}

	headers := map[string][]string{
		storage.AppointmentsSheet:  storage.AppointmentsHeader,
		storage.ReviewsSheet:       storage.ReviewsHeader,
		storage.ConsultationsSheet: storage.ConsultationsHeader,
		storage.SubscribersSheet:   storage.SubscribersHeader,
	}

	var requests []*sheets.Request
	for name := range headers {
		if _, ok := existing[name]; !ok {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			})
		}
	}
	if len(requests) > 0 {
		_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("add worksheets: %w", err)
		}
	}

	for name, header := range headers {
		if err := s.ensureHeader(ctx, name, header); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ensureHeader(ctx context.Context, sheet string, header []string) error {
	vr, err := s.valuesGet(ctx, fmt.Sprintf("'%s'!1:1", sheet))
	if err != nil {
		return err
	}
	if len(vr.Values) > 0 && headerMatches(storage.RowStrings(vr.Values[0]), header) {
		return nil
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	return s.valuesUpdate(ctx, fmt.Sprintf("'%s'!A1", sheet), [][]interface{}{row})
}

func headerMatches(got, want []string) bool {
	if len(got) < len(want) {
		return false
	}
	for i, h := range want {
		if got[i] != h {
			return false
		}
	}
	return true
}

// doRetry повторяет вызов API при преходящих сетевых сбоях
func (s *Store) doRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(callRetries, retry.NewFibonacci(callRetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			s.logger.Warn("Sheets call failed, retrying",
				zap.String("op", op), zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (s *Store) valuesGet(ctx context.Context, rng string) (*sheets.ValueRange, error) {
	var vr *sheets.ValueRange
	err := s.doRetry(ctx, "values.get", func(ctx context.Context) error {
		var err error
		vr, err = s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return vr, nil
}

func (s *Store) valuesUpdate(ctx context.Context, rng string, values [][]interface{}) error {
	err := s.doRetry(ctx, "values.update", func(ctx context.Context) error {
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
			Values: values,
		}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (s *Store) valuesAppend(ctx context.Context, sheet string, row []string) error {
	values := [][]interface{}{rowValues(row)}
	err := s.doRetry(ctx, "values.append", func(ctx context.Context) error {
		_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, fmt.Sprintf("'%s'!A1", sheet), &sheets.ValueRange{
			Values: values,
		}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

func (s *Store) valuesClear(ctx context.Context, rng string) error {
	err := s.doRetry(ctx, "values.clear", func(ctx context.Context) error {
		_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

func rowValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

// body читает лист без заголовка, выравнивая строки до ожидаемой ширины:
// API отбрасывает пустые хвостовые ячейки
func (s *Store) body(ctx context.Context, sheet string, width int) ([][]string, error) {
	vr, err := s.valuesGet(ctx, fmt.Sprintf("'%s'!A2:Z", sheet))
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(vr.Values))
	for _, raw := range vr.Values {
		row := storage.RowStrings(raw)
		if isEmptyRow(row) {
			continue
		}
		for len(row) < width {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// rewriteBody заменяет все строки листа под заголовком
func (s *Store) rewriteBody(ctx context.Context, sheet string, rows [][]string) error {
	if err := s.valuesClear(ctx, fmt.Sprintf("'%s'!A2:Z", sheet)); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = rowValues(row)
	}
	return s.valuesUpdate(ctx, fmt.Sprintf("'%s'!A2", sheet), values)
}

func (s *Store) readAppointments(ctx context.Context) ([]model.Appointment, error) {
	body, err := s.body(ctx, storage.AppointmentsSheet, model.AppointmentColumns)
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

func (s *Store) AddAppointment(ctx context.Context, appt model.Appointment) error {
	appts, err := s.readAppointments(ctx)
	if err != nil {
		return err
	}
	appts = append(appts, appt)
	appts = storage.DedupAppointments(appts)

	rows := make([][]string, len(appts))
	for i, a := range appts {
		rows[i] = a.Row()
	}
	return s.rewriteBody(ctx, storage.AppointmentsSheet, rows)
}

func (s *Store) Appointments(ctx context.Context) ([]model.Appointment, error) {
	return s.readAppointments(ctx)
}

func (s *Store) AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	all, err := s.readAppointments(ctx)
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
	all, err := s.readAppointments(ctx)
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
	appts, err := s.readAppointments(ctx)
	if err != nil {
		return false, err
	}

	want := normalizeKey(key)
	kept := make([]model.Appointment, 0, len(appts))
	removed := false
	for _, a := range appts {
		if storage.NormalizeAppointment(a).IdentityKey() == want {
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
	if err := s.rewriteBody(ctx, storage.AppointmentsSheet, rows); err != nil {
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
	return s.valuesUpdate(ctx,
		fmt.Sprintf("'%s'!G%d", storage.AppointmentsSheet, rowIndex),
		[][]interface{}{{status}})
}

func (s *Store) UpdateReviewStatus(ctx context.Context, rowIndex int, status string) error {
	return s.valuesUpdate(ctx,
		fmt.Sprintf("'%s'!F%d", storage.ReviewsSheet, rowIndex),
		[][]interface{}{{status}})
}

func (s *Store) AddReview(ctx context.Context, review model.Review) error {
	return s.valuesAppend(ctx, storage.ReviewsSheet, review.Row())
}

func (s *Store) Reviews(ctx context.Context) ([]model.Review, error) {
	body, err := s.body(ctx, storage.ReviewsSheet, model.ReviewColumns)
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
	return s.valuesAppend(ctx, storage.ConsultationsSheet, c.Row())
}

func (s *Store) Consultations(ctx context.Context) ([]model.Consultation, error) {
	body, err := s.body(ctx, storage.ConsultationsSheet, model.ConsultationColumns)
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
	body, err := s.body(ctx, storage.SubscribersSheet, model.SubscriberColumns)
	if err != nil {
		return err
	}
	for _, row := range body {
		if row[0] == strings.TrimSpace(sub.UserID) {
			return nil
		}
	}
	return s.valuesAppend(ctx, storage.SubscribersSheet, sub.Row())
}

func (s *Store) Subscribers(ctx context.Context) ([]model.Subscriber, error) {
	body, err := s.body(ctx, storage.SubscribersSheet, model.SubscriberColumns)
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
