package model

import (
	"fmt"
	"strings"
	"time"
)

// Форматы дат, используемые во всех листах таблицы.
const (
	DateLayout      = "02.01.2006"
	TimeLayout      = "15:04"
	CreatedAtLayout = "2006-01-02 15:04:05"
)

// CancelWindow - минимальный срок до приёма, при котором отмена ещё доступна
const CancelWindow = 24 * time.Hour

type AppointmentStatus string

const (
	AppointmentStatusNew       AppointmentStatus = "Новая"
	AppointmentStatusUpdated   AppointmentStatus = "Обновлена"
	AppointmentStatusCancelled AppointmentStatus = "Отменена"
	AppointmentStatusOther     AppointmentStatus = "Другое"
)

// cancelledSynonyms - варианты написания отменённого статуса в таблице
// (администраторы правят её руками, сравниваем без учёта регистра)
var cancelledSynonyms = map[string]struct{}{
	"отменена":  {},
	"отменён":   {},
	"cancelled": {},
	"canceled":  {},
	"cancel":    {},
}

// IsCancelledStatus сообщает, относится ли строка статуса к отменённым
func IsCancelledStatus(raw string) bool {
	_, ok := cancelledSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Appointment - одна строка листа «Записи на прием».
// Порядок колонок фиксирован и является частью контракта хранилища.
type Appointment struct {
	Date           string // 02.01.2006
	Time           string // 15:04
	PatientName    string
	Phone          string
	DoctorName     string
	Specialization string
	Status         string // исходное написание из таблицы
	UserID         string
	CreatedAt      string // 2006-01-02 15:04:05
}

// SlotKey идентифицирует «одну и ту же попытку записи» для дедупликации
type SlotKey struct {
	UserID string
	Date   string
	Time   string
	Doctor string
}

// IdentityKey идентифицирует конкретную физическую строку для удаления:
// CreatedAt отличает вытесненные дубликаты друг от друга
type IdentityKey struct {
	UserID    string
	Date      string
	Time      string
	Doctor    string
	CreatedAt string
}

const AppointmentColumns = 9

// ParseAppointmentRow собирает запись из сырой строки листа.
// Строки с недостающими колонками отбраковываются, а не дополняются пустыми.
func ParseAppointmentRow(row []string) (Appointment, error) {
	if len(row) < AppointmentColumns {
		return Appointment{}, fmt.Errorf("appointment row has %d columns, want %d", len(row), AppointmentColumns)
	}
	return Appointment{
		Date:           row[0],
		Time:           row[1],
		PatientName:    row[2],
		Phone:          row[3],
		DoctorName:     row[4],
		Specialization: row[5],
		Status:         row[6],
		UserID:         row[7],
		CreatedAt:      row[8],
	}, nil
}

// Row возвращает запись в порядке колонок листа
func (a Appointment) Row() []string {
	return []string{
		a.Date, a.Time, a.PatientName, a.Phone,
		a.DoctorName, a.Specialization, a.Status, a.UserID, a.CreatedAt,
	}
}

func (a Appointment) SlotKey() SlotKey {
	return SlotKey{UserID: a.UserID, Date: a.Date, Time: a.Time, Doctor: a.DoctorName}
}

func (a Appointment) IdentityKey() IdentityKey {
	return IdentityKey{UserID: a.UserID, Date: a.Date, Time: a.Time, Doctor: a.DoctorName, CreatedAt: a.CreatedAt}
}

// StatusKind сводит произвольное написание статуса к перечислению
func (a Appointment) StatusKind() AppointmentStatus {
	switch {
	case IsCancelledStatus(a.Status):
		return AppointmentStatusCancelled
	case strings.EqualFold(strings.TrimSpace(a.Status), string(AppointmentStatusNew)):
		return AppointmentStatusNew
	case strings.EqualFold(strings.TrimSpace(a.Status), string(AppointmentStatusUpdated)):
		return AppointmentStatusUpdated
	default:
		return AppointmentStatusOther
	}
}

// StartsAt вычисляет момент приёма из даты и времени записи
func (a Appointment) StartsAt() (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.Time, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse appointment instant %q %q: %w", a.Date, a.Time, err)
	}
	return t, nil
}

// CanCancel проверяет право на отмену: до приёма больше 24 часов и запись
// ещё не отменена. Нечитаемая дата считается неотменяемой.
func (a Appointment) CanCancel(now time.Time) bool {
	if IsCancelledStatus(a.Status) {
		return false
	}
	startsAt, err := a.StartsAt()
	if err != nil {
		return false
	}
	return startsAt.Sub(now) > CancelWindow
}
