package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zdorovieplus/clinic_bot/internal/model"
)

// Кодек ячеек: приводит разнородные представления значений (даты и числа,
// введённые руками или проставленные самим редактором таблиц) к каноничным
// строкам, по которым считаются ключи и сравниваются записи.

// CellString переводит произвольное значение ячейки в строку.
// Числа без дробной части теряют хвост ".0", который любят добавлять
// табличные редакторы.
func CellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// dateLayouts - представления даты приёма, встречающиеся в таблице,
// когда колонку переформатирует внешний редактор
var dateLayouts = []string{
	model.DateLayout, // каноничное 02.01.2006
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04:05",
	"01-02-06", // дефолтный формат дат Excel
	"1/2/2006",
}

// NormalizeDate приводит дату приёма к виду 02.01.2006.
// Неразобранное значение возвращается как есть: сравнение по сырой строке
// всё ещё лучше, чем потеря записи.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.DateLayout)
		}
	}
	return s
}

var createdAtLayouts = []string{
	model.CreatedAtLayout, // каноничное 2006-01-02 15:04:05
	time.RFC3339,
	"02.01.2006 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeCreatedAt приводит дату создания к виду 2006-01-02 15:04:05
func NormalizeCreatedAt(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.CreatedAtLayout)
		}
	}
	return s
}

// NormalizeAppointment прогоняет поля записи через кодек, чтобы ключи
// считались по каноничным строкам независимо от представления в ячейках
func NormalizeAppointment(a model.Appointment) model.Appointment {
	a.Date = NormalizeDate(a.Date)
	a.Time = strings.TrimSpace(a.Time)
	a.DoctorName = strings.TrimSpace(a.DoctorName)
	a.UserID = strings.TrimSpace(a.UserID)
	a.CreatedAt = NormalizeCreatedAt(a.CreatedAt)
	return a
}

// RowStrings переводит сырую строку листа в нормализованные строки
func RowStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = CellString(v)
	}
	return out
}
