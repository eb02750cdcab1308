package model

import "fmt"

// Consultation - одна строка листа «Онлайн консультации».
// Журнал только пополняется ботом; ответ и статус заполняет врач в таблице.
type Consultation struct {
	Date     string // 2006-01-02 15:04:05
	Question string
	UserID   string
	Status   string
	Answer   string
}

const ConsultationColumns = 5

func ParseConsultationRow(row []string) (Consultation, error) {
	if len(row) < ConsultationColumns {
		return Consultation{}, fmt.Errorf("consultation row has %d columns, want %d", len(row), ConsultationColumns)
	}
	return Consultation{
		Date:     row[0],
		Question: row[1],
		UserID:   row[2],
		Status:   row[3],
		Answer:   row[4],
	}, nil
}

func (c Consultation) Row() []string {
	return []string{c.Date, c.Question, c.UserID, c.Status, c.Answer}
}
