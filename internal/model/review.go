package model

import (
	"fmt"
	"strings"
)

type ReviewStatus string

const (
	ReviewStatusNew      ReviewStatus = "Новый"
	ReviewStatusRejected ReviewStatus = "Отклонен"
	ReviewStatusHidden   ReviewStatus = "Скрыт"
	ReviewStatusDeleted  ReviewStatus = "Удален"
	ReviewStatusOther    ReviewStatus = "Другое"
)

// hiddenReviewSynonyms - статусы, при которых отзыв считается убранным модерацией
var hiddenReviewSynonyms = map[string]struct{}{
	"удален":   {},
	"удалён":   {},
	"скрыт":    {},
	"отклонен": {},
	"отклонён": {},
	"deleted":  {},
	"hidden":   {},
	"rejected": {},
}

// IsHiddenReviewStatus сообщает, убран ли отзыв модерацией
func IsHiddenReviewStatus(raw string) bool {
	_, ok := hiddenReviewSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Review - одна строка листа «Отзывы»
type Review struct {
	Date   string // 2006-01-02 15:04:05
	Name   string
	Rating string // "1".."5"
	Text   string
	UserID string
	Status string
}

// ReviewKey - активный ключ отзыва для сверки: стабильного id строки нет,
// поэтому одинаковые (пользователь, дата, оценка, текст) - один и тот же отзыв
type ReviewKey struct {
	UserID string
	Date   string
	Rating string
	Text   string
}

const ReviewColumns = 6

func ParseReviewRow(row []string) (Review, error) {
	if len(row) < ReviewColumns {
		return Review{}, fmt.Errorf("review row has %d columns, want %d", len(row), ReviewColumns)
	}
	return Review{
		Date:   row[0],
		Name:   row[1],
		Rating: row[2],
		Text:   row[3],
		UserID: row[4],
		Status: row[5],
	}, nil
}

func (r Review) Row() []string {
	return []string{r.Date, r.Name, r.Rating, r.Text, r.UserID, r.Status}
}

func (r Review) Key() ReviewKey {
	return ReviewKey{UserID: r.UserID, Date: r.Date, Rating: r.Rating, Text: r.Text}
}

func (r Review) StatusKind() ReviewStatus {
	s := strings.ToLower(strings.TrimSpace(r.Status))
	switch {
	case s == strings.ToLower(string(ReviewStatusNew)):
		return ReviewStatusNew
	case s == "отклонен" || s == "отклонён" || s == "rejected":
		return ReviewStatusRejected
	case s == "скрыт" || s == "hidden":
		return ReviewStatusHidden
	case s == "удален" || s == "удалён" || s == "deleted":
		return ReviewStatusDeleted
	default:
		return ReviewStatusOther
	}
}
