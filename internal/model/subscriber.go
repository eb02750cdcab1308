package model

import "fmt"

// Subscriber - одна строка листа «Подписчики».
// Вставка идемпотентна по UserID, этим занимается хранилище.
type Subscriber struct {
	UserID       string
	Name         string
	SubscribedAt string // 2006-01-02 15:04:05
}

const SubscriberColumns = 3

func ParseSubscriberRow(row []string) (Subscriber, error) {
	if len(row) < SubscriberColumns {
		return Subscriber{}, fmt.Errorf("subscriber row has %d columns, want %d", len(row), SubscriberColumns)
	}
	return Subscriber{
		UserID:       row[0],
		Name:         row[1],
		SubscribedAt: row[2],
	}, nil
}

func (s Subscriber) Row() []string {
	return []string{s.UserID, s.Name, s.SubscribedAt}
}
