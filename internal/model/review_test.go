package model

import "testing"

func TestIsHiddenReviewStatus(t *testing.T) {
	hidden := []string{"Удален", "удалён", "Скрыт", "отклонен", "Отклонён", "deleted", "HIDDEN", "rejected"}
	for _, s := range hidden {
		if !IsHiddenReviewStatus(s) {
			t.Errorf("IsHiddenReviewStatus(%q) = false, want true", s)
		}
	}

	visible := []string{"Новый", "", "на модерации", "одобрен"}
	for _, s := range visible {
		if IsHiddenReviewStatus(s) {
			t.Errorf("IsHiddenReviewStatus(%q) = true, want false", s)
		}
	}
}

func TestReviewKeyIgnoresStatusAndName(t *testing.T) {
	a := Review{Date: "2025-09-01 12:00:00", Name: "Иван", Rating: "5", Text: "Отлично", UserID: "1", Status: "Новый"}
	b := a
	b.Name = "Иван П."
	b.Status = "Одобрен"

	if a.Key() != b.Key() {
		t.Error("review key must depend only on user, date, rating and text")
	}

	c := a
	c.Text = "Отлично!"
	if a.Key() == c.Key() {
		t.Error("different text must produce different review keys")
	}
}

func TestParseReviewRowRejectsShortRow(t *testing.T) {
	if _, err := ParseReviewRow([]string{"2025-09-01 12:00:00", "Иван", "5"}); err == nil {
		t.Fatal("expected error for row with missing columns")
	}
}
