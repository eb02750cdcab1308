package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/service"
	"github.com/zdorovieplus/clinic_bot/internal/storage"
)

// watchStore отдаёт сверке подготовленные срезы записей и отзывов
type watchStore struct {
	appointments []model.Appointment
	reviews      []model.Review
}

var _ storage.Store = (*watchStore)(nil)

func (w *watchStore) AddAppointment(ctx context.Context, appt model.Appointment) error { return nil }
func (w *watchStore) Appointments(ctx context.Context) ([]model.Appointment, error) {
	return append([]model.Appointment(nil), w.appointments...), nil
}
func (w *watchStore) AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	return nil, nil
}
func (w *watchStore) BookedTimes(ctx context.Context, doctorName, date string) (map[string]struct{}, error) {
	return nil, nil
}
func (w *watchStore) DeleteAppointment(ctx context.Context, key model.IdentityKey) (bool, error) {
	return false, nil
}
func (w *watchStore) UpdateAppointmentStatus(ctx context.Context, rowIndex int, status string) error {
	return nil
}
func (w *watchStore) AddReview(ctx context.Context, review model.Review) error { return nil }
func (w *watchStore) Reviews(ctx context.Context) ([]model.Review, error) {
	return append([]model.Review(nil), w.reviews...), nil
}
func (w *watchStore) UpdateReviewStatus(ctx context.Context, rowIndex int, status string) error {
	return nil
}
func (w *watchStore) AddConsultation(ctx context.Context, c model.Consultation) error { return nil }
func (w *watchStore) Consultations(ctx context.Context) ([]model.Consultation, error) {
	return nil, nil
}
func (w *watchStore) AddSubscriber(ctx context.Context, s model.Subscriber) error { return nil }
func (w *watchStore) Subscribers(ctx context.Context) ([]model.Subscriber, error) {
	return nil, nil
}

// recordingNotifier копит отправленные уведомления
type recordingNotifier struct {
	sent []struct {
		chatID int64
		text   string
	}
}

func (r *recordingNotifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	r.sent = append(r.sent, struct {
		chatID int64
		text   string
	}{chatID, text})
	return nil
}

type recordingRefresher struct {
	refreshed []int64
}

func (r *recordingRefresher) Refresh(ctx context.Context, userID int64) {
	r.refreshed = append(r.refreshed, userID)
}

func newTestWatcher(store *watchStore) (*Watcher, *recordingNotifier, *recordingRefresher) {
	logger := zap.NewNop()
	syncService := service.NewSyncService(store, logger)
	notifier := &recordingNotifier{}
	refresher := &recordingRefresher{}
	w := NewWatcher(syncService, notifier, refresher, time.Second, logger)
	return w, notifier, refresher
}

func activeAppointment(userID string) model.Appointment {
	return model.Appointment{
		Date: "15.09.2025", Time: "10:00", DoctorName: "Петрова Анна Сергеевна",
		Status: "Новая", UserID: userID, CreatedAt: "2025-09-01 10:00:00",
	}
}

func TestWatcherQuietWhenNothingChanges(t *testing.T) {
	store := &watchStore{appointments: []model.Appointment{activeAppointment("100")}}
	w, notifier, _ := newTestWatcher(store)
	ctx := context.Background()

	w.Tick(ctx) // базовая линия
	w.Tick(ctx)
	w.Tick(ctx)

	if len(notifier.sent) != 0 {
		t.Fatalf("no changes, but %d notifications sent", len(notifier.sent))
	}
}

func TestWatcherNotifiesAboutRemovedAppointmentOnce(t *testing.T) {
	store := &watchStore{appointments: []model.Appointment{activeAppointment("100")}}
	w, notifier, refresher := newTestWatcher(store)
	ctx := context.Background()

	w.Tick(ctx) // базовая линия

	store.appointments = nil
	w.Tick(ctx)

	if len(notifier.sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.sent))
	}
	if notifier.sent[0].chatID != 100 {
		t.Errorf("notified chat %d, want 100", notifier.sent[0].chatID)
	}
	if !strings.Contains(notifier.sent[0].text, "15.09.2025 10:00") ||
		!strings.Contains(notifier.sent[0].text, "Петрова Анна Сергеевна") {
		t.Errorf("notification misses appointment details: %q", notifier.sent[0].text)
	}
	if len(refresher.refreshed) != 1 || refresher.refreshed[0] != 100 {
		t.Errorf("listing refresh calls = %v, want [100]", refresher.refreshed)
	}

	// Та же пропажа не должна дёргать пользователя повторно
	w.Tick(ctx)
	if len(notifier.sent) != 1 {
		t.Fatalf("repeated tick re-sent notification, total %d", len(notifier.sent))
	}
}

func TestWatcherTreatsCancelledStatusAsRemoval(t *testing.T) {
	appt := activeAppointment("100")
	store := &watchStore{appointments: []model.Appointment{appt}}
	w, notifier, _ := newTestWatcher(store)
	ctx := context.Background()

	w.Tick(ctx) // базовая линия

	cancelled := appt
	cancelled.Status = "Отменена"
	store.appointments = []model.Appointment{cancelled}
	w.Tick(ctx)

	if len(notifier.sent) != 1 {
		t.Fatalf("status flip to cancelled must notify, got %d notifications", len(notifier.sent))
	}
}

func TestWatcherIgnoresNewRows(t *testing.T) {
	store := &watchStore{}
	w, notifier, _ := newTestWatcher(store)
	ctx := context.Background()

	w.Tick(ctx) // базовая линия

	store.appointments = []model.Appointment{activeAppointment("100")}
	w.Tick(ctx)

	if len(notifier.sent) != 0 {
		t.Fatalf("new rows must not trigger notifications, got %d", len(notifier.sent))
	}
}

func TestWatcherNotifiesAboutHiddenReview(t *testing.T) {
	review := model.Review{
		Date: "2025-09-01 12:00:00", Name: "Иван", Rating: "5",
		Text: "Отличная клиника", UserID: "200", Status: "Новый",
	}
	store := &watchStore{reviews: []model.Review{review}}
	w, notifier, _ := newTestWatcher(store)
	ctx := context.Background()

	w.Tick(ctx) // базовая линия

	hidden := review
	hidden.Status = "Скрыт"
	store.reviews = []model.Review{hidden}
	w.Tick(ctx)

	if len(notifier.sent) != 1 {
		t.Fatalf("hidden review must notify, got %d notifications", len(notifier.sent))
	}
	if notifier.sent[0].chatID != 200 {
		t.Errorf("notified chat %d, want 200", notifier.sent[0].chatID)
	}
	if !strings.Contains(notifier.sent[0].text, "оценка 5") ||
		!strings.Contains(notifier.sent[0].text, "Отличная клиника") {
		t.Errorf("notification misses review details: %q", notifier.sent[0].text)
	}
}

func TestWatcherTruncatesLongReviewPreview(t *testing.T) {
	longText := strings.Repeat("ы", 300)
	review := model.Review{
		Date: "2025-09-01 12:00:00", Rating: "3",
		Text: longText, UserID: "200", Status: "Новый",
	}
	store := &watchStore{reviews: []model.Review{review}}
	w, notifier, _ := newTestWatcher(store)
	ctx := context.Background()

	w.Tick(ctx) // базовая линия
	store.reviews = nil
	w.Tick(ctx)

	if len(notifier.sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.sent))
	}
	text := notifier.sent[0].text
	if strings.Contains(text, longText) {
		t.Error("notification must not contain the full review text")
	}
	want := strings.Repeat("ы", reviewPreviewLimit) + "…"
	if !strings.Contains(text, want) {
		t.Error("notification must contain the truncated preview with ellipsis")
	}
}
