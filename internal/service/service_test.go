package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/storage"
)

// fakeStore - хранилище в памяти для тестов сервисов
type fakeStore struct {
	appointments  []model.Appointment
	reviews       []model.Review
	consultations []model.Consultation
	subscribers   []model.Subscriber

	readErr  error
	writeErr error
}

var _ storage.Store = (*fakeStore)(nil)

func (f *fakeStore) AddAppointment(ctx context.Context, appt model.Appointment) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.appointments = storage.DedupAppointments(append(f.appointments, appt))
	return nil
}

func (f *fakeStore) Appointments(ctx context.Context) ([]model.Appointment, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]model.Appointment(nil), f.appointments...), nil
}

func (f *fakeStore) AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var mine []model.Appointment
	for _, a := range f.appointments {
		if a.UserID == userID {
			mine = append(mine, a)
		}
	}
	return mine, nil
}

func (f *fakeStore) BookedTimes(ctx context.Context, doctorName, date string) (map[string]struct{}, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	booked := make(map[string]struct{})
	for _, a := range f.appointments {
		if model.IsCancelledStatus(a.Status) {
			continue
		}
		if a.DoctorName == doctorName && a.Date == date {
			booked[a.Time] = struct{}{}
		}
	}
	return booked, nil
}

func (f *fakeStore) DeleteAppointment(ctx context.Context, key model.IdentityKey) (bool, error) {
	if f.writeErr != nil {
		return false, f.writeErr
	}
	kept := f.appointments[:0]
	removed := false
	for _, a := range f.appointments {
		if a.IdentityKey() == key {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	f.appointments = kept
	return removed, nil
}

func (f *fakeStore) UpdateAppointmentStatus(ctx context.Context, rowIndex int, status string) error {
	return f.writeErr
}

func (f *fakeStore) AddReview(ctx context.Context, review model.Review) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeStore) Reviews(ctx context.Context) ([]model.Review, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]model.Review(nil), f.reviews...), nil
}

func (f *fakeStore) UpdateReviewStatus(ctx context.Context, rowIndex int, status string) error {
	return f.writeErr
}

func (f *fakeStore) AddConsultation(ctx context.Context, c model.Consultation) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.consultations = append(f.consultations, c)
	return nil
}

func (f *fakeStore) Consultations(ctx context.Context) ([]model.Consultation, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]model.Consultation(nil), f.consultations...), nil
}

func (f *fakeStore) AddSubscriber(ctx context.Context, s model.Subscriber) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	for _, existing := range f.subscribers {
		if existing.UserID == s.UserID {
			return nil
		}
	}
	f.subscribers = append(f.subscribers, s)
	return nil
}

func (f *fakeStore) Subscribers(ctx context.Context) ([]model.Subscriber, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]model.Subscriber(nil), f.subscribers...), nil
}

func TestBookWritesNewAppointment(t *testing.T) {
	store := &fakeStore{}
	svc := NewAppointmentService(store, zap.NewNop())

	appt, err := svc.Book(context.Background(), 12345, "Иванов Иван", "+79991234567",
		"Петрова Анна Сергеевна", "Терапевт", "15.09.2025", "10:00")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if appt.Status != string(model.AppointmentStatusNew) {
		t.Errorf("status = %q, want %q", appt.Status, model.AppointmentStatusNew)
	}
	if appt.UserID != "12345" {
		t.Errorf("userID = %q, want %q", appt.UserID, "12345")
	}
	if _, err := time.Parse(model.CreatedAtLayout, appt.CreatedAt); err != nil {
		t.Errorf("createdAt %q is not in canonical layout: %v", appt.CreatedAt, err)
	}
	if len(store.appointments) != 1 {
		t.Fatalf("store has %d appointments, want 1", len(store.appointments))
	}
}

func TestBookReportsWriteFailure(t *testing.T) {
	store := &fakeStore{writeErr: errors.New("file is locked")}
	svc := NewAppointmentService(store, zap.NewNop())

	if _, err := svc.Book(context.Background(), 1, "И", "+7", "Д", "Т", "15.09.2025", "10:00"); err == nil {
		t.Fatal("Book must report store write failure")
	}
}

func TestForUserSortsFreshFirstAndDegrades(t *testing.T) {
	store := &fakeStore{appointments: []model.Appointment{
		{Date: "15.09.2025", Time: "10:00", DoctorName: "А", UserID: "1", CreatedAt: "2025-09-01 10:00:00"},
		{Date: "16.09.2025", Time: "11:00", DoctorName: "Б", UserID: "1", CreatedAt: "2025-09-02 10:00:00"},
	}}
	svc := NewAppointmentService(store, zap.NewNop())

	got := svc.ForUser(context.Background(), 1)
	if len(got) != 2 {
		t.Fatalf("got %d appointments, want 2", len(got))
	}
	if got[0].CreatedAt != "2025-09-02 10:00:00" {
		t.Errorf("freshest appointment must come first, got %q", got[0].CreatedAt)
	}

	store.readErr = errors.New("sheet busy")
	if got := svc.ForUser(context.Background(), 1); got != nil {
		t.Errorf("read failure must degrade to empty list, got %d items", len(got))
	}
}

func TestAvailableDatesSkipsWeekends(t *testing.T) {
	// Понедельник
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.Local)
	svc := NewAppointmentService(&fakeStore{}, zap.NewNop())

	dates := svc.AvailableDates(now)
	if len(dates) != 10 {
		t.Fatalf("got %d dates over two weeks, want 10 workdays", len(dates))
	}
	for _, d := range dates {
		day, err := time.ParseInLocation(model.DateLayout, d, time.Local)
		if err != nil {
			t.Fatalf("date %q is not in canonical layout: %v", d, err)
		}
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			t.Errorf("date %q falls on a weekend", d)
		}
		if !day.After(now) {
			t.Errorf("date %q is not in the future", d)
		}
	}
	if dates[0] != "16.09.2025" {
		t.Errorf("first offered date = %q, want next day", dates[0])
	}
}

func TestAvailableTimesSubtractsBooked(t *testing.T) {
	store := &fakeStore{appointments: []model.Appointment{
		{Date: "15.09.2025", Time: "10:00", DoctorName: "Петрова Анна Сергеевна", UserID: "1", Status: "Новая", CreatedAt: "2025-09-01 10:00:00"},
		{Date: "15.09.2025", Time: "10:30", DoctorName: "Петрова Анна Сергеевна", UserID: "2", Status: "Отменена", CreatedAt: "2025-09-01 10:00:00"},
	}}
	svc := NewAppointmentService(store, zap.NewNop())

	free := svc.AvailableTimes(context.Background(), "Петрова Анна Сергеевна", "15.09.2025")
	for _, slot := range free {
		if slot == "10:00" {
			t.Error("booked slot 10:00 must not be offered")
		}
	}
	found := false
	for _, slot := range free {
		if slot == "10:30" {
			found = true
		}
	}
	if !found {
		t.Error("cancelled slot 10:30 must be offered again")
	}
}

func TestAvailableTimesDegradesToFullGrid(t *testing.T) {
	store := &fakeStore{readErr: errors.New("sheet busy")}
	svc := NewAppointmentService(store, zap.NewNop())

	free := svc.AvailableTimes(context.Background(), "Кто угодно", "15.09.2025")
	if len(free) == 0 {
		t.Fatal("read failure must degrade to the full time grid, not an empty one")
	}
}

func TestCancelRules(t *testing.T) {
	ctx := context.Background()
	svc := NewAppointmentService(&fakeStore{}, zap.NewNop())

	far := time.Now().AddDate(0, 0, 7)
	soon := time.Now().Add(2 * time.Hour)

	cancelled := model.Appointment{Date: far.Format(model.DateLayout), Time: "10:00", Status: "Отменена"}
	if err := svc.Cancel(ctx, cancelled); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("Cancel(cancelled) = %v, want ErrAlreadyCancelled", err)
	}

	badDate := model.Appointment{Date: "когда-нибудь", Time: "10:00", Status: "Новая"}
	if err := svc.Cancel(ctx, badDate); !errors.Is(err, ErrBadDate) {
		t.Errorf("Cancel(bad date) = %v, want ErrBadDate", err)
	}

	tooSoon := model.Appointment{Date: soon.Format(model.DateLayout), Time: soon.Format(model.TimeLayout), Status: "Новая"}
	if err := svc.Cancel(ctx, tooSoon); !errors.Is(err, ErrTooLate) {
		t.Errorf("Cancel(2h before) = %v, want ErrTooLate", err)
	}

	missing := model.Appointment{Date: far.Format(model.DateLayout), Time: "10:00", Status: "Новая", UserID: "1", CreatedAt: "2025-09-01 10:00:00"}
	if err := svc.Cancel(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel(missing) = %v, want ErrNotFound", err)
	}
}

func TestCancelRemovesExactRow(t *testing.T) {
	far := time.Now().AddDate(0, 0, 7).Format(model.DateLayout)
	appt := model.Appointment{
		Date: far, Time: "10:00", DoctorName: "Петрова Анна Сергеевна",
		Status: "Новая", UserID: "1", CreatedAt: "2025-09-01 10:00:00",
	}
	store := &fakeStore{appointments: []model.Appointment{appt}}
	svc := NewAppointmentService(store, zap.NewNop())

	if err := svc.Cancel(context.Background(), appt); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(store.appointments) != 0 {
		t.Fatalf("store still has %d appointments", len(store.appointments))
	}
}

func TestReviewAddAndDegradedRead(t *testing.T) {
	store := &fakeStore{}
	svc := NewReviewService(store, zap.NewNop())

	if err := svc.Add(context.Background(), 12345, "Иван", 5, "Отличная клиника"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(store.reviews) != 1 {
		t.Fatalf("store has %d reviews, want 1", len(store.reviews))
	}
	r := store.reviews[0]
	if r.Rating != "5" || r.UserID != "12345" || r.Status != string(model.ReviewStatusNew) {
		t.Errorf("stored review fields mismatch: %+v", r)
	}

	store.readErr = errors.New("sheet busy")
	if got := svc.All(context.Background()); got != nil {
		t.Errorf("read failure must degrade to empty list, got %d items", len(got))
	}
}

func TestSyncServiceActiveKeys(t *testing.T) {
	store := &fakeStore{
		appointments: []model.Appointment{
			{Date: "15.09.2025", Time: "10:00", DoctorName: "А", UserID: "1", Status: "Новая", CreatedAt: "2025-09-01 10:00:00"},
			{Date: "15.09.2025", Time: "11:00", DoctorName: "А", UserID: "2", Status: "Отменена", CreatedAt: "2025-09-01 10:00:00"},
		},
		reviews: []model.Review{
			{Date: "2025-09-01 12:00:00", Rating: "5", Text: "Хорошо", UserID: "1", Status: "Новый"},
			{Date: "2025-09-01 13:00:00", Rating: "1", Text: "Плохо", UserID: "2", Status: "Скрыт"},
		},
	}
	svc := NewSyncService(store, zap.NewNop())

	appts, err := svc.ActiveAppointmentKeys(context.Background())
	if err != nil {
		t.Fatalf("ActiveAppointmentKeys: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("got %d active appointment keys, want 1 (cancelled excluded)", len(appts))
	}

	reviews, err := svc.ActiveReviewKeys(context.Background())
	if err != nil {
		t.Fatalf("ActiveReviewKeys: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("got %d active review keys, want 1 (hidden excluded)", len(reviews))
	}
}

func TestRemovedKeysDiff(t *testing.T) {
	k1 := model.IdentityKey{UserID: "1", Date: "15.09.2025", Time: "10:00", Doctor: "А", CreatedAt: "2025-09-01 10:00:00"}
	k2 := model.IdentityKey{UserID: "2", Date: "15.09.2025", Time: "11:00", Doctor: "А", CreatedAt: "2025-09-01 10:00:00"}

	prev := map[model.IdentityKey]struct{}{k1: {}, k2: {}}
	cur := map[model.IdentityKey]struct{}{k2: {}}

	removed := RemovedAppointments(prev, cur)
	if len(removed) != 1 || removed[0] != k1 {
		t.Fatalf("RemovedAppointments = %v, want just %v", removed, k1)
	}

	// Появление нового ключа - не удаление
	if removed := RemovedAppointments(cur, prev); len(removed) != 0 {
		t.Fatalf("new keys must not count as removed, got %v", removed)
	}
}
