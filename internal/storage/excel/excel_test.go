package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/model"
	"github.com/zdorovieplus/clinic_bot/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinic_test.xlsx")
	s, err := New(path, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func testAppointment(createdAt string) model.Appointment {
	return model.Appointment{
		Date:           "15.09.2025",
		Time:           "10:00",
		PatientName:    "Иванов Иван Иванович",
		Phone:          "+79991234567",
		DoctorName:     "Петрова Анна Сергеевна",
		Specialization: "Терапевт",
		Status:         "Новая",
		UserID:         "12345",
		CreatedAt:      createdAt,
	}
}

func TestAddAndReadAppointment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	appt := testAppointment("2025-09-01 10:00:00")
	if err := s.AddAppointment(ctx, appt); err != nil {
		t.Fatalf("AddAppointment: %v", err)
	}

	got, err := s.Appointments(ctx)
	if err != nil {
		t.Fatalf("Appointments: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d appointments, want 1", len(got))
	}
	if got[0] != appt {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got[0], appt)
	}
}

func TestAddAppointmentDedupsSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := testAppointment("2025-09-01 10:00:00")
	second := testAppointment("2025-09-01 10:05:00")
	second.PatientName = "Иванов (обновлён)"

	if err := s.AddAppointment(ctx, first); err != nil {
		t.Fatalf("AddAppointment first: %v", err)
	}
	if err := s.AddAppointment(ctx, second); err != nil {
		t.Fatalf("AddAppointment second: %v", err)
	}

	got, err := s.Appointments(ctx)
	if err != nil {
		t.Fatalf("Appointments: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d appointments after duplicate add, want 1", len(got))
	}
	if got[0].PatientName != "Иванов (обновлён)" {
		t.Errorf("dedup kept %q, want the later duplicate", got[0].PatientName)
	}
}

func TestAppointmentsByUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mine := testAppointment("2025-09-01 10:00:00")
	other := testAppointment("2025-09-01 11:00:00")
	other.UserID = "99999"
	other.Time = "11:00"

	if err := s.AddAppointment(ctx, mine); err != nil {
		t.Fatalf("AddAppointment: %v", err)
	}
	if err := s.AddAppointment(ctx, other); err != nil {
		t.Fatalf("AddAppointment: %v", err)
	}

	got, err := s.AppointmentsByUser(ctx, "12345")
	if err != nil {
		t.Fatalf("AppointmentsByUser: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d appointments for user, want 1", len(got))
	}
	if got[0].UserID != "12345" {
		t.Errorf("got appointment of user %q", got[0].UserID)
	}
}

func TestBookedTimesSkipsCancelled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	active := testAppointment("2025-09-01 10:00:00")
	cancelled := testAppointment("2025-09-01 10:00:00")
	cancelled.Time = "11:00"
	cancelled.UserID = "777"
	cancelled.Status = "Отменена"

	if err := s.AddAppointment(ctx, active); err != nil {
		t.Fatalf("AddAppointment: %v", err)
	}
	if err := s.AddAppointment(ctx, cancelled); err != nil {
		t.Fatalf("AddAppointment: %v", err)
	}

	booked, err := s.BookedTimes(ctx, "Петрова Анна Сергеевна", "15.09.2025")
	if err != nil {
		t.Fatalf("BookedTimes: %v", err)
	}
	if _, ok := booked["10:00"]; !ok {
		t.Error("active slot 10:00 must be booked")
	}
	if _, ok := booked["11:00"]; ok {
		t.Error("cancelled slot 11:00 must not be booked")
	}
}

func TestDeleteAppointmentByIdentityKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	appt := testAppointment("2025-09-01 10:00:00")
	if err := s.AddAppointment(ctx, appt); err != nil {
		t.Fatalf("AddAppointment: %v", err)
	}

	// Чужой ключ (другой createdAt) не должен ничего удалить
	wrong := appt.IdentityKey()
	wrong.CreatedAt = "2025-09-01 10:00:01"
	removed, err := s.DeleteAppointment(ctx, wrong)
	if err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if removed {
		t.Fatal("delete with wrong createdAt must not remove anything")
	}

	removed, err = s.DeleteAppointment(ctx, appt.IdentityKey())
	if err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if !removed {
		t.Fatal("delete with exact identity key must remove the row")
	}

	got, err := s.Appointments(ctx)
	if err != nil {
		t.Fatalf("Appointments: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d appointments after delete, want 0", len(got))
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddAppointment(ctx, testAppointment("2025-09-01 10:00:00")); err != nil {
		t.Fatalf("AddAppointment: %v", err)
	}

	// Строка 2: первая строка данных после заголовка
	if err := s.UpdateAppointmentStatus(ctx, 2, "Отменена"); err != nil {
		t.Fatalf("UpdateAppointmentStatus: %v", err)
	}

	got, err := s.Appointments(ctx)
	if err != nil {
		t.Fatalf("Appointments: %v", err)
	}
	if len(got) != 1 || got[0].Status != "Отменена" {
		t.Fatalf("status not updated: %+v", got)
	}
}

func TestReviewsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	review := model.Review{
		Date:   "2025-09-01 12:00:00",
		Name:   "Иван",
		Rating: "5",
		Text:   "Отличная клиника",
		UserID: "12345",
		Status: "Новый",
	}
	if err := s.AddReview(ctx, review); err != nil {
		t.Fatalf("AddReview: %v", err)
	}

	got, err := s.Reviews(ctx)
	if err != nil {
		t.Fatalf("Reviews: %v", err)
	}
	if len(got) != 1 || got[0] != review {
		t.Fatalf("review round trip mismatch: %+v", got)
	}
}

func TestConsultationEmptyAnswerSurvivesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := model.Consultation{
		Date:     "2025-09-01 12:00:00",
		Question: "Болит голова, что делать?",
		UserID:   "12345",
		Status:   "Новая",
		Answer:   "", // пустой хвост строки не должен отбраковать её при чтении
	}
	if err := s.AddConsultation(ctx, c); err != nil {
		t.Fatalf("AddConsultation: %v", err)
	}

	got, err := s.Consultations(ctx)
	if err != nil {
		t.Fatalf("Consultations: %v", err)
	}
	if len(got) != 1 || got[0] != c {
		t.Fatalf("consultation round trip mismatch: %+v", got)
	}
}

func TestAddSubscriberAfterBlankRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Администратор оставил пустую строку посреди листа
	f, err := excelize.OpenFile(s.Path())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	first := []interface{}{"1", "Первый", "2025-09-01 10:00:00"}
	last := []interface{}{"2", "Второй", "2025-09-01 11:00:00"}
	if err := f.SetSheetRow(storage.SubscribersSheet, "A2", &first); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow(storage.SubscribersSheet, "A4", &last); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	f.Close()

	sub := model.Subscriber{UserID: "3", Name: "Третий", SubscribedAt: "2025-09-01 12:00:00"}
	if err := s.AddSubscriber(ctx, sub); err != nil {
		t.Fatalf("AddSubscriber: %v", err)
	}

	subs, err := s.Subscribers(ctx)
	if err != nil {
		t.Fatalf("Subscribers: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("got %d subscribers, want 3: existing rows must survive the insert", len(subs))
	}
	byID := make(map[string]model.Subscriber, len(subs))
	for _, s := range subs {
		byID[s.UserID] = s
	}
	if got, ok := byID["2"]; !ok || got.Name != "Второй" {
		t.Errorf("subscriber after the blank row was overwritten: %+v", subs)
	}
	if _, ok := byID["3"]; !ok {
		t.Errorf("new subscriber missing: %+v", subs)
	}
}

func TestBackupCreatesCopy(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	s, err := New(filepath.Join(dir, "clinic_test.xlsx"), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := s.AddAppointment(ctx, testAppointment("2025-09-01 10:00:00")); err != nil {
		t.Fatalf("AddAppointment: %v", err)
	}

	name, err := s.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	backup, err := New(name, zap.NewNop())
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	got, err := backup.Appointments(ctx)
	if err != nil {
		t.Fatalf("Appointments from backup: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("backup has %d appointments, want 1", len(got))
	}
}

func TestAddSubscriberIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := model.Subscriber{UserID: "12345", Name: "Иван", SubscribedAt: "2025-09-01 12:00:00"}
	if err := s.AddSubscriber(ctx, sub); err != nil {
		t.Fatalf("AddSubscriber: %v", err)
	}
	if err := s.AddSubscriber(ctx, sub); err != nil {
		t.Fatalf("AddSubscriber repeat: %v", err)
	}

	subs, err := s.Subscribers(ctx)
	if err != nil {
		t.Fatalf("Subscribers: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d subscribers after repeated subscribe, want 1", len(subs))
	}
}
