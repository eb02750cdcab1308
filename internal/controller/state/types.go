package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Текстовые шаги записи на приём (выбор врача/даты/времени идёт кнопками)
	StateBookingName  UserState = "booking_name"
	StateBookingPhone UserState = "booking_phone"

	// Текстовый шаг отзыва (оценка выбирается кнопками)
	StateReviewText UserState = "review_text"

	// Ожидание вопроса для онлайн-консультации
	StateConsultationQuestion UserState = "consultation_question"
)

// BookingDraft накапливает выбор пользователя по шагам записи на приём.
// Живёт только в памяти процесса и очищается на терминальном шаге.
type BookingDraft struct {
	Specialization string
	DoctorName     string
	Date           string
	Time           string
	PatientName    string
	Phone          string
}

// ReadyToBook проверяет, что все шаги выбора пройдены
func (d BookingDraft) ReadyToBook() bool {
	return d.Specialization != "" && d.DoctorName != "" &&
		d.Date != "" && d.Time != "" && d.PatientName != "" && d.Phone != ""
}

// ReviewDraft хранит выбранную оценку до ввода текста отзыва
type ReviewDraft struct {
	Rating int
}

// Session - временные данные пользователя на время диалога
type Session struct {
	State   UserState
	Booking BookingDraft
	Review  ReviewDraft
}
