package config

// Статический каталог клиники: сведения, врачи и сетка времени приёма.
// Загружается один раз, из кода не изменяется.

type ClinicInfo struct {
	Name         string
	Address      string
	Phone        string
	Email        string
	Website      string
	WorkingHours string
	MapURL       string
	Description  string
}

type Doctor struct {
	Name        string
	Experience  string
	Photo       string
	Description string
}

var Clinic = ClinicInfo{
	Name:         "Медицинский центр Здоровье+",
	Address:      "г. Москва, ул. Медицинская, д. 15",
	Phone:        "+7 (495) 123-45-67",
	Email:        "info@zdorovie-plus.ru",
	Website:      "https://zdorovie-plus.ru",
	WorkingHours: "Пн-Пт: 8:00-20:00\nСб-Вс: 9:00-18:00",
	MapURL:       "https://maps.google.com/?q=Москва,ул.Медицинская,д.15",
	Description: "Современный многопрофильный центр, где сочетаются опытные специалисты, " +
		"современное оборудование и индивидуальный подход. Мы проводим диагностику, " +
		"лечение и профилактику по ключевым направлениям: терапия, кардиология, " +
		"неврология, стоматология и др. Заботимся о комфортной и безопасной среде " +
		"для пациентов любого возраста.",
}

var Specializations = []string{
	"Терапевт",
	"Стоматолог",
	"Кардиолог",
	"Невролог",
	"Офтальмолог",
	"Ортопед",
	"Гинеколог",
	"Уролог",
}

var Doctors = map[string][]Doctor{
	"Терапевт": {
		{
			Name:        "Иванов Иван Иванович",
			Experience:  "15 лет",
			Photo:       "👨‍⚕️",
			Description: "Врач-терапевт высшей категории",
		},
		{
			Name:        "Петрова Анна Сергеевна",
			Experience:  "12 лет",
			Photo:       "👩‍⚕️",
			Description: "Врач-терапевт первой категории",
		},
	},
	"Стоматолог": {
		{
			Name:        "Сидоров Петр Александрович",
			Experience:  "20 лет",
			Photo:       "👨‍⚕️",
			Description: "Врач-стоматолог высшей категории",
		},
	},
	"Кардиолог": {
		{
			Name:        "Козлова Елена Владимировна",
			Experience:  "18 лет",
			Photo:       "👩‍⚕️",
			Description: "Врач-кардиолог высшей категории",
		},
	},
}

var AvailableTimes = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"12:00", "12:30", "13:00", "13:30", "14:00", "14:30",
	"15:00", "15:30", "16:00", "16:30", "17:00", "17:30",
	"18:00", "18:30", "19:00", "19:30",
}
