package storage

import "github.com/zdorovieplus/clinic_bot/internal/model"

// DedupAppointments схлопывает дубликаты по слот-ключу, оставляя запись
// с самой поздней датой создания. Порядок первых вхождений сохраняется,
// более поздний дубликат встаёт на место раннего.
//
// Дубликаты появляются при конкурирующих записях в таблицу без транзакций;
// правило «последняя дата создания побеждает» - единственный механизм их
// разрешения, поэтому оно применяется и при добавлении, и при чтении.
func DedupAppointments(appts []model.Appointment) []model.Appointment {
	type slot struct {
		pos       int
		createdAt string
	}
	seen := make(map[model.SlotKey]slot, len(appts))
	out := make([]model.Appointment, 0, len(appts))

	for _, a := range appts {
		key := NormalizeAppointment(a).SlotKey()
		created := NormalizeCreatedAt(a.CreatedAt)
		if prev, ok := seen[key]; ok {
			if created >= prev.createdAt {
				out[prev.pos] = a
				seen[key] = slot{pos: prev.pos, createdAt: created}
			}
			continue
		}
		seen[key] = slot{pos: len(out), createdAt: created}
		out = append(out, a)
	}
	return out
}
