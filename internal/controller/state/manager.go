package state

import (
	"sync"
)

// Manager управляет сессиями диалогов пользователей.
// Одна сессия на пользователя, только в памяти процесса.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session // telegramID -> Session
}

// NewManager создаёт новый менеджер сессий
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
	}
}

// GetState получает текущее состояние пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if session, exists := sm.sessions[telegramID]; exists {
		return session.State
	}
	return StateNone
}

// SetState устанавливает состояние пользователя, сохраняя накопленные данные
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[telegramID]
	if !exists {
		session = &Session{}
		sm.sessions[telegramID] = session
	}
	session.State = state
}

// Session возвращает копию сессии пользователя
func (sm *Manager) Session(telegramID int64) (Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if session, exists := sm.sessions[telegramID]; exists {
		return *session, true
	}
	return Session{}, false
}

// Update изменяет сессию пользователя под блокировкой,
// создавая её при необходимости
func (sm *Manager) Update(telegramID int64, fn func(*Session)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[telegramID]
	if !exists {
		session = &Session{}
		sm.sessions[telegramID] = session
	}
	fn(session)
}

// Clear очищает состояние и данные пользователя
func (sm *Manager) Clear(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.sessions, telegramID)
}
