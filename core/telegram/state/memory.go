package state

import (
	"log/slog"
	"sync"

	"github.com/m3rciful/sheetbot/core/logger"
	tghelpers "github.com/m3rciful/sheetbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	states   map[int64]State
	handlers map[State]tele.HandlerFunc
}

// NewMemoryManager constructs an in-memory Manager. States are lost on restart.
func NewMemoryManager() Manager {
	return &memoryManager{
		states:   make(map[int64]State),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

func (m *memoryManager) Handle(st State, h tele.HandlerFunc) {
	if h == nil || st == StateIdle {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[st] = h
}

func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st == StateIdle {
		delete(m.states, userID)
		return
	}
	m.states[userID] = st
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.states[userID]; ok {
		return st
	}
	return StateIdle
}

func (m *memoryManager) ClearState(userID int64) {
	m.SetState(userID, StateIdle)
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

// ManagerHandler executes the handler registered for the user's current state.
// The state is left in place; handlers decide whether the conversation ends.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	current := m.GetState(sender.ID)
	ctx := tghelpers.BuildContext(c)

	m.mu.RLock()
	handler, ok := m.handlers[current]
	m.mu.RUnlock()

	status := "ok"
	if !ok {
		status = "skip"
	}
	logger.Debug(ctx, logger.ComponentTG, "fsm.dispatch",
		slog.String("status", status),
		slog.String("op", string(current)),
	)
	if !ok {
		m.ClearState(sender.ID)
		return nil
	}
	return handler(c)
}
