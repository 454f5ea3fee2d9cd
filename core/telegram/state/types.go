// Package state keeps short conversational prompts per user: a user in a
// non-idle state has their next text message routed to the state's handler.
package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Manager orchestrates per-user FSM state.
type Manager interface {
	// Handle binds a handler to a state; the handler receives the next text of a user in that state.
	Handle(st State, h tele.HandlerFunc)

	SetState(userID int64, st State)
	GetState(userID int64) State
	ClearState(userID int64)

	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}
