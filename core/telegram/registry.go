package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/sheetbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Command describes a slash command. Aliases are registered without the
// leading slash and route to the same handler.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

var (
	// ErrDuplicate is returned when a command, alias or callback key is taken.
	ErrDuplicate = errors.New("already registered")
	// ErrInvalid is returned for registrations missing a name or handler.
	ErrInvalid = errors.New("invalid registration")
)

// Registry holds the commands, callback handlers and fallbacks of a bot.
// Registration happens during wiring; lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]Command
	aliases   map[string]string
	callbacks map[string]tele.HandlerFunc

	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry returns an empty registry whose unknown-callback fallback
// answers with a short notice.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

func commandKey(name string) string {
	return "/" + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
}

func rejectRegistration(kind, name string, cause error) error {
	logger.Warn(context.Background(), logger.ComponentWire, "register."+kind+".skip",
		slog.String("name", name),
		slog.String("cause", cause.Error()),
	)
	return fmt.Errorf("register %s %q: %w", kind, name, cause)
}

// RegisterCommand adds cmd under name ("/start") and its aliases.
func (r *Registry) RegisterCommand(name string, cmd Command) error {
	if cmd.Handler == nil || strings.TrimSpace(cmd.Description) == "" {
		return rejectRegistration("command", name, ErrInvalid)
	}
	if !strings.HasPrefix(name, "/") || len(name) < 2 {
		return rejectRegistration("command", name, ErrInvalid)
	}
	key := commandKey(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(key) {
		return rejectRegistration("command", name, ErrDuplicate)
	}
	aliasKeys := make([]string, 0, len(cmd.Aliases))
	for _, alias := range cmd.Aliases {
		ak := commandKey(alias)
		if ak == "/" || ak == key || r.taken(ak) {
			return rejectRegistration("alias", alias, ErrDuplicate)
		}
		aliasKeys = append(aliasKeys, ak)
	}
	r.commands[key] = cmd
	for _, ak := range aliasKeys {
		r.aliases[ak] = key
	}
	return nil
}

func (r *Registry) taken(key string) bool {
	_, isCmd := r.commands[key]
	_, isAlias := r.aliases[key]
	return isCmd || isAlias
}

// LookupCommand resolves a command or alias to its canonical name.
func (r *Registry) LookupCommand(name string) (string, Command, bool) {
	key := commandKey(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	cmd, ok := r.commands[key]
	if !ok {
		return "", Command{}, false
	}
	return key, cmd, true
}

// Commands returns a copy of the registered commands keyed by canonical name.
func (r *Registry) Commands() map[string]Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Command, len(r.commands))
	for k, v := range r.commands {
		out[k] = v
	}
	return out
}

// ListCommands returns the menu entries sorted by name. With visibleOnly,
// hidden and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]tele.Command, 0, len(r.commands))
	for key, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: key[1:], Description: cmd.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// RegisterCallback maps a callback unique key to its handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if strings.TrimSpace(key) == "" || handler == nil {
		return rejectRegistration("callback", key, ErrInvalid)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.callbacks[key]; ok {
		return rejectRegistration("callback", key, ErrDuplicate)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler registered for key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered callback keys sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetCallbackNotFound replaces the handler for unknown callback keys. Nil is ignored.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.callbackNotFound = h
	r.mu.Unlock()
}

// CallbackNotFound returns the handler for unknown callback keys.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callbackNotFound
}

// SetTextFallback sets the handler for text that no prompt consumed.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.mu.Lock()
	r.textFallback = h
	r.mu.Unlock()
}

// TextFallback returns the handler set by SetTextFallback, if any.
func (r *Registry) TextFallback() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.textFallback
}

// InitBotCommands publishes the visible commands as the bot menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	menu := reg.ListCommands(true)
	if err := bot.SetCommands(menu); err != nil {
		logger.Error(context.Background(), logger.ComponentWire, "register.commands.publish",
			slog.String("status", "fail"),
			slog.Int("count", len(menu)),
			slog.String("err", err.Error()),
		)
	}
}
