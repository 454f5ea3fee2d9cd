package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const statsKey = "response_stats"

// ResponseStats counts what a handler sent back for a single update.
type ResponseStats struct {
	sent      atomic.Int32
	edited    atomic.Int32
	keyboards atomic.Int32
	answered  atomic.Bool
}

// Sent returns the number of new messages.
func (s *ResponseStats) Sent() int { return int(s.sent.Load()) }

// Edited returns the number of edited messages.
func (s *ResponseStats) Edited() int { return int(s.edited.Load()) }

// Keyboards returns how many responses carried a reply markup.
func (s *ResponseStats) Keyboards() int { return int(s.keyboards.Load()) }

// Answered reports whether the callback query was answered.
func (s *ResponseStats) Answered() bool { return s.answered.Load() }

// statsContext wraps tele.Context so outgoing responses are counted.
type statsContext struct {
	tele.Context
	stats *ResponseStats
}

func (m statsContext) track(edit bool, opts []interface{}) {
	if edit {
		m.stats.edited.Add(1)
	} else {
		m.stats.sent.Add(1)
	}
	if hasKeyboard(opts) {
		m.stats.keyboards.Add(1)
	}
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m statsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.track(false, opts)
	}
	return err
}

func (m statsContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.track(false, opts)
	}
	return err
}

func (m statsContext) Edit(what interface{}, opts ...interface{}) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.track(true, opts)
	}
	return err
}

func (m statsContext) EditOrSend(what interface{}, opts ...interface{}) error {
	err := m.Context.EditOrSend(what, opts...)
	if err == nil {
		m.track(m.Callback() != nil, opts)
	}
	return err
}

func (m statsContext) Respond(resp ...*tele.CallbackResponse) error {
	err := m.Context.Respond(resp...)
	if err == nil {
		m.stats.answered.Store(true)
	}
	return err
}

// MessageMetricsMiddleware attaches a fresh ResponseStats to every update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &ResponseStats{}
		c.Set(statsKey, stats)
		return next(statsContext{Context: c, stats: stats})
	}
}

// Stats returns the counters attached by MessageMetricsMiddleware, or an
// empty set when the middleware is not installed.
func Stats(c tele.Context) *ResponseStats {
	if v, ok := c.Get(statsKey).(*ResponseStats); ok {
		return v
	}
	return &ResponseStats{}
}
