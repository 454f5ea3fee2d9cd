package router

import (
	"time"

	tg "github.com/m3rciful/sheetbot/core/telegram"
	"github.com/m3rciful/sheetbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for an FSM manager.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls routing of text and document updates. Unset
// handlers make the router log a skip and drop the update.
type TextOptions struct {
	Document    tele.HandlerFunc
	UnknownText tele.HandlerFunc
}

func inProgress(fsm FSM, c tele.Context) bool {
	return fsm != nil && c.Sender() != nil && fsm.InProgress(c.Sender().ID)
}

// TextRoutes builds handlers for text and document routing.
// Text from a user with an active prompt goes to the FSM first.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()

		if inProgress(fsmMgr, c) {
			return handleWithSummary(c, "fsm", start, func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.Document == nil {
			logHandlerSummary(c, "document", start, "skip", nil)
			return nil
		}
		return handleWithSummary(c, "document", start, func() error {
			return opts.Document(c)
		})
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(docHandler)),
		},
	}
}

// InlineRoute wraps an inline query handler with the shared middleware and summary logging.
func InlineRoute(h tele.HandlerFunc) tg.Route {
	handler := func(c tele.Context) error {
		return handleWithSummary(c, "inline_query", time.Now(), func() error {
			return h(c)
		})
	}
	return tg.Route{
		Endpoint: tele.OnQuery,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
