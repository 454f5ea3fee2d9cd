// Package bot wires the link generator and the spreadsheet viewer into Telegram handlers.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/m3rciful/sheetbot/core/bootstrap"
	coreconfig "github.com/m3rciful/sheetbot/core/config"
	"github.com/m3rciful/sheetbot/core/logger"
	tg "github.com/m3rciful/sheetbot/core/telegram"
	tghelpers "github.com/m3rciful/sheetbot/core/telegram/helpers"
	"github.com/m3rciful/sheetbot/core/telegram/router"
	"github.com/m3rciful/sheetbot/core/telegram/state"
	"github.com/m3rciful/sheetbot/internal/activity"
	"github.com/m3rciful/sheetbot/internal/links"
	"github.com/m3rciful/sheetbot/internal/table"
	"github.com/m3rciful/sheetbot/internal/viewer"

	tele "gopkg.in/telebot.v4"
)

// fetchFunc downloads a Telegram file.
type fetchFunc func(c tele.Context, f *tele.File) (io.ReadCloser, error)

func fetchFromTelegram(c tele.Context, f *tele.File) (io.ReadCloser, error) {
	return c.Bot().File(f)
}

// Bot holds the per-process state shared by all handlers.
type Bot struct {
	cfg   *coreconfig.Config
	infra *bootstrap.Result

	store   *viewer.Store
	cleanup *viewer.CleanupService
	loader  *table.Loader
	journal activity.Recorder
	fsm     state.Manager
	reg     *tg.Registry

	fetch    fetchFunc
	botName  string
	username string
}

// New builds the bot. infra may be nil or carry no database, in which case
// the activity journal is kept in memory.
func New(cfg *coreconfig.Config, infra *bootstrap.Result) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	if infra == nil {
		infra = &bootstrap.Result{}
	}

	store := viewer.NewStore(viewer.Options{
		PageSize:    cfg.Viewer.PageSize,
		IdleTTL:     cfg.Viewer.SessionTTL,
		MaxSessions: cfg.Viewer.MaxSessions,
	})

	var journal activity.Recorder
	if infra.DB != nil {
		journal = activity.NewPostgresStore(infra.DB)
	} else {
		journal = activity.NewMemoryStore(0)
	}

	b := &Bot{
		cfg:     cfg,
		infra:   infra,
		store:   store,
		cleanup: viewer.NewCleanupService(store, cfg.Viewer.CleanupInterval),
		loader:  table.NewLoader(),
		journal: journal,
		fsm:     state.NewMemoryManager(),
		reg:     tg.NewRegistry(),
		fetch:   fetchFromTelegram,
		botName: defaultBotName,
	}
	if err := b.register(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bot) register() error {
	cmds := []struct {
		name string
		cmd  tg.Command
	}{
		{"/start", tg.Command{Handler: b.handleWelcome, Description: "Show the welcome message", Aliases: []string{"help"}}},
		{"/addlink", tg.Command{Handler: b.linkCommand(links.ModeNumber), Description: "Convert phone numbers to t.me links"}},
		{"/addusername", tg.Command{Handler: b.linkCommand(links.ModeUsername), Description: "Convert usernames to t.me links"}},
		{"/view", tg.Command{Handler: b.handleView, Description: "Reply to an Excel file to view it"}},
		{"/cancel", tg.Command{Handler: b.handleCancel, Description: "Cancel the current prompt"}},
		{"/stats", tg.Command{Handler: b.handleStats, Description: "Usage statistics", AdminOnly: true}},
	}
	var errs []error
	for _, c := range cmds {
		errs = append(errs, b.reg.RegisterCommand(c.name, c.cmd))
	}

	callbacks := map[string]tele.HandlerFunc{
		cbViewPrev:    b.viewAction(viewer.ActionPrevPage),
		cbViewNext:    b.viewAction(viewer.ActionNextPage),
		cbViewColPrev: b.viewAction(viewer.ActionPrevColumn),
		cbViewColNext: b.viewAction(viewer.ActionNextColumn),
		cbViewCopy:    b.viewAction(viewer.ActionCopy),
		cbPromptClose: b.handlePromptCancel,
	}
	for key, h := range callbacks {
		errs = append(errs, b.reg.RegisterCallback(key, h))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("bot: %w", err)
	}
	b.reg.SetCallbackNotFound(b.UnknownCallback())
	b.reg.SetTextFallback(b.UnknownText())

	b.fsm.Handle(stateAwaitNumbers, b.promptAnswer(links.ModeNumber))
	b.fsm.Handle(stateAwaitUsernames, b.promptAnswer(links.ModeUsername))
	return nil
}

// UnknownText answers free text outside a prompt in private chats.
func (b *Bot) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Chat() == nil || c.Chat().Type != tele.ChatPrivate {
			return nil
		}
		if msg := c.Message(); msg != nil && msg.Via != nil {
			return nil
		}
		return tghelpers.SendText(c, textUnknownText)
	}
}

// UnknownCallback answers stale or foreign buttons.
func (b *Bot) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: textUnsupported})
	}
}

// TelegramRunOptions assembles routes, middlewares and lifecycle hooks.
func (b *Bot) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(b.reg, router.CommandRouteOptions{
		AdminID: b.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, textAdminOnly)
		},
	})
	routes = append(routes, router.CallbackRoute(b.reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(b.fsm, b.reg, router.TextOptions{
		Document: b.handleDocument,
	})...)
	routes = append(routes, router.InlineRoute(b.handleInline))

	onLimited := func(c tele.Context) error {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: textRateLimited})
		}
		return nil
	}

	return tg.RunOptions{
		Config:      b.cfg,
		Registry:    b.reg,
		Middlewares: tg.DefaultMiddlewares(b.cfg, onLimited),
		Routes:      routes,
		OnStart:     b.onStart,
		OnStop:      b.onStop,
	}, nil
}

func (b *Bot) onStart(ctx context.Context, rt tg.Runtime) error {
	if rt.Bot != nil && rt.Bot.Me != nil {
		if name := strings.TrimSpace(rt.Bot.Me.FirstName); name != "" {
			b.botName = name
		}
		b.username = rt.Bot.Me.Username
	}
	b.cleanup.Start(context.WithoutCancel(ctx))
	logger.Info(ctx, logger.ComponentViewer, "viewer.ready",
		slog.Int("page_size", b.store.PageSize()),
		slog.Duration("ttl", b.cfg.Viewer.SessionTTL),
		slog.Int("max_sessions", b.cfg.Viewer.MaxSessions),
	)
	return nil
}

func (b *Bot) onStop(ctx context.Context, _ tg.Runtime) error {
	b.cleanup.Stop()
	if err := b.infra.Close(); err != nil {
		logger.Warn(ctx, logger.ComponentDB, "db.close",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return nil
}

// record writes a journal event; failures are logged and never reach the user.
func (b *Bot) record(ctx context.Context, ev activity.Event) {
	if err := b.journal.Record(ctx, ev); err != nil {
		logger.Warn(ctx, logger.ComponentActivity, "activity.record",
			slog.String("status", "fail"),
			slog.String("op", string(ev.Kind)),
			slog.String("err", err.Error()),
		)
	}
}

func chatIDOf(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if user := c.Sender(); user != nil {
		return user.ID
	}
	return 0
}
