package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/sheetbot/core/logger"
	"github.com/m3rciful/sheetbot/core/telegram/format"
	tghelpers "github.com/m3rciful/sheetbot/core/telegram/helpers"
	"github.com/m3rciful/sheetbot/core/telegram/keyboard"
	"github.com/m3rciful/sheetbot/core/telegram/ui"
	"github.com/m3rciful/sheetbot/internal/activity"
	"github.com/m3rciful/sheetbot/internal/links"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) welcomeText() string {
	username := b.username
	if username == "" {
		username = "bot"
	}
	return fmt.Sprintf(welcomeTemplate, format.EscapeV1(b.botName), b.store.PageSize(), username)
}

func (b *Bot) handleWelcome(c tele.Context) error {
	var markup *tele.ReplyMarkup
	if url := strings.TrimSpace(b.cfg.Telegram.SupportURL); url != "" {
		markup = keyboard.InlineButtonsRows([]keyboard.InlineBtn{{Text: textSupportButton, URL: url}})
	}
	return tghelpers.SendMD(c, b.welcomeText(), markup)
}

func (b *Bot) handleStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sum, err := b.journal.Summary(ctx)
	if err != nil {
		return fmt.Errorf("activity summary: %w", err)
	}
	logger.Debug(ctx, logger.ComponentActivity, "activity.summary",
		slog.String("status", "ok"),
		slog.Int("count", sum.Chats),
	)
	return tghelpers.SendMD(c, formatSummary(sum, b.store.Len(), b.cleanup.Running()))
}

func formatSummary(sum activity.Summary, sessions int, sweeping bool) string {
	linksTotals := sum.ByKind[activity.KindLinksGenerated]
	loaded := sum.ByKind[activity.KindSheetLoaded]
	rejected := sum.ByKind[activity.KindSheetRejected]

	var b strings.Builder
	b.WriteString("📈 *Usage*\n\n")
	fmt.Fprintf(&b, "Chats: %d\n", sum.Chats)
	fmt.Fprintf(&b, "Link requests: %d (%d links)\n", linksTotals.Events, linksTotals.Items)
	fmt.Fprintf(&b, "Sheets loaded: %d (%d rows)\n", loaded.Events, loaded.Items)
	fmt.Fprintf(&b, "Sheets rejected: %d\n", rejected.Events)
	fmt.Fprintf(&b, "Open sessions: %d", sessions)
	if sweeping {
		b.WriteString(" (idle cleanup on)")
	} else {
		b.WriteString(" (idle cleanup off)")
	}
	if !sum.Since.IsZero() {
		fmt.Fprintf(&b, "\nSince: %s", sum.Since.UTC().Format("2006-01-02 15:04 MST"))
	}
	return b.String()
}

// handleInline offers both link flavours for the query text.
func (b *Bot) handleInline(c tele.Context) error {
	q := c.Query()
	if q == nil {
		return nil
	}
	text := strings.TrimSpace(q.Text)

	results := make(tele.Results, 0, 2)
	if text != "" {
		if urls, err := links.Generate(text, links.ModeNumber); err == nil {
			results = append(results, ui.NewArticleResult("numbers", "🔗 Number links",
				fmt.Sprintf("%d link(s) from phone numbers", len(urls)), firstChunk(links.Join(urls))))
		}
		if urls, err := links.Generate(text, links.ModeUsername); err == nil {
			results = append(results, ui.NewArticleResult("usernames", "👤 Username links",
				fmt.Sprintf("%d link(s) from usernames", len(urls)), firstChunk(links.Join(urls))))
		}
	}

	logger.Debug(tghelpers.BuildContext(c), logger.ComponentLinks, "links.inline",
		slog.String("status", "ok"),
		slog.Int("count", len(results)),
	)
	return c.Answer(&tele.QueryResponse{
		Results:    results,
		CacheTime:  0,
		IsPersonal: true,
	})
}

func firstChunk(text string) string {
	return splitMessage(text, maxMessageLen)[0]
}
