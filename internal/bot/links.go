package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/sheetbot/core/logger"
	tghelpers "github.com/m3rciful/sheetbot/core/telegram/helpers"
	"github.com/m3rciful/sheetbot/core/telegram/keyboard"
	"github.com/m3rciful/sheetbot/core/telegram/state"
	"github.com/m3rciful/sheetbot/internal/activity"
	"github.com/m3rciful/sheetbot/internal/links"

	tele "gopkg.in/telebot.v4"
)

const (
	stateAwaitNumbers   state.State = "await_numbers"
	stateAwaitUsernames state.State = "await_usernames"
)

// maxMessageLen is the Bot API limit for a text message.
const maxMessageLen = 4096

func promptState(mode links.Mode) state.State {
	if mode == links.ModeUsername {
		return stateAwaitUsernames
	}
	return stateAwaitNumbers
}

// commandPayload returns everything after the command word, newlines included.
func commandPayload(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	i := strings.IndexAny(text, " \n\t")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i+1:])
}

// linkCommand converts the command payload, or opens a prompt when there is none.
func (b *Bot) linkCommand(mode links.Mode) tele.HandlerFunc {
	return func(c tele.Context) error {
		payload := commandPayload(c.Text())
		if payload != "" {
			return b.replyLinks(c, payload, mode)
		}
		if sender := c.Sender(); sender != nil {
			b.fsm.SetState(sender.ID, promptState(mode))
		}
		prompt := textPromptNumbers
		if mode == links.ModeUsername {
			prompt = textPromptUsernames
		}
		return tghelpers.SendMD(c, prompt, keyboard.SingleCancelMarkup(cbPromptClose))
	}
}

// promptAnswer consumes the text that follows a bare /addlink or /addusername.
func (b *Bot) promptAnswer(mode links.Mode) tele.HandlerFunc {
	return func(c tele.Context) error {
		if sender := c.Sender(); sender != nil {
			b.fsm.ClearState(sender.ID)
		}
		return b.replyLinks(c, c.Text(), mode)
	}
}

func (b *Bot) replyLinks(c tele.Context, text string, mode links.Mode) error {
	ctx := tghelpers.BuildContext(c)
	urls, err := links.Generate(text, mode)
	if errors.Is(err, links.ErrEmptyInput) {
		logger.Info(ctx, logger.ComponentLinks, "links.generate",
			slog.String("status", "skip"),
			slog.String("mode", string(mode)),
			slog.String("cause", "empty"),
		)
		if mode == links.ModeUsername {
			return tghelpers.SendText(c, textNoUsernames)
		}
		return tghelpers.SendText(c, textNoNumbers)
	}
	if err != nil {
		return fmt.Errorf("generate links: %w", err)
	}

	logger.Info(ctx, logger.ComponentLinks, "links.generate",
		slog.String("status", "ok"),
		slog.String("mode", string(mode)),
		slog.Int("count", len(urls)),
	)
	b.record(ctx, activity.NewEvent(chatIDOf(c), activity.KindLinksGenerated, len(urls), string(mode)))

	header := headerNumbers
	if mode == links.ModeUsername {
		header = headerUsernames
	}
	chunks := splitMessage(header+"\n\n"+links.Join(urls), maxMessageLen)
	if len(chunks) == 1 {
		return tghelpers.SendPlain(c, chunks[0])
	}
	// Sent inline: the async dispatcher does not keep order between jobs.
	for _, chunk := range chunks {
		if err := c.Send(chunk, &tele.SendOptions{DisableWebPagePreview: true}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleCancel(c tele.Context) error {
	sender := c.Sender()
	if sender == nil || !b.fsm.InProgress(sender.ID) {
		return tghelpers.SendText(c, textNothingToCancel)
	}
	b.fsm.ClearState(sender.ID)
	return tghelpers.SendText(c, textCancelled)
}

func (b *Bot) handlePromptCancel(c tele.Context) error {
	if sender := c.Sender(); sender != nil {
		b.fsm.ClearState(sender.ID)
	}
	if err := c.Respond(&tele.CallbackResponse{Text: textCancelled}); err != nil {
		return err
	}
	return c.Edit(textCancelled)
}
