package bot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/m3rciful/sheetbot/core/logger"
	tghelpers "github.com/m3rciful/sheetbot/core/telegram/helpers"
	"github.com/m3rciful/sheetbot/internal/activity"
	"github.com/m3rciful/sheetbot/internal/table"
	"github.com/m3rciful/sheetbot/internal/viewer"

	tele "gopkg.in/telebot.v4"
)

// handleDocument loads uploaded spreadsheets; other files are ignored.
func (b *Bot) handleDocument(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Document == nil {
		return nil
	}
	if !table.SupportedExtension(msg.Document.FileName) {
		logger.Debug(tghelpers.BuildContext(c), logger.ComponentViewer, "sheet.skip",
			slog.String("status", "skip"),
			slog.String("file", msg.Document.FileName),
			slog.String("cause", "extension"),
		)
		return nil
	}
	return b.loadSheet(c, msg.Document)
}

// handleView loads the spreadsheet the command replies to.
func (b *Bot) handleView(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.ReplyTo == nil || msg.ReplyTo.Document == nil {
		return tghelpers.SendMD(c, textViewUsage)
	}
	return b.loadSheet(c, msg.ReplyTo.Document)
}

func (b *Bot) loadSheet(c tele.Context, doc *tele.Document) error {
	ctx := tghelpers.BuildContext(c)
	chatID := chatIDOf(c)
	limit := b.cfg.Viewer.MaxFileBytes

	if limit > 0 && doc.FileSize > limit {
		return tghelpers.SendText(c, fmt.Sprintf(textFileTooBigTmpl, humanBytes(doc.FileSize), humanBytes(limit)))
	}

	data, err := b.download(c, &doc.File, limit)
	if errors.Is(err, errTooLarge) {
		return tghelpers.SendText(c, fmt.Sprintf(textFileTooBigTmpl, "over the limit", humanBytes(limit)))
	}
	if err != nil {
		return fmt.Errorf("download %s: %w", doc.FileName, err)
	}

	t, err := b.loader.Load(ctx, data, doc.FileName)
	if err != nil {
		var decodeErr *table.DecodeError
		if !errors.As(err, &decodeErr) {
			return err
		}
		logger.Warn(ctx, logger.ComponentViewer, "sheet.decode",
			slog.String("status", "fail"),
			slog.String("file", doc.FileName),
			slog.Int("bytes", len(data)),
			slog.String("err", decodeErr.Error()),
		)
		b.record(ctx, activity.NewEvent(chatID, activity.KindSheetRejected, 0, doc.FileName))
		if errors.Is(err, table.ErrEmpty) {
			return tghelpers.SendText(c, textFileEmpty)
		}
		detail := strings.ReplaceAll(logger.SanitizeLimit(decodeErr.Err.Error(), 300), "`", "'")
		return tghelpers.SendMD(c, fmt.Sprintf(textFileErrorTmpl, detail))
	}

	view, err := b.store.Load(chatID, t)
	if err != nil {
		return err
	}
	logger.Info(ctx, logger.ComponentViewer, "sheet.load",
		slog.String("status", "ok"),
		slog.String("file", doc.FileName),
		slog.Int("bytes", len(data)),
		slog.Int("rows", t.Rows()),
		slog.Int("columns", t.Columns()),
		slog.Int("sessions", b.store.Len()),
	)
	b.record(ctx, activity.NewEvent(chatID, activity.KindSheetLoaded, t.Rows(), doc.FileName))

	// The acknowledgement is sent inline so it lands before the queued page.
	if err := c.Reply(textFileReceived); err != nil {
		return err
	}
	return b.sendView(c, view)
}

var errTooLarge = errors.New("file exceeds size limit")

func (b *Bot) download(c tele.Context, f *tele.File, limit int64) ([]byte, error) {
	rc, err := b.fetch(c, f)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := io.Reader(rc)
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}

func (b *Bot) sendView(c tele.Context, v viewer.View) error {
	text, markup := renderView(v)
	return tghelpers.SendMD(c, text, markup)
}

// viewAction runs one viewer transition for a button press and sends the resulting page.
func (b *Bot) viewAction(action viewer.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		chatID := chatIDOf(c)

		if action == viewer.ActionCopy {
			content, err := b.store.Copy(chatID)
			if errors.Is(err, viewer.ErrEmptySession) {
				return tghelpers.Alert(c, textSessionExpired)
			}
			if err != nil {
				return err
			}
			if err := c.Respond(); err != nil {
				return err
			}
			return tghelpers.SendMD(c, renderCopy(content))
		}

		view, err := b.store.Apply(chatID, action)
		if errors.Is(err, viewer.ErrEmptySession) {
			logger.Info(ctx, logger.ComponentViewer, "viewer.expired",
				slog.String("status", "skip"),
				slog.String("op", string(action)),
			)
			return tghelpers.Alert(c, textSessionExpired)
		}
		if err != nil {
			return err
		}
		logger.Debug(ctx, logger.ComponentViewer, "viewer.apply",
			slog.String("status", "ok"),
			slog.String("op", string(action)),
			slog.Int("page", view.Page),
			slog.Int("column", view.Column),
		)
		if err := c.Respond(); err != nil {
			return err
		}
		return b.sendView(c, view)
	}
}

func humanBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d KB", (n+1023)/1024)
}
