package bot

import (
	"fmt"
	"strings"

	"github.com/m3rciful/sheetbot/core/telegram/format"
	"github.com/m3rciful/sheetbot/core/telegram/keyboard"
	"github.com/m3rciful/sheetbot/internal/viewer"

	tele "gopkg.in/telebot.v4"
)

// Callback keys bound to viewer transitions.
const (
	cbViewPrev    = "view_prev"
	cbViewNext    = "view_next"
	cbViewColPrev = "view_col_prev"
	cbViewColNext = "view_col_next"
	cbViewCopy    = "view_copy"
	cbPromptClose = "prompt_cancel"
)

var actionKeys = map[viewer.Action]string{
	viewer.ActionPrevPage:   cbViewPrev,
	viewer.ActionNextPage:   cbViewNext,
	viewer.ActionPrevColumn: cbViewColPrev,
	viewer.ActionNextColumn: cbViewColNext,
	viewer.ActionCopy:       cbViewCopy,
}

// renderView turns a page into Markdown text and its navigation keyboard.
func renderView(v viewer.View) (string, *tele.ReplyMarkup) {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Data Viewer* (Col %d of %d)\n", v.Column, v.Columns)
	fmt.Fprintf(&b, "📑 *Page:* %d/%d\n", v.Page, v.Pages)
	fmt.Fprintf(&b, "🔢 *Rows:* %d to %d (of %d)\n\n", v.StartRow, v.EndRow, v.TotalRows)
	if v.Values == 0 {
		b.WriteString(format.EscapeV1(v.Content))
	} else {
		b.WriteString(format.CodeBlock(v.Content))
		b.WriteString("\n\n")
		b.WriteString(textTip)
	}
	return b.String(), renderKeyboard(v)
}

// renderCopy is the bare code block sent for the copy button.
func renderCopy(content string) string {
	if content == viewer.EmptyPagePlaceholder {
		return format.EscapeV1(content)
	}
	return format.CodeBlock(content)
}

func renderKeyboard(v viewer.View) *tele.ReplyMarkup {
	var pages, columns, copyRow []keyboard.InlineBtn
	for _, action := range v.Affordances.Actions() {
		btn := keyboard.InlineBtn{Unique: actionKeys[action]}
		switch action {
		case viewer.ActionPrevPage:
			btn.Text = fmt.Sprintf("⬅️ < %d", v.StartRow-1)
			pages = append(pages, btn)
		case viewer.ActionNextPage:
			btn.Text = fmt.Sprintf("%d > ➡️", v.EndRow+1)
			pages = append(pages, btn)
		case viewer.ActionPrevColumn:
			btn.Text = fmt.Sprintf("◀️ Col %d", neighbourColumn(v, -1))
			columns = append(columns, btn)
		case viewer.ActionNextColumn:
			btn.Text = fmt.Sprintf("Col %d ▶️", neighbourColumn(v, 1))
			columns = append(columns, btn)
		case viewer.ActionCopy:
			btn.Text = "📋 Copy page"
			copyRow = append(copyRow, btn)
		}
	}
	return keyboard.InlineButtonsRows(pages, columns, copyRow)
}

// neighbourColumn returns the 1-based column reached by moving delta with wrap-around.
func neighbourColumn(v viewer.View, delta int) int {
	if v.Columns <= 0 {
		return v.Column
	}
	idx := (v.Column - 1 + delta) % v.Columns
	if idx < 0 {
		idx += v.Columns
	}
	return idx + 1
}

// splitMessage cuts text on line boundaries into chunks of at most limit bytes.
// A single line longer than limit is cut hard.
func splitMessage(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			flush()
			out = append(out, line[:limit])
			line = line[limit:]
		}
		extra := len(line)
		if cur.Len() > 0 {
			extra++
		}
		if cur.Len()+extra > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()
	return out
}
