package keyboard

import "testing"

func TestInlineButtonsRows(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "prev", Unique: "view_prev"}, {Text: "next", Unique: "view_next", Data: "7"}},
		nil,
		[]InlineBtn{{Text: "Support", URL: "https://t.me/support"}},
	)
	if len(m.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2 (empty row skipped)", len(m.InlineKeyboard))
	}
	first := m.InlineKeyboard[0]
	if len(first) != 2 || first[0].Unique != "view_prev" || first[1].Data != "7" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	link := m.InlineKeyboard[1][0]
	if link.URL != "https://t.me/support" || link.Unique != "" {
		t.Fatalf("unexpected url button: %+v", link)
	}
}

func TestSingleCancelMarkup(t *testing.T) {
	m := SingleCancelMarkup("prompt_cancel")
	btn := m.InlineKeyboard[0][0]
	if btn.Unique != "prompt_cancel" || btn.Text != defaultCancelButtonText {
		t.Fatalf("unexpected cancel button: %+v", btn)
	}
	if got := SingleCancelMarkup("x", "Stop").InlineKeyboard[0][0].Text; got != "Stop" {
		t.Fatalf("label = %q", got)
	}
}
