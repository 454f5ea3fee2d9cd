package ui

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestNewArticleResult(t *testing.T) {
	r := NewArticleResult("numbers", "Phone links", "2 links", "https://t.me/+1\nhttps://t.me/+2")
	if r.ResultID() != "numbers" || r.Title != "Phone links" || r.Description != "2 links" {
		t.Fatalf("unexpected article: %+v", r)
	}
	content, ok := r.Content.(*tele.InputTextMessageContent)
	if !ok || content.PreviewOptions == nil || !content.PreviewOptions.Disabled || content.Text != r.Text {
		t.Fatalf("unexpected content: %#v", r.Content)
	}
}
