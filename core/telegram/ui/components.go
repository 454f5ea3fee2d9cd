package ui

import tele "gopkg.in/telebot.v4"

// NewArticleResult creates an inline ArticleResult. Text is sent without
// parse mode and with link previews disabled.
func NewArticleResult(id, title, description, text string) *tele.ArticleResult {
	result := &tele.ArticleResult{
		Title:       title,
		Description: description,
		Text:        text,
	}
	result.SetResultID(id)
	result.SetContent(&tele.InputTextMessageContent{
		Text:           text,
		PreviewOptions: &tele.PreviewOptions{Disabled: true},
	})
	return result
}
