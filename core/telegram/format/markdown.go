package format

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

var (
	mdV1Specials = regexp.MustCompile("([_*`\\[])")
	mdV2Specials = regexp.MustCompile("([" + regexp.QuoteMeta("_*[]()~`>#+=|{}.!\\") + "-])")
)

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Specials.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return mdV2Specials.ReplaceAllString(text, `\$1`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// EscapeV1 escapes text for the legacy Markdown parse mode used by SendMD.
func EscapeV1(text string) string {
	s, _ := EscapeMarkdown(text, MarkdownV1)
	return s
}

// CodeBlock wraps lines in a fenced block. Backticks inside the body are
// dropped since legacy Markdown has no escape for them inside code.
func CodeBlock(body string) string {
	return "```\n" + strings.ReplaceAll(body, "`", "") + "\n```"
}
