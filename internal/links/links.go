// Package links converts free-form lists of phone numbers or usernames into t.me deep links.
package links

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how tokens are turned into links.
type Mode string

const (
	// ModeUsername treats tokens as public usernames.
	ModeUsername Mode = "username"
	// ModeNumber treats tokens as phone numbers.
	ModeNumber Mode = "number"
)

const baseURL = "https://t.me/"

// ErrEmptyInput is returned when no usable tokens remain after cleanup.
var ErrEmptyInput = errors.New("links: no valid entries")

var separators = regexp.MustCompile(`[,\s]+`)

// ParseMode maps a user-facing mode name to a Mode.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "username", "usernames", "user":
		return ModeUsername, nil
	case "number", "numbers", "phone", "link":
		return ModeNumber, nil
	}
	return "", fmt.Errorf("links: unknown mode %q; allowed: username, number", raw)
}

// Tokens splits text on runs of commas, whitespace and newlines and drops empty entries.
func Tokens(text string) []string {
	parts := separators.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Generate returns one deep link per usable token in input order.
//
// Usernames lose a single leading '@' and become https://t.me/<name>.
// Numbers lose internal spaces and a single leading '+' and always become https://t.me/+<digits>.
func Generate(text string, mode Mode) ([]string, error) {
	var out []string
	for _, tok := range Tokens(text) {
		var link string
		switch mode {
		case ModeUsername:
			name := strings.TrimPrefix(tok, "@")
			if name == "" {
				continue
			}
			link = baseURL + name
		case ModeNumber:
			num := strings.TrimPrefix(strings.ReplaceAll(tok, " ", ""), "+")
			if num == "" {
				continue
			}
			link = baseURL + "+" + num
		default:
			return nil, fmt.Errorf("links: unsupported mode %q", mode)
		}
		out = append(out, link)
	}
	if len(out) == 0 {
		return nil, ErrEmptyInput
	}
	return out, nil
}

// Join renders links one per line.
func Join(urls []string) string {
	return strings.Join(urls, "\n")
}
