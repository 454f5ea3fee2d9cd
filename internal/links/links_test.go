package links

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateNumbers(t *testing.T) {
	got, err := Generate("+8801712345, 01812345", ModeNumber)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []string{"https://t.me/+8801712345", "https://t.me/+01812345"}
	if len(got) != len(want) {
		t.Fatalf("got %d links, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("link %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGenerateUsernames(t *testing.T) {
	got, err := Generate("@alice bob\n\n@@carol,,", ModeUsername)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := "https://t.me/alice\nhttps://t.me/bob\nhttps://t.me/@carol"
	if Join(got) != want {
		t.Fatalf("got %q, want %q", Join(got), want)
	}
}

func TestGenerateDropsBareMarkers(t *testing.T) {
	got, err := Generate("+ @ 123", ModeNumber)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// '@' is not a number marker, so only '+' vanishes.
	if Join(got) != "https://t.me/+@\nhttps://t.me/+123" {
		t.Fatalf("unexpected links: %v", got)
	}

	got, err = Generate("@ alice", ModeUsername)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 1 || got[0] != "https://t.me/alice" {
		t.Fatalf("unexpected links: %v", got)
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", ", ,\n\t", "@"} {
		_, err := Generate(in, ModeUsername)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("input %q: expected ErrEmptyInput, got %v", in, err)
		}
	}
}

func TestGenerateUnknownMode(t *testing.T) {
	_, err := Generate("abc", Mode("fax"))
	if err == nil || errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected unsupported mode error, got %v", err)
	}
}

func TestTokensSplitsOnMixedSeparators(t *testing.T) {
	got := Tokens(" a,b\tc\r\nd ,, e ")
	if strings.Join(got, "|") != "a|b|c|d|e" {
		t.Fatalf("unexpected tokens: %v", got)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Number "); err != nil || m != ModeNumber {
		t.Fatalf("ParseMode(number) = %v, %v", m, err)
	}
	if m, err := ParseMode("username"); err != nil || m != ModeUsername {
		t.Fatalf("ParseMode(username) = %v, %v", m, err)
	}
	if _, err := ParseMode("email"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
