package format

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct {
		in      string
		version int
		want    string
	}{
		{"price_list*v2.xlsx", MarkdownV1, `price\_list\*v2.xlsx`},
		{"[a]`b`", MarkdownV1, "\\[a]\\`b\\`"},
		{"v1.2 (beta)!", MarkdownV2, `v1\.2 \(beta\)\!`},
		{"a-b_c", MarkdownV2, `a\-b\_c`},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, tc.version)
		if err != nil {
			t.Fatalf("EscapeMarkdown(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("EscapeMarkdown(%q, %d) = %q, want %q", tc.in, tc.version, got, tc.want)
		}
	}
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error for unknown version")
	}
}

func TestCodeBlock(t *testing.T) {
	if got := CodeBlock("1\n2"); got != "```\n1\n2\n```" {
		t.Fatalf("CodeBlock = %q", got)
	}
	if got := CodeBlock("a`b"); got != "```\nab\n```" {
		t.Fatalf("CodeBlock = %q", got)
	}
}
