package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{name: "paragraph", input: "Hi", contains: "<p>Hi</p>"},
		{name: "heading gets id", input: "# Title", contains: `<h1 id="title">Title</h1>`},
		{name: "emphasis", input: "*soft*", contains: "<em>soft</em>"},
		{name: "gfm strikethrough", input: "~~gone~~", contains: "<del>gone</del>"},
		{name: "autolink", input: "see https://example.com", contains: `<a href="https://example.com">`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.input)
			if err != nil {
				t.Fatalf("ToHTML(%q) error: %v", tt.input, err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.input, got, tt.contains)
			}
		})
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	got, err := ToHTML("<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("ToHTML error: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw script tag passed through: %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "strips markup", input: "# Title\n\nSome *bold* and `code` text", max: 100, want: "Title Some bold and code text"},
		{name: "joins soft breaks", input: "one\ntwo", max: 100, want: "one two"},
		{name: "skips fenced code", input: "intro\n\n```go\nx := 1\n```\n\noutro", max: 100, want: "intro outro"},
		{name: "skips raw html", input: "<div>hidden</div>\n\nshown", max: 100, want: "shown"},
		{name: "keeps link text", input: "read [the docs](https://example.com)", max: 100, want: "read the docs"},
		{name: "cuts on runes", input: "héllo wörld", max: 5, want: "héllo…"},
		{name: "no limit", input: "a b c", max: 0, want: "a b c"},
		{name: "empty", input: "", max: 10, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.input, tt.max); got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}
