package extract_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recite-sh/recite/internal/extract"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want extract.Format
	}{
		{"README.md", extract.FormatMarkdown},
		{"notes.markdown", extract.FormatMarkdown},
		{"CHANGES.MD", extract.FormatMarkdown},
		{"plain.txt", extract.FormatPlain},
		{"no-extension", extract.FormatPlain},
	}
	for _, tt := range tests {
		if got := extract.DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestMarkdownDropsCodeBlocks(t *testing.T) {
	src := "Before the code.\n\n```go\nfunc main() {}\n```\n\nAfter the code.\n"
	got := extract.Markdown([]byte(src))
	if strings.Contains(got, "func main") {
		t.Errorf("code block leaked into output: %q", got)
	}
	if !strings.Contains(got, "Before the code.") || !strings.Contains(got, "After the code.") {
		t.Errorf("prose lost: %q", got)
	}
}

func TestMarkdownKeepsLinkText(t *testing.T) {
	src := "Read [the manual](https://example.com/manual) first."
	got := extract.Markdown([]byte(src))
	if !strings.Contains(got, "the manual") {
		t.Errorf("link text lost: %q", got)
	}
	if strings.Contains(got, "example.com") {
		t.Errorf("link URL leaked: %q", got)
	}
}

func TestMarkdownFlattensEmphasisAndHeadings(t *testing.T) {
	src := "# Getting Started\n\nThis is **important** and *subtle*.\n"
	got := extract.Markdown([]byte(src))
	if !strings.Contains(got, "Getting Started") {
		t.Errorf("heading text lost: %q", got)
	}
	if strings.ContainsAny(got, "#*") {
		t.Errorf("markdown syntax leaked: %q", got)
	}
	if !strings.Contains(got, "important") || !strings.Contains(got, "subtle") {
		t.Errorf("emphasis text lost: %q", got)
	}
}

func TestMarkdownParagraphBreaksSurvive(t *testing.T) {
	src := "First paragraph.\n\nSecond paragraph.\n"
	got := extract.Markdown([]byte(src))
	if !strings.Contains(got, "First paragraph.\n\nSecond paragraph.") {
		t.Errorf("paragraph break lost: %q", got)
	}
}

func TestMarkdownDropsInlineCode(t *testing.T) {
	src := "Run `rm -rf /tmp/x` carefully."
	got := extract.Markdown([]byte(src))
	if strings.Contains(got, "rm -rf") {
		t.Errorf("inline code leaked: %q", got)
	}
}

func TestPlainNormalizes(t *testing.T) {
	src := "line one\r\n\r\n\r\n\r\nline two   \r\n"
	got := extract.Plain([]byte(src))
	want := "line one\n\nline two"
	if got != want {
		t.Errorf("Plain = %q, want %q", got, want)
	}
}

func TestPlainNFCNormalization(t *testing.T) {
	// e + combining acute becomes the precomposed form.
	src := "café"
	got := extract.Plain([]byte(src))
	if got != "café" {
		t.Errorf("Plain = %q, want NFC-composed café", got)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# Title\n\nBody text.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := extract.FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Title") || !strings.Contains(got, "Body text.") {
		t.Errorf("FromFile = %q", got)
	}

	if _, err := extract.FromFile(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("FromFile on a missing file should fail")
	}
}
