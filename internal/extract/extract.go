// Package extract turns documents into plain speakable text. Markdown
// is parsed properly rather than regex-stripped: code blocks and raw
// HTML are dropped, link and emphasis text is kept, and block
// structure becomes paragraph breaks so the chunker can cut at them.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// Format identifies how a document's bytes should be interpreted.
type Format int

const (
	// FormatPlain reads the bytes as plain UTF-8 text.
	FormatPlain Format = iota
	// FormatMarkdown parses the bytes as markdown first.
	FormatMarkdown
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return FormatMarkdown
	default:
		return FormatPlain
	}
}

// FromFile reads path and extracts its speakable text according to the
// detected format.
func FromFile(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return FromBytes(src, DetectFormat(path)), nil
}

// FromBytes extracts speakable text from src.
func FromBytes(src []byte, format Format) string {
	switch format {
	case FormatMarkdown:
		return Markdown(src)
	default:
		return Plain(src)
	}
}

// Plain normalizes plain text: Unicode NFC, unix line endings, runs of
// blank lines squeezed to one paragraph break.
func Plain(src []byte) string {
	return tidy(string(src))
}

// Markdown renders markdown to speakable text by walking the AST.
func Markdown(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			// Nothing in a code block reads aloud sensibly.
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan, *ast.RawHTML, *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(src))
				if node.HardLineBreak() {
					b.WriteString("\n")
				} else if node.SoftLineBreak() {
					b.WriteString(" ")
				}
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		default:
			// Block boundaries become paragraph breaks so downstream
			// chunking can prefer them.
			if !entering && n.Type() == ast.TypeBlock {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return tidy(b.String())
}

// tidy applies the common cleanup shared by both formats.
func tidy(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	// Squeeze runs of blank lines down to one paragraph break and trim
	// trailing space from each line.
	lines := strings.Split(s, "\n")
	var out []string
	blank := true // swallow leading blanks
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
