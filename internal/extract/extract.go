// Package extract turns fetched pages into search documents: a title and
// a whitespace-collapsed plain-text body.
package extract

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mfenderov/blogsearch/pkg/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// Extractor converts pages to documents.
type Extractor struct {
	md goldmark.Markdown
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{md: goldmark.New()}
}

// Extract returns the document for p. The ID is left zero; callers assign
// ids once the final page order is known.
func (e *Extractor) Extract(p models.Page) (models.Document, error) {
	var title, md string

	if IsMarkdown(p.URL, p.ContentType, p.Content) {
		md = p.Content
		title = markdownTitle(md)
	} else {
		converted, err := ToMarkdown(p.Content)
		if err != nil {
			return models.Document{}, fmt.Errorf("failed to convert %s: %w", p.URL, err)
		}
		md = converted
		title = Title(p.Content)
	}

	return models.Document{
		URL:   p.URL,
		Title: title,
		Body:  e.PlainText(md),
	}, nil
}

// ToMarkdown converts an HTML page to markdown.
func ToMarkdown(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

// Title returns the trimmed text of the page's <title> element.
func Title(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var title string
	var find func(*html.Node) bool
	find = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if find(c) {
				return true
			}
		}
		return false
	}
	find(doc)

	return strings.Join(strings.Fields(title), " ")
}

// PlainText renders markdown as plain text. Markup, link targets and raw
// HTML are dropped; code is kept verbatim. Runs of whitespace collapse to
// a single space.
func (e *Extractor) PlainText(md string) string {
	src := []byte(md)
	root := e.md.Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				sb.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch n := n.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(n.Value)
		case *ast.AutoLink:
			sb.Write(n.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(sb.String()), " ")
}
