package extract

import (
	"regexp"
	"strings"
)

var (
	headingPattern = regexp.MustCompile(`^#{1,6}\s+\S`)
	listPattern    = regexp.MustCompile(`(?m)^[\-\*]\s+\S`)
	linkPattern    = regexp.MustCompile(`\[.+?\]\(.+?\)`)
	h1Pattern      = regexp.MustCompile(`(?m)^#\s+(.+?)\s*#*\s*$`)
)

var htmlPrefixes = []string{"<!doctype", "<html", "<head", "<body"}

// IsMarkdownContentType reports whether a Content-Type header names markdown.
func IsMarkdownContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/markdown") || strings.HasPrefix(ct, "text/x-markdown")
}

// IsMarkdownURL reports whether url points at a markdown file.
func IsMarkdownURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// IsMarkdownContent guesses from the text itself. HTML documents never match.
func IsMarkdownContent(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range htmlPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	return headingPattern.MatchString(trimmed) ||
		listPattern.MatchString(trimmed) ||
		linkPattern.MatchString(trimmed)
}

// IsMarkdown checks the Content-Type, then the URL, then the content.
func IsMarkdown(url, contentType, content string) bool {
	return IsMarkdownContentType(contentType) ||
		IsMarkdownURL(url) ||
		IsMarkdownContent(content)
}

// SourceURLs returns URLs that may serve the markdown source of a post.
// GitHub blob links map to their raw file; other pages get a ".md" sibling.
func SourceURLs(url string) []string {
	if strings.Contains(url, "github.com") && strings.Contains(url, "/blob/") {
		raw := strings.Replace(url, "github.com", "raw.githubusercontent.com", 1)
		return []string{strings.Replace(raw, "/blob/", "/", 1)}
	}
	if IsMarkdownURL(url) {
		return nil
	}
	return []string{strings.TrimSuffix(url, "/") + ".md"}
}

// markdownTitle returns the text of the first level-one heading.
func markdownTitle(md string) string {
	m := h1Pattern.FindStringSubmatch(md)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
