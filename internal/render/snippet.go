package render

import "unicode/utf16"

// Snippet settings. The cut counts UTF-16 code units, the unit the
// site's pages were generated against.
const (
	SnippetLength = 160
	SnippetSuffix = "..."
)

// Snippet returns the first SnippetLength code units of body followed by
// SnippetSuffix. The suffix is always appended. The cut is positional:
// it ignores word boundaries, and a surrogate pair split in half decodes
// to U+FFFD.
func Snippet(body string) string {
	units := utf16.Encode([]rune(body))
	if len(units) > SnippetLength {
		units = units[:SnippetLength]
	}
	return string(utf16.Decode(units)) + SnippetSuffix
}
