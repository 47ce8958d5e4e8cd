package glubblog

import (
	"html"

	bm "github.com/microcosm-cc/bluemonday"
	bf "github.com/russross/blackfriday"
)

type ContentRenderer interface {
	Render() ([]byte, error)
}

const mdExtensions = bf.EXTENSION_TABLES |
	bf.EXTENSION_FENCED_CODE |
	bf.EXTENSION_AUTOLINK |
	bf.EXTENSION_STRIKETHROUGH

var ugcPolicy = bm.UGCPolicy()

// entryRenderer renders the markdown content of an entry.
type entryRenderer struct {
	content string
}

func (a entryRenderer) Render() ([]byte, error) {
	out := bf.Markdown([]byte(a.content),
		entryMarkdown{
			bf.HtmlRenderer(0, "", ""),
		}, mdExtensions)
	return ugcPolicy.SanitizeBytes(out), nil
}

// SanitizeText strips all markup from user supplied plain text such as titles.
// The result is unescaped text, the templates escape it on output.
func SanitizeText(s string) string {
	return html.UnescapeString(bm.StrictPolicy().Sanitize(s))
}
