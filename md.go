package glubblog

import (
	"bytes"

	bf "github.com/russross/blackfriday"
)

// entryMarkdown adjusts the HTML renderer for entry bodies.
type entryMarkdown struct {
	bf.Renderer
}

func (md entryMarkdown) Image(out *bytes.Buffer, link []byte, title []byte, alt []byte) {
	if title == nil {
		title = alt
	}
	if alt == nil {
		alt = title
	}
	md.Renderer.Image(out, link, title, alt)
}

// The entry title is the only h1 on the page.
func (md entryMarkdown) Header(out *bytes.Buffer, text func() bool, level int, id string) {
	if level < 6 {
		level++
	}
	md.Renderer.Header(out, text, level, id)
}
