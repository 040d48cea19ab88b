package report

import (
	"bytes"
	"io"
	"strings"
)

type flusher interface {
	Flush() error
}

// TextRenderer writes a plain-text rendition of the document. Each section
// is written and flushed as soon as it is complete.
type TextRenderer struct {
	out   io.Writer
	buf   bytes.Buffer
	pages int
}

// NewTextRenderer returns a TextRenderer writing to out. If out has a
// Flush() error method it is called after every section.
func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{out: out}
}

func (t *TextRenderer) FillRect(x, y, w, h float64, fill Color) {}

func (t *TextRenderer) Text(x, y float64, style Style, s string) {
	indent := int((x - Margin) / 4)
	if indent < 0 {
		indent = 0
	}
	t.buf.WriteString(strings.Repeat(" ", indent))
	if style.Bold && style.Size == HeadingStyle.Size {
		t.buf.WriteString(strings.ToUpper(s))
	} else {
		t.buf.WriteString(s)
	}
	t.buf.WriteByte('\n')
}

func (t *TextRenderer) NewPage() error {
	t.pages++
	if t.pages > 1 {
		t.buf.WriteString("\f\n")
	}
	return nil
}

func (t *TextRenderer) Flush() error {
	t.buf.WriteByte('\n')
	if _, err := t.out.Write(t.buf.Bytes()); err != nil {
		return err
	}
	t.buf.Reset()
	if f, ok := t.out.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func (t *TextRenderer) Close() error {
	if t.buf.Len() == 0 {
		return nil
	}
	return t.Flush()
}

func (t *TextRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}
