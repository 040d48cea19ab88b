// Package report lays out sectioned documents. Section builders produce
// Blocks whose coordinates are relative to the block's own top edge; a
// Document places blocks one after another and streams them to a Renderer.
package report

// Color is an RGB triple in the 0-255 range.
type Color struct{ R, G, B int }

var (
	Black     = Color{0, 0, 0}
	Grey      = Color{110, 110, 110}
	White     = Color{255, 255, 255}
	BrandBlue = Color{33, 86, 145}
	LightBlue = Color{225, 235, 247}
	Red       = Color{170, 40, 40}
)

// Style describes how text is drawn.
type Style struct {
	Size  float64
	Bold  bool
	Color Color
}

var (
	TitleStyle   = Style{Size: 18, Bold: true, Color: White}
	HeadingStyle = Style{Size: 13, Bold: true, Color: BrandBlue}
	BodyStyle    = Style{Size: 10, Color: Black}
	MutedStyle   = Style{Size: 9, Color: Grey}
	NoticeStyle  = Style{Size: 10, Color: Red}
)

// OpKind is the kind of drawing instruction.
type OpKind int

const (
	OpRect OpKind = iota
	OpText
)

// Instruction is one drawing operation. For OpText, Y is the baseline.
type Instruction struct {
	Kind  OpKind
	X, Y  float64
	W, H  float64
	Fill  Color
	Style Style
	Text  string
}

// Page geometry in millimetres (A4 portrait).
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 15.0
	ContentWidth = PageWidth - 2*Margin
	lineHeight   = 6.0
	headingGap   = 10.0
)

// Block is a self-contained section. Height grows as content is added.
// Banner, Heading, Line and Pair each start a row; a Document may break a
// page between rows but never inside one.
type Block struct {
	Name   string
	Height float64
	Ops    []Instruction

	title string
	rows  []row
}

type row struct {
	start int
	top   float64
}

// NewBlock returns an empty block for the named section.
func NewBlock(name string) *Block {
	return &Block{Name: name}
}

// Rect adds a filled rectangle at block-relative coordinates.
func (b *Block) Rect(x, y, w, h float64, fill Color) *Block {
	b.Ops = append(b.Ops, Instruction{Kind: OpRect, X: x, Y: y, W: w, H: h, Fill: fill})
	if y+h > b.Height {
		b.Height = y + h
	}
	return b
}

// Text adds text whose baseline is at block-relative y.
func (b *Block) Text(x, y float64, style Style, s string) *Block {
	b.Ops = append(b.Ops, Instruction{Kind: OpText, X: x, Y: y, Style: style, Text: s})
	if y+2 > b.Height {
		b.Height = y + 2
	}
	return b
}

// Banner adds a full-width filled title bar.
func (b *Block) Banner(title, subtitle string) *Block {
	b.startRow()
	top := b.Height
	b.Rect(Margin, top, ContentWidth, 22, BrandBlue)
	b.Text(Margin+5, top+10, TitleStyle, title)
	if subtitle != "" {
		b.Text(Margin+5, top+17, Style{Size: 9, Color: White}, subtitle)
	}
	return b
}

// Heading adds a section heading with a light underline bar.
func (b *Block) Heading(title string) *Block {
	b.startRow()
	if b.title == "" {
		b.title = title
	}
	top := b.Height
	b.Rect(Margin, top, ContentWidth, 8, LightBlue)
	b.Text(Margin+2, top+5.8, HeadingStyle, title)
	b.Height = top + headingGap
	return b
}

// Line adds a line of text below the current content.
func (b *Block) Line(style Style, s string) *Block {
	b.startRow()
	return b.Text(Margin+2, b.Height+lineHeight-2, style, s)
}

// Pair adds a "label: value" line with the value in a second column.
func (b *Block) Pair(label, value string) *Block {
	b.startRow()
	y := b.Height + lineHeight - 2
	b.Text(Margin+2, y, Style{Size: 10, Bold: true, Color: Black}, label)
	return b.Text(Margin+50, y, BodyStyle, value)
}

func (b *Block) startRow() {
	b.rows = append(b.rows, row{start: len(b.Ops), top: b.Height})
}

// spans returns the op index ranges and block-relative extents of each row.
// Ops added before the first row belong to a leading row at the top.
func (b *Block) spans() []span {
	rows := b.rows
	if len(rows) == 0 || rows[0].start != 0 {
		rows = append([]row{{start: 0, top: 0}}, rows...)
	}
	out := make([]span, 0, len(rows))
	for i, r := range rows {
		s := span{start: r.start, end: len(b.Ops), top: r.top, bottom: b.Height}
		if i+1 < len(rows) {
			s.end = rows[i+1].start
			s.bottom = rows[i+1].top
		}
		out = append(out, s)
	}
	return out
}

type span struct {
	start, end  int
	top, bottom float64
}
