package report

const (
	sectionGap = 6.0
	pageBottom = PageHeight - Margin
)

// Document owns the page cursor. It is the only component that knows where
// on the page a block lands.
type Document struct {
	r        Renderer
	y        float64
	pages    int
	sections []string
	closed   bool
}

// NewDocument returns a Document writing to r.
func NewDocument(r Renderer) *Document {
	return &Document{r: r}
}

// Emit places b below the previous block, starting a new page when b does
// not fit, and flushes the renderer. A block taller than a page is split
// between rows and its heading is repeated on each continuation page.
func (d *Document) Emit(b *Block) error {
	if d.pages == 0 || (d.y+b.Height > pageBottom && d.y > Margin) {
		if err := d.newPage(); err != nil {
			return err
		}
	}

	if d.y+b.Height <= pageBottom {
		d.place(b.Ops, d.y)
		d.y += b.Height
	} else if err := d.emitRows(b); err != nil {
		return err
	}
	d.y += sectionGap
	d.sections = append(d.sections, b.Name)

	return d.r.Flush()
}

func (d *Document) emitRows(b *Block) error {
	pageTop := d.y
	for _, s := range b.spans() {
		height := s.bottom - s.top
		if d.y+height > pageBottom && d.y > pageTop {
			if err := d.newPage(); err != nil {
				return err
			}
			if b.title != "" {
				cont := NewBlock(b.Name).Heading(b.title + " (cont.)")
				d.place(cont.Ops, d.y)
				d.y += cont.Height
			}
			pageTop = d.y
		}
		d.place(b.Ops[s.start:s.end], d.y-s.top)
		d.y += height
	}
	return nil
}

func (d *Document) place(ops []Instruction, offset float64) {
	for _, op := range ops {
		switch op.Kind {
		case OpRect:
			d.r.FillRect(op.X, offset+op.Y, op.W, op.H, op.Fill)
		case OpText:
			d.r.Text(op.X, offset+op.Y, op.Style, op.Text)
		}
	}
}

// Close finishes the document. It is safe to call more than once.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.pages == 0 {
		if err := d.newPage(); err != nil {
			return err
		}
	}
	return d.r.Close()
}

// Sections returns the names of the emitted blocks in order.
func (d *Document) Sections() []string {
	return append([]string(nil), d.sections...)
}

// Pages returns the number of pages started so far.
func (d *Document) Pages() int {
	return d.pages
}

func (d *Document) newPage() error {
	if err := d.r.NewPage(); err != nil {
		return err
	}
	d.pages++
	d.y = Margin
	return nil
}
