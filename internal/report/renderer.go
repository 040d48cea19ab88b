package report

// Renderer turns drawing instructions into document bytes.
// Coordinates are absolute page coordinates in millimetres.
type Renderer interface {
	FillRect(x, y, w, h float64, fill Color)
	Text(x, y float64, style Style, s string)
	NewPage() error
	// Flush is called after every section; streaming renderers write the
	// section's bytes to the underlying writer here.
	Flush() error
	Close() error
	ContentType() string
}
