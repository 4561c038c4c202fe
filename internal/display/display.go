// Package display holds the column-addressed LED matrix abstraction the
// scroller draws on, together with its glyph metrics.
//
// Column numbering follows the MAX7219 chain convention: column 0 is the
// rightmost column and indices grow to the left. A glyph drawn at column c
// occupies columns c, c-1, ... c-width+1; anything outside the panel is
// clipped.
package display

// Display is the render capability consumed by the scroll engine.
type Display interface {
	// Clear blanks the frame buffer without pushing it to the panel.
	Clear()
	// ColumnCount is the number of horizontal columns of the panel.
	ColumnCount() int
	// SetChar draws c with its first column at rightCol and returns the
	// glyph width in columns.
	SetChar(rightCol int, c byte) int
	// CharWidth returns the glyph width of c without drawing.
	CharWidth(c byte) int
	// Flush pushes the frame buffer to the panel.
	Flush()
}

// Rows is the height of one module.
const Rows = 8

// ModuleColumns is the width of one 8x8 module.
const ModuleColumns = 8
