// Package scroll implements the marquee renderer: a cursor over a text
// buffer that is advanced one column per shift period and redrawn onto a
// column display, looping forever.
package scroll

import (
	"time"

	"stock-ticker/internal/clock"
	"stock-ticker/internal/display"

	"go.uber.org/zap"
)

// Cursor is the scroll position within the current text.
type Cursor struct {
	// Index of the character at the left edge of the view.
	Index int
	// Offset of that character in columns; it only ever decreases until the
	// character has left the view.
	Offset int
	// PretendPositiveOffset draws the first pass with the text fully visible
	// from the left edge. It is cleared once Offset reaches zero.
	PretendPositiveOffset bool
}

type Engine struct {
	display display.Display
	clock   clock.Clock
	logger  *zap.Logger

	text      []byte
	cursor    Cursor
	nextShift clock.Tick
	period    time.Duration
	spacing   int
}

// NewEngine creates a scroller drawing on d. spacing is the number of blank
// columns between glyphs.
func NewEngine(d display.Display, c clock.Clock, period time.Duration, spacing int, logger *zap.Logger) *Engine {
	return &Engine{
		display:   d,
		clock:     c,
		logger:    logger,
		period:    period,
		spacing:   max(spacing, 0),
		nextShift: c.Now(),
	}
}

// SetText replaces the scrolled text and rewinds the cursor. When
// startFullyVisible is set the first frame shows the text from the left edge
// instead of sliding it in.
func (e *Engine) SetText(text string, startFullyVisible bool) {
	e.text = []byte(text)
	e.cursor = Cursor{PretendPositiveOffset: startFullyVisible}
	e.nextShift = e.clock.Now()

	e.logger.Debug("scroll text set",
		zap.Int("length", len(e.text)),
		zap.Bool("start_fully_visible", startFullyVisible))
}

// Reset rewinds the cursor to the start of the text. The text and the
// start-fully-visible flag are left alone.
func (e *Engine) Reset() {
	e.cursor.Index = 0
	e.cursor.Offset = 0
}

// SetPeriod changes the time between column shifts.
func (e *Engine) SetPeriod(period time.Duration) {
	e.period = period
}

// SetSpacing changes the blank columns between glyphs. Negative values are
// treated as zero. The cursor is rewound since column positions change.
func (e *Engine) SetSpacing(spacing int) {
	e.spacing = max(spacing, 0)
	e.Reset()
}

func (e *Engine) Text() string {
	return string(e.text)
}

func (e *Engine) Cursor() Cursor {
	return e.cursor
}

// Update shifts the text one column if the shift deadline has passed. It is
// cheap when nothing is due and may be called as often as the loop allows.
func (e *Engine) Update() {
	if e.display == nil || len(e.text) == 0 {
		return
	}
	now := e.clock.Now()
	if !clock.Due(now, e.nextShift) {
		return
	}
	e.nextShift = clock.After(e.nextShift, e.period)
	if clock.Due(now, e.nextShift) {
		// More than a whole period behind, usually after a blocking quote
		// request. Resync instead of replaying the missed shifts.
		e.nextShift = clock.After(now, e.period)
	}

	columns := e.display.ColumnCount()
	e.display.Clear()
	col := e.cursor.Offset
	if e.cursor.PretendPositiveOffset {
		col = 1
	}
	for i := e.cursor.Index; i < len(e.text) && col < columns; i++ {
		col += e.display.SetChar(columns-col, e.text[i]) + e.spacing
	}
	e.display.Flush()

	// The offset is measured from the left, so moving the text left means
	// decrementing it.
	e.cursor.Offset--
	if e.cursor.PretendPositiveOffset && e.cursor.Offset <= 0 {
		e.cursor.PretendPositiveOffset = false
	}
	if e.cursor.Offset <= -e.CharWidth(e.text[e.cursor.Index]) {
		e.cursor.Offset = 0
		e.cursor.Index++
	}
	if e.cursor.Index >= len(e.text) {
		e.Reset()
	}
}

// TextWidth is the number of columns text occupies, spacing included.
func (e *Engine) TextWidth(text string) int {
	width := 0
	for i := 0; i < len(text); i++ {
		width += e.CharWidth(text[i])
	}
	return width
}

// CharWidth is the advance of a single character, spacing included.
func (e *Engine) CharWidth(c byte) int {
	if e.display == nil {
		return display.GlyphWidth(c) + e.spacing
	}
	return e.display.CharWidth(c) + e.spacing
}
