package scroll

import (
	"math"
	"testing"
	"time"

	"stock-ticker/internal/clock"
	"stock-ticker/internal/display"

	"go.uber.org/zap"
)

type placement struct {
	col int
	c   byte
}

// recordingDisplay draws nothing and gives every glyph the same width.
type recordingDisplay struct {
	columns int
	width   int
	clears  int
	flushes int
	drawn   []placement
}

func (d *recordingDisplay) Clear() {
	d.clears++
	d.drawn = d.drawn[:0]
}

func (d *recordingDisplay) ColumnCount() int { return d.columns }

func (d *recordingDisplay) SetChar(col int, c byte) int {
	d.drawn = append(d.drawn, placement{col, c})
	return d.width
}

func (d *recordingDisplay) CharWidth(c byte) int { return d.width }

func (d *recordingDisplay) Flush() { d.flushes++ }

const period = 50 * time.Millisecond

func setup(columns, width, spacing int) (*Engine, *recordingDisplay, *clock.Fake) {
	d := &recordingDisplay{columns: columns, width: width}
	c := clock.NewFake(1000)
	return NewEngine(d, c, period, spacing, zap.NewNop()), d, c
}

func TestEngine_TextWidth(t *testing.T) {
	e, _, _ := setup(32, 3, 1)

	if got := e.TextWidth("AAPL"); got != 16 {
		t.Errorf("TextWidth(AAPL) = %d, expected 16", got)
	}
	if got := e.TextWidth(""); got != 0 {
		t.Errorf("TextWidth(\"\") = %d, expected 0", got)
	}
	if got := e.CharWidth('$'); got != 4 {
		t.Errorf("CharWidth($) = %d, expected 4", got)
	}
}

func TestEngine_TextWidthUsesGlyphMetrics(t *testing.T) {
	m := display.NewMatrix(4)
	e := NewEngine(m, clock.NewFake(0), period, 1, zap.NewNop())

	text := "MSFT: $1.00"
	expected := 0
	for i := 0; i < len(text); i++ {
		expected += display.GlyphWidth(text[i]) + 1
	}
	if got := e.TextWidth(text); got != expected {
		t.Errorf("TextWidth() = %d, expected %d", got, expected)
	}
}

func TestEngine_EmptyTextIsNoop(t *testing.T) {
	e, d, c := setup(8, 3, 1)

	for i := 0; i < 5; i++ {
		e.Update()
		c.Advance(period)
	}
	if d.clears != 0 || d.flushes != 0 {
		t.Errorf("expected no rendering for empty text, got %d clears %d flushes", d.clears, d.flushes)
	}

	e.SetText("A", false)
	e.SetText("", false)
	e.Update()
	if d.clears != 0 {
		t.Error("expected rendering to stop after text was emptied")
	}
}

func TestEngine_NilDisplayIsNoop(t *testing.T) {
	e := NewEngine(nil, clock.NewFake(0), period, 1, zap.NewNop())
	e.SetText("AAPL", false)
	e.Update()

	if e.Cursor() != (Cursor{}) {
		t.Errorf("expected untouched cursor, got %+v", e.Cursor())
	}
}

func TestEngine_NotDueIsNoop(t *testing.T) {
	e, d, c := setup(8, 3, 1)
	e.SetText("AB", false)

	e.Update()
	if d.flushes != 1 {
		t.Fatalf("expected first update to render, got %d flushes", d.flushes)
	}

	c.Advance(period - time.Millisecond)
	e.Update()
	e.Update()
	if d.flushes != 1 {
		t.Errorf("expected no render before the shift period, got %d flushes", d.flushes)
	}

	c.Advance(time.Millisecond)
	e.Update()
	if d.flushes != 2 {
		t.Errorf("expected render once due, got %d flushes", d.flushes)
	}
}

func TestEngine_RightAnchoredPlacement(t *testing.T) {
	e, d, c := setup(8, 3, 1)
	e.SetText("ABC", false)

	e.Update()
	expected := []placement{{8, 'A'}, {4, 'B'}}
	assertPlacements(t, d.drawn, expected)

	c.Advance(period)
	e.Update()
	expected = []placement{{9, 'A'}, {5, 'B'}, {1, 'C'}}
	assertPlacements(t, d.drawn, expected)
}

func TestEngine_PretendPositiveOffset(t *testing.T) {
	e, d, c := setup(8, 3, 1)
	e.SetText("ABC", true)

	if !e.Cursor().PretendPositiveOffset {
		t.Fatal("expected pretend flag after SetText(..., true)")
	}

	e.Update()
	assertPlacements(t, d.drawn, []placement{{7, 'A'}, {3, 'B'}})
	if e.Cursor().PretendPositiveOffset {
		t.Error("expected pretend flag to clear once the offset reaches zero")
	}

	c.Advance(period)
	e.Update()
	assertPlacements(t, d.drawn, []placement{{9, 'A'}, {5, 'B'}, {1, 'C'}})

	e.Reset()
	if e.Cursor().PretendPositiveOffset {
		t.Error("Reset must not re-enter the pretend mode")
	}
}

func TestEngine_LoopsForever(t *testing.T) {
	e, _, c := setup(8, 3, 1)
	text := "AB"
	e.SetText(text, false)

	// Each character needs width+spacing shifts to leave the view.
	perChar := 4
	lastIndex := 0
	wraps := 0
	for step := 1; step <= 3*perChar*len(text); step++ {
		e.Update()
		c.Advance(period)

		cur := e.Cursor()
		if cur.Index < 0 || cur.Index > len(text) {
			t.Fatalf("step %d: index %d out of range", step, cur.Index)
		}
		if cur.Index < lastIndex {
			if cur.Index != 0 {
				t.Fatalf("step %d: index went backwards to %d", step, cur.Index)
			}
			wraps++
		}
		if step%(perChar*len(text)) == 0 && cur != (Cursor{}) {
			t.Fatalf("step %d: expected cursor back at start, got %+v", step, cur)
		}
		lastIndex = cur.Index
	}
	if wraps != 3 {
		t.Errorf("expected 3 wraps, got %d", wraps)
	}
}

func TestEngine_NarrowTextScrollsFullyOff(t *testing.T) {
	e, _, c := setup(32, 3, 1)
	e.SetText("A", false)

	for i := 0; i < 3; i++ {
		e.Update()
		c.Advance(period)
		if e.Cursor().Offset != -(i + 1) {
			t.Fatalf("update %d: expected offset %d, got %d", i, -(i + 1), e.Cursor().Offset)
		}
	}
	e.Update()
	if e.Cursor() != (Cursor{}) {
		t.Errorf("expected loop after the glyph left the view, got %+v", e.Cursor())
	}
}

func TestEngine_DeadlineSurvivesRollover(t *testing.T) {
	d := &recordingDisplay{columns: 8, width: 3}
	c := clock.NewFake(math.MaxUint32 - 20)
	e := NewEngine(d, c, period, 1, zap.NewNop())
	e.SetText("AB", false)

	for i := 0; i < 4; i++ {
		e.Update()
		c.Advance(period)
	}
	if d.flushes != 4 {
		t.Errorf("expected 4 shifts across the rollover, got %d", d.flushes)
	}
}

func TestEngine_ResyncsAfterStall(t *testing.T) {
	e, d, c := setup(8, 3, 1)
	e.SetText("ABCDEF", false)
	e.Update()

	c.Advance(10 * period)
	e.Update()
	e.Update()
	if d.flushes != 2 {
		t.Errorf("expected a single catch-up shift after a stall, got %d flushes", d.flushes)
	}
}

func assertPlacements(t *testing.T, got, expected []placement) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("expected placements %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected placements %v, got %v", expected, got)
		}
	}
}

func TestEngine_SpacingClampedAndChangeable(t *testing.T) {
	e, _, _ := setup(32, 3, -2)
	if got := e.TextWidth("AB"); got != 6 {
		t.Errorf("negative spacing: TextWidth(AB) = %d, expected 6", got)
	}

	e.SetText("ABCDEF", false)
	e.Update()
	e.Update()
	e.SetSpacing(2)
	if cur := e.Cursor(); cur.Index != 0 || cur.Offset != 0 {
		t.Errorf("expected cursor rewound after spacing change, got %+v", cur)
	}
	if got := e.TextWidth("AB"); got != 10 {
		t.Errorf("TextWidth(AB) = %d, expected 10", got)
	}

	e.SetSpacing(-1)
	if got := e.TextWidth("AB"); got != 6 {
		t.Errorf("TextWidth(AB) = %d after negative spacing, expected 6", got)
	}
}
