package display

import (
	"strings"
	"sync"
)

// Matrix is an in-memory chain of 8x8 modules. It implements Display and is
// the frame buffer behind every concrete panel.
type Matrix struct {
	mu      sync.RWMutex
	columns []byte
	flushes int
}

// NewMatrix creates a chain of modules, 8 columns each.
func NewMatrix(modules int) *Matrix {
	if modules < 1 {
		modules = 1
	}
	return &Matrix{columns: make([]byte, modules*ModuleColumns)}
}

func (m *Matrix) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.columns)
}

func (m *Matrix) ColumnCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.columns)
}

// Resize changes the chain length and blanks the frame.
func (m *Matrix) Resize(modules int) {
	if modules < 1 {
		modules = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.columns = make([]byte, modules*ModuleColumns)
}

func (m *Matrix) SetChar(rightCol int, c byte) int {
	glyph := Glyph(c)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, bits := range glyph {
		col := rightCol - i
		if col >= 0 && col < len(m.columns) {
			m.columns[col] = bits
		}
	}
	return len(glyph)
}

func (m *Matrix) CharWidth(c byte) int {
	return GlyphWidth(c)
}

func (m *Matrix) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
}

// Flushes is the number of frames pushed so far.
func (m *Matrix) Flushes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flushes
}

// Frame returns the column bitmaps ordered left to right as seen on the panel.
func (m *Matrix) Frame() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	frame := make([]byte, len(m.columns))
	for i, bits := range m.columns {
		frame[len(m.columns)-1-i] = bits
	}
	return frame
}

// Rows renders the current frame as text, one string per pixel row, using
// on for lit pixels and off for dark ones.
func (m *Matrix) Rows(on, off string) []string {
	frame := m.Frame()
	rows := make([]string, Rows)
	for y := range rows {
		var b strings.Builder
		for _, bits := range frame {
			if bits&(1<<y) != 0 {
				b.WriteString(on)
			} else {
				b.WriteString(off)
			}
		}
		rows[y] = b.String()
	}
	return rows
}
