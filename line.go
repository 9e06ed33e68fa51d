package vtscreen

import (
	"strings"
	"unicode/utf8"
)

// TrivialBuffer is the compact representation of a blank or uniformly styled
// row: one shared pen for the text, one fill pen for the blank remainder, and
// a contiguous UTF-8 text span starting at column 0. Each rune in Text
// occupies exactly one column; anything wider forces inflation.
type TrivialBuffer struct {
	Text        []byte
	UsedColumns int
	Attrs       GraphicsAttributes
	FillAttrs   GraphicsAttributes
}

// Line is one grid row in either trivial or inflated form. A line starts
// trivial; the first write requiring distinct per-cell state inflates it to a
// per-cell array, and it never re-trivializes on its own (only a full Reset
// returns it to trivial form). Every read API answers identically for both
// forms.
type Line struct {
	columns int
	trivial *TrivialBuffer // non-nil iff cells is nil
	cells   []Cell
	wrapped bool
}

// NewLine creates a trivial blank line whose fill carries the given pen.
func NewLine(columns int, attrs GraphicsAttributes) Line {
	return Line{
		columns: columns,
		trivial: &TrivialBuffer{Attrs: attrs, FillAttrs: attrs},
	}
}

// Columns returns the line width in cells.
func (l *Line) Columns() int {
	return l.columns
}

// IsTrivial returns true while the line still uses the compact representation.
func (l *Line) IsTrivial() bool {
	return l.trivial != nil
}

// Trivial returns the compact buffer, or nil if the line is inflated.
func (l *Line) Trivial() *TrivialBuffer {
	return l.trivial
}

// Wrapped returns true if the line is a soft-wrap continuation of the row
// above it rather than the start of a logical line. Reflow resizing chains
// wrapped rows back into logical lines before re-breaking them.
func (l *Line) Wrapped() bool {
	return l.wrapped
}

// SetWrapped marks the line as a soft-wrap continuation.
func (l *Line) SetWrapped(wrapped bool) {
	l.wrapped = wrapped
}

// Reset returns the line to a trivial blank filled with the given pen.
func (l *Line) Reset(attrs GraphicsAttributes) {
	l.trivial = &TrivialBuffer{Attrs: attrs, FillAttrs: attrs}
	l.cells = nil
	l.wrapped = false
}

// Inflate converts the line to per-cell form. Call sites that mutate
// individual cells go through UseCells so the check happens exactly once.
func (l *Line) Inflate() {
	if l.trivial == nil {
		return
	}

	tb := l.trivial
	cells := make([]Cell, l.columns)
	col := 0
	for _, r := range string(tb.Text) {
		if col >= l.columns {
			break
		}
		cells[col] = NewCellWithAttrs(tb.Attrs)
		cells[col].Char = r
		col++
	}
	for ; col < l.columns; col++ {
		cells[col] = NewCellWithAttrs(tb.FillAttrs)
	}

	l.cells = cells
	l.trivial = nil
}

// UseCells returns the mutable per-cell array, inflating first if needed.
func (l *Line) UseCells() []Cell {
	l.Inflate()
	return l.cells
}

// UseCellAt returns a mutable pointer to the cell at col, inflating the line.
// The column is clamped to the line bounds.
func (l *Line) UseCellAt(col int) *Cell {
	l.Inflate()
	if col < 0 {
		col = 0
	}
	if col >= l.columns {
		col = l.columns - 1
	}
	return &l.cells[col]
}

// CellAt returns the cell value at col without mutating the representation.
// Out-of-range columns return a default blank cell.
func (l *Line) CellAt(col int) Cell {
	if col < 0 || col >= l.columns {
		return NewCell()
	}
	if l.trivial == nil {
		return l.cells[col]
	}

	tb := l.trivial
	if col >= tb.UsedColumns {
		return NewCellWithAttrs(tb.FillAttrs)
	}
	i := 0
	for _, r := range string(tb.Text) {
		if i == col {
			c := NewCellWithAttrs(tb.Attrs)
			c.Char = r
			return c
		}
		i++
	}
	return NewCellWithAttrs(tb.FillAttrs)
}

// EachCell invokes fn for every column from 0 to Columns()-1 without
// inflating a trivial line.
func (l *Line) EachCell(fn func(col int, cell Cell)) {
	if l.trivial == nil {
		for col := range l.cells {
			fn(col, l.cells[col])
		}
		return
	}

	tb := l.trivial
	col := 0
	for _, r := range string(tb.Text) {
		if col >= l.columns {
			break
		}
		c := NewCellWithAttrs(tb.Attrs)
		c.Char = r
		fn(col, c)
		col++
	}
	blank := NewCellWithAttrs(tb.FillAttrs)
	for ; col < l.columns; col++ {
		fn(col, blank)
	}
}

// CanAppend reports whether text can extend the trivial buffer in place:
// the line must still be trivial, the write must start exactly at the end of
// the existing text, the pen must match (or the line must be empty), and
// every rune must be a single-column printable. This is the contiguity test
// behind the bulk write fast path.
func (l *Line) CanAppend(startCol int, text string, attrs GraphicsAttributes) bool {
	if l.trivial == nil {
		return false
	}
	tb := l.trivial
	if startCol != tb.UsedColumns {
		return false
	}
	if tb.UsedColumns > 0 && !attrs.SameStyle(tb.Attrs) {
		return false
	}

	cols := 0
	for _, r := range text {
		if r < ' ' || runeWidth(r) != 1 {
			return false
		}
		cols++
	}
	return startCol+cols <= l.columns
}

// AppendText extends the trivial text span in place and returns the number
// of columns consumed. Callers must have checked CanAppend.
func (l *Line) AppendText(text string, attrs GraphicsAttributes) int {
	tb := l.trivial
	if tb.UsedColumns == 0 {
		tb.Attrs = attrs
	}
	tb.Text = append(tb.Text, text...)
	cols := utf8.RuneCountInString(text)
	tb.UsedColumns += cols
	return cols
}

// UsedColumns returns the index one past the last non-blank cell.
func (l *Line) UsedColumns() int {
	if l.trivial != nil {
		return l.trivial.UsedColumns
	}
	for col := l.columns - 1; col >= 0; col-- {
		if !l.cells[col].IsBlank() {
			return col + 1
		}
	}
	return 0
}

// IsBlank returns true if every cell in the line renders as empty space.
func (l *Line) IsBlank() bool {
	if l.trivial != nil {
		for _, b := range l.trivial.Text {
			if b != ' ' {
				return false
			}
		}
		return true
	}
	for col := range l.cells {
		if !l.cells[col].IsBlank() {
			return false
		}
	}
	return true
}

// Text returns the full line text with blanks for empty cells, one rune per
// column (wide-char spacers are skipped).
func (l *Line) Text() string {
	var sb strings.Builder
	l.EachCell(func(col int, cell Cell) {
		if cell.IsWideSpacer() {
			return
		}
		if cell.Char == 0 {
			sb.WriteRune(' ')
		} else {
			sb.WriteRune(cell.Char)
			for _, cr := range cell.Combining {
				sb.WriteRune(cr)
			}
		}
	})
	return sb.String()
}

// TrimmedText returns the line text with trailing blanks removed.
func (l *Line) TrimmedText() string {
	if l.trivial != nil {
		return strings.TrimRight(string(l.trivial.Text), " ")
	}
	return strings.TrimRight(l.Text(), " ")
}

// HyperlinkAt returns the hyperlink id at the given column, answering from
// the cached trivial id without inflating.
func (l *Line) HyperlinkAt(col int) HyperlinkID {
	if col < 0 || col >= l.columns {
		return 0
	}
	if l.trivial != nil {
		if col < l.trivial.UsedColumns {
			return l.trivial.Attrs.Hyperlink
		}
		return l.trivial.FillAttrs.Hyperlink
	}
	return l.cells[col].Hyperlink
}

// ContainsProtected returns true if any cell in [begin, end] carries the
// DECSCA guard. Trivial lines answer from their shared pens.
func (l *Line) ContainsProtected(begin, end int) bool {
	if begin < 0 {
		begin = 0
	}
	if end >= l.columns {
		end = l.columns - 1
	}
	if l.trivial != nil {
		tb := l.trivial
		if begin < tb.UsedColumns && tb.Attrs.HasFlag(CellFlagProtected) {
			return true
		}
		return end >= tb.UsedColumns && tb.FillAttrs.HasFlag(CellFlagProtected)
	}
	for col := begin; col <= end; col++ {
		if l.cells[col].IsProtected() {
			return true
		}
	}
	return false
}

// resize adjusts the line width. Shrinking truncates from the right; growing
// blank-fills with the given pen. Trivial lines stay trivial.
func (l *Line) resize(columns int, attrs GraphicsAttributes) {
	if columns == l.columns {
		return
	}

	if l.trivial != nil {
		tb := l.trivial
		if tb.UsedColumns > columns {
			// Cut the text back to the new width.
			var text []byte
			cols := 0
			for i := range string(tb.Text) {
				if cols == columns {
					text = tb.Text[:i]
					break
				}
				cols++
			}
			if text == nil {
				text = tb.Text
			}
			tb.Text = text
			tb.UsedColumns = columns
		}
		l.columns = columns
		return
	}

	if columns < l.columns {
		l.cells = l.cells[:columns]
	} else {
		for col := l.columns; col < columns; col++ {
			l.cells = append(l.cells, NewCellWithAttrs(attrs))
		}
	}
	l.columns = columns
}
