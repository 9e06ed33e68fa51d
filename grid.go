package vtscreen

// MaxHistoryUnlimited disables the scrollback cap.
const MaxHistoryUnlimited = -1

// PageSize is the visible page geometry in cells.
type PageSize struct {
	Lines   int
	Columns int
}

// Margin is the active scrolling region, all bounds inclusive and in page
// coordinates. The default margin covers the whole page.
type Margin struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// FullMargin returns the margin covering the entire page.
func FullMargin(size PageSize) Margin {
	return Margin{Top: 0, Bottom: size.Lines - 1, Left: 0, Right: size.Columns - 1}
}

// Contains returns true if pos lies inside the margin.
func (m Margin) Contains(pos CellLocation) bool {
	return pos.Line >= m.Top && pos.Line <= m.Bottom &&
		pos.Column >= m.Left && pos.Column <= m.Right
}

// Lines returns the margin height in rows.
func (m Margin) Lines() int {
	return m.Bottom - m.Top + 1
}

// Columns returns the margin width in cells.
func (m Margin) Columns() int {
	return m.Right - m.Left + 1
}

// Grid is the single line store backing a screen: scrollback history at the
// front of the slice, the fixed-size visible page at the back. Lines scroll
// off the top of a full-page margin by growing the slice, which implicitly
// moves the oldest page row into history; the cap evicts from the front in
// FIFO order.
type Grid struct {
	lines      []Line
	pageSize   PageSize
	maxHistory int
	reflow     bool
}

// NewGrid creates a grid with a blank page and empty history. maxHistory is
// the scrollback cap in lines, 0 for no history, MaxHistoryUnlimited for no
// cap. reflow selects whether column resizes re-wrap logical lines.
func NewGrid(pageSize PageSize, maxHistory int, reflow bool) *Grid {
	g := &Grid{
		pageSize:   pageSize,
		maxHistory: maxHistory,
		reflow:     reflow,
	}
	g.lines = make([]Line, 0, pageSize.Lines)
	for i := 0; i < pageSize.Lines; i++ {
		g.lines = append(g.lines, NewLine(pageSize.Columns, NewGraphicsAttributes()))
	}
	return g
}

// PageSize returns the visible page geometry.
func (g *Grid) PageSize() PageSize {
	return g.pageSize
}

// HistoryLineCount returns the number of lines in scrollback.
func (g *Grid) HistoryLineCount() int {
	return len(g.lines) - g.pageSize.Lines
}

// MaxHistory returns the scrollback cap.
func (g *Grid) MaxHistory() int {
	return g.maxHistory
}

// SetMaxHistory changes the scrollback cap, evicting immediately if the
// existing history exceeds it.
func (g *Grid) SetMaxHistory(maxHistory int) {
	g.maxHistory = maxHistory
	g.evictHistory()
}

// Reflow returns whether column resizes re-wrap logical lines.
func (g *Grid) Reflow() bool {
	return g.reflow
}

// LineAt returns the line at the given page row. Negative rows address
// history: -1 is the most recent scrollback line. The row is clamped to the
// available range.
func (g *Grid) LineAt(row int) *Line {
	i := g.HistoryLineCount() + row
	if i < 0 {
		i = 0
	}
	if i >= len(g.lines) {
		i = len(g.lines) - 1
	}
	return &g.lines[i]
}

// CellAt returns the cell at pos without inflating its line.
func (g *Grid) CellAt(pos CellLocation) Cell {
	return g.LineAt(pos.Line).CellAt(pos.Column)
}

// UseCellAt returns a mutable pointer to the cell at pos, inflating its line.
func (g *Grid) UseCellAt(pos CellLocation) *Cell {
	return g.LineAt(pos.Line).UseCellAt(pos.Column)
}

// ClearHistory drops all scrollback lines.
func (g *Grid) ClearHistory() {
	h := g.HistoryLineCount()
	if h == 0 {
		return
	}
	g.lines = g.lines[:copy(g.lines, g.lines[h:])]
}

// Reset blank-fills the page and drops history.
func (g *Grid) Reset() {
	g.lines = g.lines[:0]
	for i := 0; i < g.pageSize.Lines; i++ {
		g.lines = append(g.lines, NewLine(g.pageSize.Columns, NewGraphicsAttributes()))
	}
}

func (g *Grid) evictHistory() {
	if g.maxHistory < 0 {
		return
	}
	excess := g.HistoryLineCount() - g.maxHistory
	if excess <= 0 {
		return
	}
	g.lines = g.lines[:copy(g.lines, g.lines[excess:])]
}

// ScrollUp moves the margin contents up by n rows, blank-filling the bottom
// with the given pen. When the margin covers the entire page the rows leaving
// the top enter scrollback; any narrower margin rotates in place and feeds
// nothing to history.
func (g *Grid) ScrollUp(n int, attrs GraphicsAttributes, margin Margin) {
	if n <= 0 {
		return
	}
	if n > margin.Lines() {
		n = margin.Lines()
	}

	full := margin == FullMargin(g.pageSize)
	if full {
		for i := 0; i < n; i++ {
			g.lines = append(g.lines, NewLine(g.pageSize.Columns, attrs))
		}
		g.evictHistory()
		return
	}

	if margin.Left == 0 && margin.Right == g.pageSize.Columns-1 {
		for row := margin.Top; row+n <= margin.Bottom; row++ {
			*g.LineAt(row) = *g.LineAt(row + n)
		}
		for row := margin.Bottom - n + 1; row <= margin.Bottom; row++ {
			g.LineAt(row).Reset(attrs)
		}
		return
	}

	// Left/right margins active: only the margin span of each row moves.
	for row := margin.Top; row <= margin.Bottom; row++ {
		dst := g.LineAt(row).UseCells()
		if row+n <= margin.Bottom {
			src := g.LineAt(row + n).UseCells()
			copy(dst[margin.Left:margin.Right+1], src[margin.Left:margin.Right+1])
		} else {
			for col := margin.Left; col <= margin.Right; col++ {
				dst[col].Reset(attrs)
			}
		}
	}
}

// ScrollDown moves the margin contents down by n rows, blank-filling the top
// with the given pen. Scrolling down never touches history.
func (g *Grid) ScrollDown(n int, attrs GraphicsAttributes, margin Margin) {
	if n <= 0 {
		return
	}
	if n > margin.Lines() {
		n = margin.Lines()
	}

	if margin.Left == 0 && margin.Right == g.pageSize.Columns-1 {
		for row := margin.Bottom; row-n >= margin.Top; row-- {
			*g.LineAt(row) = *g.LineAt(row - n)
		}
		for row := margin.Top; row < margin.Top+n; row++ {
			g.LineAt(row).Reset(attrs)
		}
		return
	}

	for row := margin.Bottom; row >= margin.Top; row-- {
		dst := g.LineAt(row).UseCells()
		if row-n >= margin.Top {
			src := g.LineAt(row - n).UseCells()
			copy(dst[margin.Left:margin.Right+1], src[margin.Left:margin.Right+1])
		} else {
			for col := margin.Left; col <= margin.Right; col++ {
				dst[col].Reset(attrs)
			}
		}
	}
}

// InsertLines opens n blank rows at the given page row, pushing the rows
// below down and out of the bottom of the margin.
func (g *Grid) InsertLines(row, n int, attrs GraphicsAttributes, margin Margin) {
	if row < margin.Top || row > margin.Bottom {
		return
	}
	sub := margin
	sub.Top = row
	g.ScrollDown(n, attrs, sub)
}

// DeleteLines removes n rows at the given page row, pulling the rows below up
// and blank-filling the bottom of the margin.
func (g *Grid) DeleteLines(row, n int, attrs GraphicsAttributes, margin Margin) {
	if row < margin.Top || row > margin.Bottom {
		return
	}
	sub := margin
	sub.Top = row
	g.ScrollUp(n, attrs, sub)
}

// RenderPage invokes fn for every visible cell, top-left to bottom-right.
// scrollOffset shifts the view into history: offset k shows history lines
// starting k rows back. The offset is clamped to the available history.
func (g *Grid) RenderPage(scrollOffset int, fn func(pos CellLocation, cell Cell)) {
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if scrollOffset > g.HistoryLineCount() {
		scrollOffset = g.HistoryLineCount()
	}
	for row := 0; row < g.pageSize.Lines; row++ {
		g.LineAt(row - scrollOffset).EachCell(func(col int, cell Cell) {
			fn(CellLocation{Line: row, Column: col}, cell)
		})
	}
}

// Resize changes the page geometry, returning the cursor translated to the
// new page. Shrinking vertically pushes top rows into history and growing
// pulls them back out; column changes either truncate/pad each line or, with
// reflow enabled, re-break logical lines at the new width.
func (g *Grid) Resize(newSize PageSize, cursor CellLocation, wrapPending bool) CellLocation {
	if newSize == g.pageSize {
		return cursor
	}

	if newSize.Columns != g.pageSize.Columns {
		if g.reflow {
			cursor = g.reflowColumns(newSize.Columns, cursor, wrapPending)
		} else {
			attrs := NewGraphicsAttributes()
			for i := range g.lines {
				g.lines[i].resize(newSize.Columns, attrs)
			}
			if cursor.Column >= newSize.Columns {
				cursor.Column = newSize.Columns - 1
			}
		}
		g.pageSize.Columns = newSize.Columns
	}

	if newSize.Lines != g.pageSize.Lines {
		cursor = g.resizeLines(newSize.Lines, cursor)
		g.pageSize.Lines = newSize.Lines
	}

	return cursor
}

func (g *Grid) resizeLines(newLines int, cursor CellLocation) CellLocation {
	delta := newLines - g.pageSize.Lines
	if delta > 0 {
		// Restore rows from history first, then blank-fill at the bottom.
		fromHistory := delta
		if fromHistory > g.HistoryLineCount() {
			fromHistory = g.HistoryLineCount()
		}
		cursor.Line += fromHistory
		for i := fromHistory; i < delta; i++ {
			g.lines = append(g.lines, NewLine(g.pageSize.Columns, NewGraphicsAttributes()))
		}
		return cursor
	}

	// Shrinking: drop blank rows below the cursor outright, then push the
	// remainder into history from the top.
	shrink := -delta
	dropped := 0
	for dropped < shrink {
		last := &g.lines[len(g.lines)-1]
		rowOnPage := g.pageSize.Lines - 1 - dropped
		if rowOnPage <= cursor.Line || !last.IsBlank() {
			break
		}
		g.lines = g.lines[:len(g.lines)-1]
		dropped++
	}
	toHistory := shrink - dropped
	cursor.Line -= toHistory
	if cursor.Line < 0 {
		cursor.Line = 0
	}
	g.evictHistoryWithCap(g.pageSize.Lines - shrink)
	return cursor
}

// evictHistoryWithCap trims history against maxHistory using the given page
// height, which matters mid-resize before pageSize is updated.
func (g *Grid) evictHistoryWithCap(pageLines int) {
	if g.maxHistory < 0 {
		return
	}
	excess := (len(g.lines) - pageLines) - g.maxHistory
	if excess > 0 {
		g.lines = g.lines[:copy(g.lines, g.lines[excess:])]
	}
}

// reflowColumns re-breaks every logical line at the new width. Rows carrying
// the wrap flag are continuations of the row above; chaining them rebuilds
// the logical lines, which are then split into new physical rows.
func (g *Grid) reflowColumns(newCols int, cursor CellLocation, wrapPending bool) CellLocation {
	absCursor := g.HistoryLineCount() + cursor.Line

	type logicalLine struct {
		cells []Cell
	}
	logicals := make([]logicalLine, 0, len(g.lines))
	cursorLogical := 0
	cursorOffset := 0

	for i := range g.lines {
		line := &g.lines[i]
		if i == 0 || !line.Wrapped() {
			logicals = append(logicals, logicalLine{})
		}
		cur := &logicals[len(logicals)-1]
		if i == absCursor {
			cursorLogical = len(logicals) - 1
			cursorOffset = len(cur.cells) + cursor.Column
		}
		used := line.UsedColumns()
		for col := 0; col < used; col++ {
			cur.cells = append(cur.cells, line.CellAt(col))
		}
	}

	attrs := NewGraphicsAttributes()
	newLines := make([]Line, 0, len(g.lines))
	newCursorAbs := 0
	newCursorCol := cursor.Column
	if newCursorCol >= newCols {
		newCursorCol = newCols - 1
	}

	for li := range logicals {
		cells := logicals[li].cells
		first := len(newLines)
		col := 0
		line := NewLine(newCols, attrs)
		flush := func(wrapped bool) {
			line.SetWrapped(wrapped)
			newLines = append(newLines, line)
			line = NewLine(newCols, attrs)
			col = 0
		}
		for ci := 0; ci < len(cells); ci++ {
			c := cells[ci]
			if c.IsWideSpacer() {
				continue
			}
			w := 1
			if c.IsWide() {
				w = 2
			}
			if col+w > newCols {
				flush(len(newLines) > first)
			}
			*line.UseCellAt(col) = c
			if w == 2 && col+1 < newCols {
				spacer := NewCellWithAttrs(c.Attributes())
				spacer.Flags |= CellFlagWideCharSpacer
				*line.UseCellAt(col + 1) = spacer
			}
			col += w
		}
		flush(len(newLines) > first)

		if li == cursorLogical {
			rowInLogical := 0
			off := cursorOffset
			if newCols > 0 {
				rowInLogical = off / newCols
				newCursorCol = off % newCols
			}
			maxRow := len(newLines) - 1 - first
			if rowInLogical > maxRow {
				rowInLogical = maxRow
				newCursorCol = newCols - 1
			}
			newCursorAbs = first + rowInLogical
		}
	}

	// Blank rows at the bottom of the old page must not force content into
	// history after re-breaking.
	for len(newLines) > g.pageSize.Lines && len(newLines)-1 > newCursorAbs {
		last := &newLines[len(newLines)-1]
		if !last.IsBlank() {
			break
		}
		newLines = newLines[:len(newLines)-1]
	}

	// Keep the page full height: pad with blanks if the content shrank.
	for len(newLines) < g.pageSize.Lines {
		newLines = append(newLines, NewLine(newCols, attrs))
	}

	g.lines = newLines
	g.evictHistory()

	cursor.Line = newCursorAbs - g.HistoryLineCount()
	if cursor.Line < 0 {
		cursor.Line = 0
	}
	if cursor.Line >= g.pageSize.Lines {
		cursor.Line = g.pageSize.Lines - 1
	}
	cursor.Column = newCursorCol
	return cursor
}
