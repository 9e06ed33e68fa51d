package vtscreen

import "unicode/utf8"

// Screen is one addressable page (primary or alternate) with its cursor,
// margins, tab stops and charset state. All coordinates are 0-based page
// coordinates unless a method says otherwise; sequences carrying 1-based
// parameters are converted by the caller. Screen is not safe for concurrent
// use; the owning terminal serializes access.
type Screen struct {
	grid  *Grid
	state *TerminalState

	cursor Cursor
	saved  SavedCursor
	margin Margin

	activeCharset CharsetIndex
	charsets      [4]Charset

	tabs []bool

	// lastChar backs REP (repeat preceding graphic character).
	lastChar rune
}

// defaultTabWidth is the interval of the power-up tab stops.
const defaultTabWidth = 8

// NewScreen creates a screen over the given grid sharing the given state.
func NewScreen(grid *Grid, state *TerminalState) *Screen {
	s := &Screen{
		grid:   grid,
		state:  state,
		cursor: NewCursor(),
	}
	s.margin = FullMargin(grid.PageSize())
	s.resetTabs()
	return s
}

// Grid returns the backing grid.
func (s *Screen) Grid() *Grid {
	return s.grid
}

// Cursor returns the current cursor.
func (s *Screen) Cursor() Cursor {
	return s.cursor
}

// CursorPosition returns the cursor position in page coordinates.
func (s *Screen) CursorPosition() CellLocation {
	return s.cursor.Position
}

// Margin returns the active scrolling region.
func (s *Screen) Margin() Margin {
	return s.margin
}

// Pen returns the rendition applied to the next written character.
func (s *Screen) Pen() *GraphicsAttributes {
	return &s.cursor.Rendition
}

// SetCursorStyle sets the cursor shape (DECSCUSR).
func (s *Screen) SetCursorStyle(style CursorStyle) {
	s.cursor.Style = style
}

// SetCursorVisible shows or hides the cursor (DECTCEM).
func (s *Screen) SetCursorVisible(visible bool) {
	s.cursor.Visible = visible
}

// SetProtected marks subsequently written characters as guarded against
// selective erase (DECSCA).
func (s *Screen) SetProtected(protected bool) {
	s.cursor.Protected = protected
}

func (s *Screen) resetTabs() {
	cols := s.grid.PageSize().Columns
	s.tabs = make([]bool, cols)
	for i := defaultTabWidth; i < cols; i += defaultTabWidth {
		s.tabs[i] = true
	}
}

// --- Coordinate handling ---

// homePosition is where CUP with default parameters lands: page origin, or
// margin origin in origin mode.
func (s *Screen) homePosition() CellLocation {
	if s.state.HasMode(ModeOrigin) {
		return CellLocation{Line: s.margin.Top, Column: s.margin.Left}
	}
	return CellLocation{}
}

func (s *Screen) clampToPage(pos CellLocation) CellLocation {
	size := s.grid.PageSize()
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= size.Lines {
		pos.Line = size.Lines - 1
	}
	if pos.Column < 0 {
		pos.Column = 0
	}
	if pos.Column >= size.Columns {
		pos.Column = size.Columns - 1
	}
	return pos
}

func (s *Screen) clampToMargin(pos CellLocation) CellLocation {
	if pos.Line < s.margin.Top {
		pos.Line = s.margin.Top
	}
	if pos.Line > s.margin.Bottom {
		pos.Line = s.margin.Bottom
	}
	if pos.Column < s.margin.Left {
		pos.Column = s.margin.Left
	}
	if pos.Column > s.margin.Right {
		pos.Column = s.margin.Right
	}
	return pos
}

// MoveCursorTo positions the cursor at the given 0-based page line and
// column. In origin mode the coordinates are relative to the margin origin
// and confined to the margins (CUP, HVP).
func (s *Screen) MoveCursorTo(line, col int) {
	s.cursor.WrapPending = false
	if s.state.HasMode(ModeOrigin) {
		pos := CellLocation{Line: s.margin.Top + line, Column: s.margin.Left + col}
		s.cursor.Position = s.clampToMargin(pos)
		return
	}
	s.cursor.Position = s.clampToPage(CellLocation{Line: line, Column: col})
}

// MoveCursorToLine moves to the given 0-based line keeping the column (VPA).
func (s *Screen) MoveCursorToLine(line int) {
	s.MoveCursorTo(line, s.currentLogicalColumn())
}

// MoveCursorToColumn moves to the given 0-based column keeping the line (CHA).
func (s *Screen) MoveCursorToColumn(col int) {
	s.cursor.WrapPending = false
	if s.state.HasMode(ModeOrigin) {
		col += s.margin.Left
	}
	pos := CellLocation{Line: s.cursor.Position.Line, Column: col}
	if s.state.HasMode(ModeOrigin) {
		s.cursor.Position = s.clampToMargin(pos)
		return
	}
	s.cursor.Position = s.clampToPage(pos)
}

func (s *Screen) currentLogicalColumn() int {
	if s.state.HasMode(ModeOrigin) {
		return s.cursor.Position.Column - s.margin.Left
	}
	return s.cursor.Position.Column
}

// MoveCursorUp moves up n lines, stopping at the top margin if the cursor is
// inside the margins, else at the page top (CUU).
func (s *Screen) MoveCursorUp(n int) {
	s.cursor.WrapPending = false
	limit := 0
	if s.cursor.Position.Line >= s.margin.Top {
		limit = s.margin.Top
	}
	s.cursor.Position.Line -= n
	if s.cursor.Position.Line < limit {
		s.cursor.Position.Line = limit
	}
}

// MoveCursorDown moves down n lines, stopping at the bottom margin if the
// cursor is inside the margins, else at the page bottom (CUD).
func (s *Screen) MoveCursorDown(n int) {
	s.cursor.WrapPending = false
	limit := s.grid.PageSize().Lines - 1
	if s.cursor.Position.Line <= s.margin.Bottom {
		limit = s.margin.Bottom
	}
	s.cursor.Position.Line += n
	if s.cursor.Position.Line > limit {
		s.cursor.Position.Line = limit
	}
}

// MoveCursorForward moves right n columns, stopping at the right margin (CUF).
func (s *Screen) MoveCursorForward(n int) {
	s.cursor.WrapPending = false
	limit := s.grid.PageSize().Columns - 1
	if s.cursor.Position.Column <= s.margin.Right {
		limit = s.margin.Right
	}
	s.cursor.Position.Column += n
	if s.cursor.Position.Column > limit {
		s.cursor.Position.Column = limit
	}
}

// MoveCursorBackward moves left n columns, stopping at the left margin (CUB).
func (s *Screen) MoveCursorBackward(n int) {
	s.cursor.WrapPending = false
	limit := 0
	if s.cursor.Position.Column >= s.margin.Left {
		limit = s.margin.Left
	}
	s.cursor.Position.Column -= n
	if s.cursor.Position.Column < limit {
		s.cursor.Position.Column = limit
	}
}

// MoveCursorNextLine moves down n lines and to the left margin (CNL).
func (s *Screen) MoveCursorNextLine(n int) {
	s.MoveCursorDown(n)
	s.cursor.Position.Column = s.margin.Left
}

// MoveCursorPrevLine moves up n lines and to the left margin (CPL).
func (s *Screen) MoveCursorPrevLine(n int) {
	s.MoveCursorUp(n)
	s.cursor.Position.Column = s.margin.Left
}

// CarriageReturn moves the cursor to the left margin, or to column 0 if it
// already sits left of the margin.
func (s *Screen) CarriageReturn() {
	s.cursor.WrapPending = false
	if s.cursor.Position.Column < s.margin.Left {
		s.cursor.Position.Column = 0
	} else {
		s.cursor.Position.Column = s.margin.Left
	}
}

// Backspace moves the cursor one column left, stopping at the left margin.
func (s *Screen) Backspace() {
	s.MoveCursorBackward(1)
}

// --- Scrolling and index operations ---

// Linefeed moves the cursor down one line, scrolling the margin contents up
// when the cursor sits on the bottom margin row. With line-feed/new-line mode
// it also returns to the left margin.
func (s *Screen) Linefeed() {
	if s.state.HasMode(ModeLineFeedNewLine) {
		s.CarriageReturn()
	}
	s.Index()
}

// Index moves the cursor down one line, scrolling at the bottom margin (IND).
func (s *Screen) Index() {
	s.cursor.WrapPending = false
	if s.cursor.Position.Line == s.margin.Bottom {
		s.grid.ScrollUp(1, s.erasePen(), s.margin)
		return
	}
	if s.cursor.Position.Line < s.grid.PageSize().Lines-1 {
		s.cursor.Position.Line++
	}
}

// ReverseIndex moves the cursor up one line, scrolling down at the top
// margin (RI).
func (s *Screen) ReverseIndex() {
	s.cursor.WrapPending = false
	if s.cursor.Position.Line == s.margin.Top {
		s.grid.ScrollDown(1, s.erasePen(), s.margin)
		return
	}
	if s.cursor.Position.Line > 0 {
		s.cursor.Position.Line--
	}
}

// BackIndex moves the cursor left one column, shifting the margin contents
// right when it sits on the left margin (DECBI).
func (s *Screen) BackIndex() {
	s.cursor.WrapPending = false
	if s.cursor.Position.Column == s.margin.Left {
		s.InsertColumns(1)
		return
	}
	if s.cursor.Position.Column > 0 {
		s.cursor.Position.Column--
	}
}

// ForwardIndex moves the cursor right one column, shifting the margin
// contents left when it sits on the right margin (DECFI).
func (s *Screen) ForwardIndex() {
	s.cursor.WrapPending = false
	if s.cursor.Position.Column == s.margin.Right {
		s.DeleteColumnsAt(s.cursor.Position.Line, s.margin.Left, 1)
		return
	}
	if s.cursor.Position.Column < s.grid.PageSize().Columns-1 {
		s.cursor.Position.Column++
	}
}

// ScrollUp scrolls the margin contents up n lines without moving the
// cursor (SU).
func (s *Screen) ScrollUp(n int) {
	s.grid.ScrollUp(n, s.erasePen(), s.margin)
}

// ScrollDown scrolls the margin contents down n lines without moving the
// cursor (SD).
func (s *Screen) ScrollDown(n int) {
	s.grid.ScrollDown(n, s.erasePen(), s.margin)
}

// SetScrollingRegion sets the top and bottom margins from 1-based values and
// homes the cursor (DECSTBM). Defaults and out-of-range values select the
// full page; an empty region is ignored.
func (s *Screen) SetScrollingRegion(top, bottom int) {
	lines := s.grid.PageSize().Lines
	if top < 1 {
		top = 1
	}
	if bottom < 1 || bottom > lines {
		bottom = lines
	}
	if top >= bottom {
		return
	}
	s.margin.Top = top - 1
	s.margin.Bottom = bottom - 1
	s.cursor.Position = s.homePosition()
	s.cursor.WrapPending = false
}

// SetLeftRightMargins sets the vertical margins from 1-based values and
// homes the cursor (DECSLRM). Only honored while DECLRMM is set.
func (s *Screen) SetLeftRightMargins(left, right int) {
	if !s.state.HasMode(ModeLeftRightMargin) {
		return
	}
	cols := s.grid.PageSize().Columns
	if left < 1 {
		left = 1
	}
	if right < 1 || right > cols {
		right = cols
	}
	if left >= right {
		return
	}
	s.margin.Left = left - 1
	s.margin.Right = right - 1
	s.cursor.Position = s.homePosition()
	s.cursor.WrapPending = false
}

// resetMargins restores the full-page scrolling region.
func (s *Screen) resetMargins() {
	s.margin = FullMargin(s.grid.PageSize())
}

// --- Tabs ---

// Tab moves the cursor to the next tab stop, or the right margin if none
// remains.
func (s *Screen) Tab() {
	s.TabForward(1)
}

// TabForward moves the cursor forward n tab stops (CHT).
func (s *Screen) TabForward(n int) {
	s.cursor.WrapPending = false
	col := s.cursor.Position.Column
	for i := 0; i < n; i++ {
		next := s.margin.Right
		for c := col + 1; c <= s.margin.Right; c++ {
			if c < len(s.tabs) && s.tabs[c] {
				next = c
				break
			}
		}
		col = next
		if col == s.margin.Right {
			break
		}
	}
	s.cursor.Position.Column = col
}

// TabBackward moves the cursor back n tab stops (CBT).
func (s *Screen) TabBackward(n int) {
	s.cursor.WrapPending = false
	col := s.cursor.Position.Column
	for i := 0; i < n; i++ {
		prev := s.margin.Left
		for c := col - 1; c > s.margin.Left; c-- {
			if c < len(s.tabs) && s.tabs[c] {
				prev = c
				break
			}
		}
		col = prev
		if col == s.margin.Left {
			break
		}
	}
	s.cursor.Position.Column = col
}

// SetTabStop sets a tab stop at the cursor column (HTS).
func (s *Screen) SetTabStop() {
	col := s.cursor.Position.Column
	if col < len(s.tabs) {
		s.tabs[col] = true
	}
}

// ClearTabStop removes the tab stop at the cursor column (TBC 0).
func (s *Screen) ClearTabStop() {
	col := s.cursor.Position.Column
	if col < len(s.tabs) {
		s.tabs[col] = false
	}
}

// ClearAllTabStops removes every tab stop (TBC 3).
func (s *Screen) ClearAllTabStops() {
	for i := range s.tabs {
		s.tabs[i] = false
	}
}

// --- Charsets ---

// DesignateCharset assigns a charset to one of the G0-G3 slots (SCS).
func (s *Screen) DesignateCharset(index CharsetIndex, charset Charset) {
	s.charsets[index] = charset
}

// SelectCharset makes one of the G0-G3 slots active (SI, SO, LS2, LS3).
func (s *Screen) SelectCharset(index CharsetIndex) {
	s.activeCharset = index
}

func (s *Screen) translate(r rune) rune {
	if s.charsets[s.activeCharset] == CharsetLineDrawing {
		return translateLineDrawing(r)
	}
	return r
}

// --- Writing ---

// WriteText writes a string of printable characters at the cursor,
// advancing, wrapping and scrolling as needed. Plain single-width runs on an
// untouched line take a bulk path that appends to the compact line buffer
// without inflating it.
func (s *Screen) WriteText(text string) {
	for len(text) > 0 {
		if n := s.tryBulkWrite(text); n > 0 {
			text = text[n:]
			continue
		}
		r, size := utf8.DecodeRuneInString(text)
		s.WriteRune(r)
		text = text[size:]
	}
}

// tryBulkWrite appends the longest plain ASCII prefix of text directly to
// the current line's compact buffer. Returns the number of bytes consumed,
// 0 if the fast path does not apply.
func (s *Screen) tryBulkWrite(text string) int {
	if s.cursor.WrapPending ||
		s.state.HasMode(ModeInsert) ||
		s.charsets[s.activeCharset] != CharsetASCII ||
		s.margin.Right != s.grid.PageSize().Columns-1 {
		return 0
	}

	// Longest printable-ASCII prefix that stays left of the last column;
	// the final column needs the wrap-pending bookkeeping of the slow path.
	free := s.margin.Right - s.cursor.Position.Column
	n := 0
	for n < len(text) && n < free && text[n] >= 0x20 && text[n] < 0x7f {
		n++
	}
	if n == 0 {
		return 0
	}

	line := s.grid.LineAt(s.cursor.Position.Line)
	pen := s.cursor.Pen()
	if !line.CanAppend(s.cursor.Position.Column, text[:n], pen) {
		return 0
	}
	line.AppendText(text[:n], pen)
	s.cursor.Position.Column += n
	s.lastChar = rune(text[n-1])
	s.state.InstructionCounter += uint64(n)
	return n
}

// WriteRune writes a single character at the cursor. A pending wrap from a
// previous write at the right margin is honored first: the line break happens
// only now, so a cursor movement in between cancels it.
func (s *Screen) WriteRune(r rune) {
	r = s.translate(r)
	width := runeWidth(r)
	if width == 0 {
		s.combine(r)
		return
	}

	if s.cursor.WrapPending {
		if s.state.HasMode(ModeLineWrap) {
			s.wrapToNextLine()
		} else {
			s.cursor.WrapPending = false
		}
	}

	// A wide character that no longer fits before the right margin wraps
	// early, leaving the last cell blank.
	if width == 2 && s.cursor.Position.Column+1 > s.margin.Right {
		if !s.state.HasMode(ModeLineWrap) {
			return
		}
		s.grid.UseCellAt(s.cursor.Position).Reset(s.erasePen())
		s.wrapToNextLine()
	}

	if s.state.HasMode(ModeInsert) {
		s.InsertCharacters(width)
	}

	pos := s.cursor.Position
	cell := s.grid.UseCellAt(pos)
	if cell.IsWideSpacer() && pos.Column > 0 {
		// Overwriting the right half of a wide char orphans its left half.
		s.grid.UseCellAt(CellLocation{Line: pos.Line, Column: pos.Column - 1}).Reset(s.erasePen())
	}
	if cell.IsWide() && pos.Column+1 <= s.margin.Right {
		s.grid.UseCellAt(CellLocation{Line: pos.Line, Column: pos.Column + 1}).Reset(s.erasePen())
	}

	cell.Write(r, s.cursor.Pen())
	if width == 2 {
		cell.Flags |= CellFlagWideChar
		spacer := s.grid.UseCellAt(CellLocation{Line: pos.Line, Column: pos.Column + 1})
		spacer.Reset(s.cursor.Pen())
		spacer.Flags |= CellFlagWideCharSpacer
	}

	s.lastChar = r
	s.state.InstructionCounter++

	if pos.Column+width > s.margin.Right {
		// At the right margin the cursor stays put and the wrap is
		// deferred until the next printable character.
		s.cursor.WrapPending = true
		return
	}
	s.cursor.Position.Column += width
}

func (s *Screen) wrapToNextLine() {
	s.cursor.WrapPending = false
	s.Index()
	s.cursor.Position.Column = s.margin.Left
	s.grid.LineAt(s.cursor.Position.Line).SetWrapped(true)
}

// combine merges a zero-width character into the previously written cell.
func (s *Screen) combine(r rune) {
	pos := s.cursor.Position
	col := pos.Column
	if !s.cursor.WrapPending && col > 0 {
		col--
	}
	cell := s.grid.UseCellAt(CellLocation{Line: pos.Line, Column: col})
	if cell.IsWideSpacer() && col > 0 {
		cell = s.grid.UseCellAt(CellLocation{Line: pos.Line, Column: col - 1})
	}
	if cell.Char != 0 {
		cell.Combining = append(cell.Combining, r)
	}
}

// RepeatLastCharacter writes the preceding graphic character n more
// times (REP).
func (s *Screen) RepeatLastCharacter(n int) {
	if s.lastChar == 0 {
		return
	}
	for i := 0; i < n; i++ {
		s.WriteRune(s.lastChar)
	}
}

// --- Erase and edit ---

// erasePen is the rendition for blank cells produced by erase, scroll and
// edit operations: the current colors without the guard or text flags and
// with no hyperlink.
func (s *Screen) erasePen() GraphicsAttributes {
	pen := s.cursor.Pen()
	pen.Flags = 0
	pen.Hyperlink = 0
	return pen
}

func (s *Screen) fillLine(line int, from, to int, pen GraphicsAttributes, selective bool) {
	l := s.grid.LineAt(line)
	if from <= 0 && to >= l.Columns()-1 && !selective {
		l.Reset(pen)
		return
	}
	if selective && l.IsTrivial() && !l.ContainsProtected(from, to) && from <= 0 && to >= l.Columns()-1 {
		l.Reset(pen)
		return
	}
	cells := l.UseCells()
	if from < 0 {
		from = 0
	}
	if to >= len(cells) {
		to = len(cells) - 1
	}
	for col := from; col <= to; col++ {
		if selective && cells[col].IsProtected() {
			continue
		}
		cells[col].Reset(pen)
	}
}

// EraseInLine erases part of the cursor line: 0 from the cursor to the end,
// 1 from the start through the cursor, 2 the whole line (EL).
func (s *Screen) EraseInLine(mode int) {
	s.eraseInLine(mode, false)
}

// SelectiveEraseInLine is EraseInLine skipping cells guarded by
// DECSCA (DECSEL).
func (s *Screen) SelectiveEraseInLine(mode int) {
	s.eraseInLine(mode, true)
}

func (s *Screen) eraseInLine(mode int, selective bool) {
	pos := s.cursor.Position
	cols := s.grid.PageSize().Columns
	switch mode {
	case 0:
		s.fillLine(pos.Line, pos.Column, cols-1, s.erasePen(), selective)
	case 1:
		s.fillLine(pos.Line, 0, pos.Column, s.erasePen(), selective)
	case 2:
		s.fillLine(pos.Line, 0, cols-1, s.erasePen(), selective)
	}
}

// EraseInDisplay erases part of the page: 0 from the cursor to the end, 1
// from the start through the cursor, 2 the whole page, 3 the whole page and
// scrollback (ED).
func (s *Screen) EraseInDisplay(mode int) {
	s.eraseInDisplay(mode, false)
}

// SelectiveEraseInDisplay is EraseInDisplay skipping cells guarded by
// DECSCA (DECSED).
func (s *Screen) SelectiveEraseInDisplay(mode int) {
	s.eraseInDisplay(mode, true)
}

func (s *Screen) eraseInDisplay(mode int, selective bool) {
	size := s.grid.PageSize()
	pos := s.cursor.Position
	pen := s.erasePen()
	switch mode {
	case 0:
		s.fillLine(pos.Line, pos.Column, size.Columns-1, pen, selective)
		for line := pos.Line + 1; line < size.Lines; line++ {
			s.fillLine(line, 0, size.Columns-1, pen, selective)
		}
	case 1:
		for line := 0; line < pos.Line; line++ {
			s.fillLine(line, 0, size.Columns-1, pen, selective)
		}
		s.fillLine(pos.Line, 0, pos.Column, pen, selective)
	case 2:
		for line := 0; line < size.Lines; line++ {
			s.fillLine(line, 0, size.Columns-1, pen, selective)
		}
	case 3:
		for line := 0; line < size.Lines; line++ {
			s.fillLine(line, 0, size.Columns-1, pen, selective)
		}
		if !selective {
			s.grid.ClearHistory()
		}
	}
}

// EraseCharacters blanks n cells starting at the cursor without shifting
// anything (ECH).
func (s *Screen) EraseCharacters(n int) {
	if n < 1 {
		n = 1
	}
	pos := s.cursor.Position
	end := pos.Column + n - 1
	if end >= s.grid.PageSize().Columns {
		end = s.grid.PageSize().Columns - 1
	}
	s.fillLine(pos.Line, pos.Column, end, s.erasePen(), false)
}

// InsertCharacters opens n blank cells at the cursor, shifting the rest of
// the line right and off the right margin (ICH). Outside the horizontal
// margins the operation does nothing.
func (s *Screen) InsertCharacters(n int) {
	pos := s.cursor.Position
	if pos.Column < s.margin.Left || pos.Column > s.margin.Right {
		return
	}
	if n < 1 {
		n = 1
	}
	if n > s.margin.Right-pos.Column+1 {
		n = s.margin.Right - pos.Column + 1
	}

	cells := s.grid.LineAt(pos.Line).UseCells()
	pen := s.erasePen()
	for col := s.margin.Right; col >= pos.Column+n; col-- {
		cells[col] = cells[col-n]
	}
	for col := pos.Column; col < pos.Column+n && col <= s.margin.Right; col++ {
		cells[col].Reset(pen)
	}
}

// DeleteCharacters removes n cells at the cursor, pulling the rest of the
// line left and blank-filling at the right margin (DCH).
func (s *Screen) DeleteCharacters(n int) {
	pos := s.cursor.Position
	if pos.Column < s.margin.Left || pos.Column > s.margin.Right {
		return
	}
	if n < 1 {
		n = 1
	}
	if n > s.margin.Right-pos.Column+1 {
		n = s.margin.Right - pos.Column + 1
	}

	cells := s.grid.LineAt(pos.Line).UseCells()
	pen := s.erasePen()
	for col := pos.Column; col+n <= s.margin.Right; col++ {
		cells[col] = cells[col+n]
	}
	for col := s.margin.Right - n + 1; col <= s.margin.Right; col++ {
		cells[col].Reset(pen)
	}
}

// InsertLines opens n blank lines at the cursor row, pushing the lines below
// toward the bottom margin (IL). Ignored outside the margins; the cursor
// moves to the left margin.
func (s *Screen) InsertLines(n int) {
	if n < 1 {
		n = 1
	}
	pos := s.cursor.Position
	if !s.margin.Contains(pos) {
		return
	}
	s.grid.InsertLines(pos.Line, n, s.erasePen(), s.margin)
	s.cursor.Position.Column = s.margin.Left
	s.cursor.WrapPending = false
}

// DeleteLines removes n lines at the cursor row, pulling the lines below up
// and blank-filling at the bottom margin (DL). Ignored outside the margins;
// the cursor moves to the left margin.
func (s *Screen) DeleteLines(n int) {
	if n < 1 {
		n = 1
	}
	pos := s.cursor.Position
	if !s.margin.Contains(pos) {
		return
	}
	s.grid.DeleteLines(pos.Line, n, s.erasePen(), s.margin)
	s.cursor.Position.Column = s.margin.Left
	s.cursor.WrapPending = false
}

// InsertColumns opens n blank columns at the cursor column within the
// margins, shifting the contents right (DECIC).
func (s *Screen) InsertColumns(n int) {
	pos := s.cursor.Position
	if !s.margin.Contains(pos) {
		return
	}
	if n < 1 {
		n = 1
	}
	if n > s.margin.Right-pos.Column+1 {
		n = s.margin.Right - pos.Column + 1
	}
	pen := s.erasePen()
	for line := s.margin.Top; line <= s.margin.Bottom; line++ {
		cells := s.grid.LineAt(line).UseCells()
		for col := s.margin.Right; col >= pos.Column+n; col-- {
			cells[col] = cells[col-n]
		}
		for col := pos.Column; col < pos.Column+n && col <= s.margin.Right; col++ {
			cells[col].Reset(pen)
		}
	}
}

// DeleteColumns removes n columns at the cursor column within the margins,
// shifting the contents left (DECDC).
func (s *Screen) DeleteColumns(n int) {
	pos := s.cursor.Position
	if !s.margin.Contains(pos) {
		return
	}
	s.DeleteColumnsAt(pos.Line, pos.Column, n)
}

// DeleteColumnsAt removes n columns starting at col for every margin row.
func (s *Screen) DeleteColumnsAt(_ int, col, n int) {
	if n < 1 {
		n = 1
	}
	if n > s.margin.Right-col+1 {
		n = s.margin.Right - col + 1
	}
	pen := s.erasePen()
	for line := s.margin.Top; line <= s.margin.Bottom; line++ {
		cells := s.grid.LineAt(line).UseCells()
		for c := col; c+n <= s.margin.Right; c++ {
			cells[c] = cells[c+n]
		}
		for c := s.margin.Right - n + 1; c <= s.margin.Right; c++ {
			cells[c].Reset(pen)
		}
	}
}

// --- Cursor save/restore and resets ---

// SaveCursor records the cursor position, rendition, charsets and origin
// mode (DECSC).
func (s *Screen) SaveCursor() {
	s.saved = SavedCursor{
		Position:      s.cursor.Position,
		OriginMode:    s.state.HasMode(ModeOrigin),
		Rendition:     s.cursor.Rendition,
		Protected:     s.cursor.Protected,
		ActiveCharset: s.activeCharset,
		Charsets:      s.charsets,
	}
}

// RestoreCursor restores the state saved by DECSC. Without a prior save this
// homes the cursor with default rendition (DECRC).
func (s *Screen) RestoreCursor() {
	s.cursor.Position = s.clampToPage(s.saved.Position)
	s.cursor.WrapPending = false
	s.cursor.Rendition = s.saved.Rendition
	s.cursor.Protected = s.saved.Protected
	s.activeCharset = s.saved.ActiveCharset
	s.charsets = s.saved.Charsets
	s.state.SetModeFlag(ModeOrigin, s.saved.OriginMode)
}

// AlignmentPattern fills the page with E, resets the margins and homes the
// cursor (DECALN).
func (s *Screen) AlignmentPattern() {
	s.resetMargins()
	s.cursor.Position = CellLocation{}
	s.cursor.WrapPending = false
	attrs := NewGraphicsAttributes()
	size := s.grid.PageSize()
	for line := 0; line < size.Lines; line++ {
		l := s.grid.LineAt(line)
		l.Reset(attrs)
		for col := 0; col < size.Columns; col++ {
			l.UseCellAt(col).Write('E', attrs)
		}
	}
}

// Reset restores the screen to power-up state: blank page, full margins,
// default tabs and charsets, home cursor. History is kept.
func (s *Screen) Reset() {
	size := s.grid.PageSize()
	for line := 0; line < size.Lines; line++ {
		s.grid.LineAt(line).Reset(NewGraphicsAttributes())
	}
	s.cursor = NewCursor()
	s.saved = SavedCursor{}
	s.resetMargins()
	s.resetTabs()
	s.activeCharset = CharsetIndexG0
	s.charsets = [4]Charset{}
	s.lastChar = 0
}

// Resize changes the page geometry, translating the cursor and restoring
// full margins.
func (s *Screen) Resize(size PageSize) {
	s.cursor.Position = s.grid.Resize(size, s.cursor.Position, s.cursor.WrapPending)
	s.cursor.WrapPending = false
	s.resetMargins()
	s.saved.Position = CellLocation{}
	s.resetTabs()
}

// --- Images ---

// PlaceImage writes an image at the cursor as a rows x cols block of cell
// fragments. With sixel scrolling enabled the rows are emitted like text:
// each image row ends with an index, so placing a tall image at the bottom
// margin scrolls the page between rows. With scrolling disabled the image is
// anchored at the page origin and the cursor does not move.
func (s *Screen) PlaceImage(img *Image, rows, cols int) {
	if img == nil || rows < 1 || cols < 1 {
		return
	}

	if !s.state.HasMode(ModeSixelScrolling) {
		max := s.grid.PageSize()
		for row := 0; row < rows && row < max.Lines; row++ {
			s.placeImageRow(img, row, CellLocation{Line: row, Column: 0}, cols)
		}
		return
	}

	for row := 0; row < rows; row++ {
		s.cursor.WrapPending = false
		s.placeImageRow(img, row, s.cursor.Position, cols)
		if row < rows-1 {
			s.Index()
		}
	}
	// The cursor ends on the image's last row, just past its right edge.
	endCol := s.cursor.Position.Column + cols
	if endCol > s.margin.Right {
		endCol = s.margin.Right
	}
	s.cursor.Position.Column = endCol
}

func (s *Screen) placeImageRow(img *Image, imageRow int, start CellLocation, cols int) {
	pen := s.erasePen()
	for col := 0; col < cols; col++ {
		target := CellLocation{Line: start.Line, Column: start.Column + col}
		if target.Column > s.margin.Right {
			break
		}
		cell := s.grid.UseCellAt(target)
		cell.Reset(pen)
		cell.Fragment = &ImageFragment{
			Image:  img,
			Offset: CellLocation{Line: imageRow, Column: col},
		}
	}
}

// --- Text extraction ---

// LineText returns the text of the given page row (negative rows address
// history), trailing blanks trimmed.
func (s *Screen) LineText(row int) string {
	return s.grid.LineAt(row).TrimmedText()
}

// PageText returns the visible page as newline-joined rows with trailing
// blanks trimmed.
func (s *Screen) PageText() string {
	var out []byte
	for row := 0; row < s.grid.PageSize().Lines; row++ {
		if row > 0 {
			out = append(out, '\n')
		}
		out = append(out, s.LineText(row)...)
	}
	return string(out)
}
