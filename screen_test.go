package vtscreen

import (
	"strings"
	"testing"
)

func testScreen(lines, cols int) *Screen {
	state := NewTerminalState(10, 20)
	return NewScreen(NewGrid(PageSize{Lines: lines, Columns: cols}, 100, true), state)
}

func TestScreenWriteText(t *testing.T) {
	s := testScreen(24, 80)

	s.WriteText("Hello")

	if got := s.LineText(0); got != "Hello" {
		t.Errorf("expected 'Hello', got %q", got)
	}
	if pos := s.CursorPosition(); pos.Line != 0 || pos.Column != 5 {
		t.Errorf("expected cursor at (0, 5), got (%d, %d)", pos.Line, pos.Column)
	}
}

func TestScreenDeferredWrap(t *testing.T) {
	s := testScreen(3, 5)

	s.WriteText("ABCDE")

	// The cursor stays on the last column with the wrap pending.
	if pos := s.CursorPosition(); pos.Line != 0 || pos.Column != 4 {
		t.Errorf("expected cursor at (0, 4), got (%d, %d)", pos.Line, pos.Column)
	}
	if !s.Cursor().WrapPending {
		t.Error("expected wrap pending after writing into the last column")
	}

	s.WriteText("F")

	if got := s.LineText(0); got != "ABCDE" {
		t.Errorf("expected 'ABCDE' on line 0, got %q", got)
	}
	if got := s.LineText(1); got != "F" {
		t.Errorf("expected 'F' on line 1, got %q", got)
	}
	if !s.grid.LineAt(1).Wrapped() {
		t.Error("expected line 1 to be marked as a wrap continuation")
	}
}

func TestScreenMovementCancelsPendingWrap(t *testing.T) {
	s := testScreen(3, 5)

	s.WriteText("ABCDE")
	s.MoveCursorTo(0, 2)

	if s.Cursor().WrapPending {
		t.Error("expected cursor movement to cancel the pending wrap")
	}

	s.WriteText("X")

	if got := s.LineText(0); got != "ABXDE" {
		t.Errorf("expected 'ABXDE', got %q", got)
	}
	if got := s.LineText(1); got != "" {
		t.Errorf("expected empty line 1, got %q", got)
	}
}

func TestScreenWrapDisabled(t *testing.T) {
	s := testScreen(3, 5)
	s.state.SetModeFlag(ModeLineWrap, false)

	s.WriteText("ABCDEFG")

	// Without autowrap the last column is overwritten in place.
	if got := s.LineText(0); got != "ABCDG" {
		t.Errorf("expected 'ABCDG', got %q", got)
	}
	if got := s.LineText(1); got != "" {
		t.Errorf("expected empty line 1, got %q", got)
	}
}

func TestScreenLinefeedScrollsAtBottomMargin(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteText("A")
	s.MoveCursorTo(1, 0)
	s.WriteText("B")
	s.MoveCursorTo(2, 0)
	s.WriteText("C")

	s.SetScrollingRegion(1, 2)
	s.MoveCursorTo(1, 0)
	s.Linefeed()

	if got := s.LineText(0); got != "B" {
		t.Errorf("expected 'B' on line 0, got %q", got)
	}
	if got := s.LineText(1); got != "" {
		t.Errorf("expected blank line 1, got %q", got)
	}
	if got := s.LineText(2); got != "C" {
		t.Errorf("expected line 2 untouched, got %q", got)
	}
	if s.grid.HistoryLineCount() != 0 {
		t.Errorf("expected no history from a partial margin scroll, got %d", s.grid.HistoryLineCount())
	}
}

func TestScreenLinefeedFeedsHistory(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteText("top")
	s.MoveCursorTo(2, 0)
	s.Linefeed()

	if s.grid.HistoryLineCount() != 1 {
		t.Fatalf("expected 1 history line, got %d", s.grid.HistoryLineCount())
	}
	if got := s.LineText(-1); got != "top" {
		t.Errorf("expected 'top' in history, got %q", got)
	}
}

func TestScreenReverseIndexScrollsAtTop(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteText("first")
	s.MoveCursorTo(0, 0)
	s.ReverseIndex()

	if got := s.LineText(0); got != "" {
		t.Errorf("expected blank line 0 after scroll down, got %q", got)
	}
	if got := s.LineText(1); got != "first" {
		t.Errorf("expected 'first' on line 1, got %q", got)
	}
}

func TestScreenOriginMode(t *testing.T) {
	s := testScreen(5, 10)

	s.SetScrollingRegion(2, 4)
	s.state.SetModeFlag(ModeOrigin, true)

	s.MoveCursorTo(0, 0)
	if pos := s.CursorPosition(); pos.Line != 1 {
		t.Errorf("expected origin-relative home at line 1, got %d", pos.Line)
	}

	s.MoveCursorTo(10, 0)
	if pos := s.CursorPosition(); pos.Line != 3 {
		t.Errorf("expected clamp to bottom margin line 3, got %d", pos.Line)
	}
}

func TestScreenOriginModeReport(t *testing.T) {
	s := testScreen(5, 10)

	s.SetScrollingRegion(2, 4)
	s.state.SetModeFlag(ModeOrigin, true)
	s.MoveCursorTo(1, 2)

	// The report is relative to the margin origin.
	if got := s.CursorPositionReport(); got != "\x1b[2;3R" {
		t.Errorf("expected origin-relative CPR, got %q", got)
	}
}

func TestScreenSelectiveErase(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteText("AB")
	s.SetProtected(true)
	s.WriteText("C")
	s.SetProtected(false)
	s.WriteText("D")

	s.MoveCursorTo(0, 0)
	s.SelectiveEraseInLine(2)

	if got := s.LineText(0); got != "  C" {
		t.Errorf("expected only the guarded cell to survive, got %q", got)
	}
}

func TestScreenSelectiveEraseInDisplayKeepsHistory(t *testing.T) {
	s := testScreen(2, 10)

	s.WriteText("old")
	s.MoveCursorTo(1, 0)
	s.Linefeed()

	s.SelectiveEraseInDisplay(3)

	if s.grid.HistoryLineCount() != 1 {
		t.Errorf("expected selective ED 3 to keep history, got %d lines", s.grid.HistoryLineCount())
	}
}

func TestScreenEraseInLine(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteText("ABCDE")
	s.MoveCursorToColumn(2)

	s.EraseInLine(0)
	if got := s.LineText(0); got != "AB" {
		t.Errorf("expected 'AB' after EL 0, got %q", got)
	}

	s.MoveCursorTo(1, 0)
	s.WriteText("FGHIJ")
	s.MoveCursorToColumn(2)
	s.EraseInLine(1)
	if got := s.LineText(1); got != "   IJ" {
		t.Errorf("expected '   IJ' after EL 1, got %q", got)
	}
}

func TestScreenEraseDropsHyperlink(t *testing.T) {
	s := testScreen(3, 10)

	s.Pen().Hyperlink = s.state.Hyperlinks.Intern("1", "https://example.com")
	s.WriteText("link")
	s.MoveCursorTo(0, 0)
	s.EraseInLine(2)

	if id := s.grid.LineAt(0).HyperlinkAt(0); id != 0 {
		t.Errorf("expected erased cells to drop the hyperlink, got id %d", id)
	}
	if got := s.LineText(0); got != "" {
		t.Errorf("expected the line erased, got %q", got)
	}
}

func TestScreenEraseInDisplayClearsHistory(t *testing.T) {
	s := testScreen(2, 10)

	s.WriteText("one")
	s.MoveCursorTo(1, 0)
	s.Linefeed()
	s.Linefeed()

	if s.grid.HistoryLineCount() == 0 {
		t.Fatal("expected scrollback before ED 3")
	}

	s.EraseInDisplay(3)

	if s.grid.HistoryLineCount() != 0 {
		t.Errorf("expected empty scrollback after ED 3, got %d lines", s.grid.HistoryLineCount())
	}
	if got := s.PageText(); strings.TrimSpace(got) != "" {
		t.Errorf("expected blank page after ED 3, got %q", got)
	}
}

func TestScreenEraseCharacters(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteText("ABCDE")
	s.MoveCursorToColumn(1)
	s.EraseCharacters(2)

	if got := s.LineText(0); got != "A  DE" {
		t.Errorf("expected 'A  DE', got %q", got)
	}
}

func TestScreenInsertDeleteCharacters(t *testing.T) {
	s := testScreen(3, 5)

	s.WriteText("ABCDE")
	s.MoveCursorTo(0, 1)
	s.InsertCharacters(2)

	if got := s.LineText(0); got != "A  BC" {
		t.Errorf("expected 'A  BC' after ICH, got %q", got)
	}

	s.DeleteCharacters(2)

	if got := s.LineText(0); got != "ABC" {
		t.Errorf("expected 'ABC' after DCH, got %q", got)
	}
}

func TestScreenInsertLinesOutsideMarginIgnored(t *testing.T) {
	s := testScreen(5, 10)

	s.WriteText("keep")
	s.SetScrollingRegion(2, 4)
	s.MoveCursorTo(0, 0)
	s.InsertLines(1)

	if got := s.LineText(0); got != "keep" {
		t.Errorf("expected IL outside margins to be ignored, got %q", got)
	}
}

func TestScreenDeleteLinesMovesToLeftMargin(t *testing.T) {
	s := testScreen(5, 10)

	s.MoveCursorTo(1, 0)
	s.WriteText("aaa")
	s.MoveCursorTo(2, 0)
	s.WriteText("bbb")

	s.MoveCursorTo(1, 3)
	s.DeleteLines(1)

	if got := s.LineText(1); got != "bbb" {
		t.Errorf("expected 'bbb' pulled up, got %q", got)
	}
	if pos := s.CursorPosition(); pos.Column != 0 {
		t.Errorf("expected cursor at left margin after DL, got column %d", pos.Column)
	}
}

func TestScreenLeftRightMargins(t *testing.T) {
	s := testScreen(4, 10)

	// DECSLRM is ignored until DECLRMM is enabled.
	s.SetLeftRightMargins(3, 6)
	if s.Margin().Left != 0 || s.Margin().Right != 9 {
		t.Fatal("expected DECSLRM to be ignored without DECLRMM")
	}

	s.state.SetModeFlag(ModeLeftRightMargin, true)
	s.SetLeftRightMargins(3, 6)

	if s.Margin().Left != 2 || s.Margin().Right != 5 {
		t.Errorf("expected margins 2..5, got %d..%d", s.Margin().Left, s.Margin().Right)
	}
}

func TestScreenAlignmentPattern(t *testing.T) {
	s := testScreen(3, 6)

	s.SetScrollingRegion(2, 3)
	s.AlignmentPattern()

	for row := 0; row < 3; row++ {
		if got := s.LineText(row); got != "EEEEEE" {
			t.Errorf("line %d: expected all E, got %q", row, got)
		}
	}
	if pos := s.CursorPosition(); pos.Line != 0 || pos.Column != 0 {
		t.Errorf("expected cursor at home, got (%d, %d)", pos.Line, pos.Column)
	}
	if s.Margin() != FullMargin(s.grid.PageSize()) {
		t.Error("expected DECALN to reset the margins")
	}
}

func TestScreenTabStops(t *testing.T) {
	s := testScreen(3, 20)

	s.Tab()
	if pos := s.CursorPosition(); pos.Column != 8 {
		t.Errorf("expected default tab stop at 8, got %d", pos.Column)
	}

	s.MoveCursorToColumn(3)
	s.SetTabStop()
	s.MoveCursorToColumn(0)
	s.Tab()
	if pos := s.CursorPosition(); pos.Column != 3 {
		t.Errorf("expected custom tab stop at 3, got %d", pos.Column)
	}

	s.TabBackward(1)
	if pos := s.CursorPosition(); pos.Column != 0 {
		t.Errorf("expected CBT back to 0, got %d", pos.Column)
	}

	s.ClearAllTabStops()
	s.Tab()
	if pos := s.CursorPosition(); pos.Column != 19 {
		t.Errorf("expected tab to land on the right margin, got %d", pos.Column)
	}
}

func TestScreenSaveRestoreCursor(t *testing.T) {
	s := testScreen(5, 10)

	s.MoveCursorTo(2, 3)
	s.Pen().SetFlag(CellFlagBold)
	s.SaveCursor()

	s.MoveCursorTo(0, 0)
	s.Pen().ClearFlag(CellFlagBold)
	s.RestoreCursor()

	if pos := s.CursorPosition(); pos.Line != 2 || pos.Column != 3 {
		t.Errorf("expected cursor restored to (2, 3), got (%d, %d)", pos.Line, pos.Column)
	}
	if !s.Pen().HasFlag(CellFlagBold) {
		t.Error("expected bold restored with the cursor")
	}
}

func TestScreenRestoreWithoutSaveHomes(t *testing.T) {
	s := testScreen(5, 10)

	s.MoveCursorTo(3, 4)
	s.RestoreCursor()

	if pos := s.CursorPosition(); pos.Line != 0 || pos.Column != 0 {
		t.Errorf("expected home after DECRC without DECSC, got (%d, %d)", pos.Line, pos.Column)
	}
}

func TestScreenWideChar(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteRune('世')

	cell := s.grid.CellAt(CellLocation{Line: 0, Column: 0})
	if cell.Char != '世' || cell.Flags&CellFlagWideChar == 0 {
		t.Error("expected wide char in the first cell")
	}
	spacer := s.grid.CellAt(CellLocation{Line: 0, Column: 1})
	if spacer.Flags&CellFlagWideCharSpacer == 0 {
		t.Error("expected spacer in the second cell")
	}
	if pos := s.CursorPosition(); pos.Column != 2 {
		t.Errorf("expected cursor at column 2, got %d", pos.Column)
	}
}

func TestScreenOverwriteWideCharHalf(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteRune('世')
	s.MoveCursorTo(0, 1)
	s.WriteRune('X')

	left := s.grid.CellAt(CellLocation{Line: 0, Column: 0})
	if left.Char != ' ' || left.Flags&CellFlagWideChar != 0 {
		t.Error("expected the orphaned left half to be blanked")
	}
	if got := s.grid.CellAt(CellLocation{Line: 0, Column: 1}).Char; got != 'X' {
		t.Errorf("expected 'X' at column 1, got %q", got)
	}
}

func TestScreenWideCharEarlyWrap(t *testing.T) {
	s := testScreen(3, 4)

	s.WriteText("ABC")
	s.WriteRune('世')

	// The wide char does not fit in the last column and wraps early.
	if got := s.LineText(0); got != "ABC" {
		t.Errorf("expected 'ABC' on line 0, got %q", got)
	}
	if got := s.grid.CellAt(CellLocation{Line: 1, Column: 0}).Char; got != '世' {
		t.Errorf("expected wide char on line 1, got %q", got)
	}
}

func TestScreenCombiningMark(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteRune('a')
	s.WriteRune('́')

	cell := s.grid.CellAt(CellLocation{Line: 0, Column: 0})
	if len(cell.Combining) != 1 || cell.Combining[0] != '́' {
		t.Errorf("expected combining mark attached to 'a', got %v", cell.Combining)
	}
	if pos := s.CursorPosition(); pos.Column != 1 {
		t.Errorf("expected cursor not to advance, got column %d", pos.Column)
	}
	if got := s.LineText(0); got != "á" {
		t.Errorf("expected combined text, got %q", got)
	}
}

func TestScreenRepeatLastCharacter(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteText("A")
	s.RepeatLastCharacter(3)

	if got := s.LineText(0); got != "AAAA" {
		t.Errorf("expected 'AAAA', got %q", got)
	}
}

func TestScreenLineDrawingCharset(t *testing.T) {
	s := testScreen(3, 10)

	s.DesignateCharset(CharsetIndexG0, CharsetLineDrawing)
	s.WriteRune('q')

	if got := s.grid.CellAt(CellLocation{Line: 0, Column: 0}).Char; got != '─' {
		t.Errorf("expected line drawing translation, got %q", got)
	}

	s.DesignateCharset(CharsetIndexG0, CharsetASCII)
	s.WriteRune('q')

	if got := s.grid.CellAt(CellLocation{Line: 0, Column: 1}).Char; got != 'q' {
		t.Errorf("expected plain 'q', got %q", got)
	}
}

func TestScreenInsertMode(t *testing.T) {
	s := testScreen(3, 10)

	s.WriteText("ABC")
	s.state.SetModeFlag(ModeInsert, true)
	s.MoveCursorTo(0, 1)
	s.WriteText("XY")

	if got := s.LineText(0); got != "AXYBC" {
		t.Errorf("expected 'AXYBC' with insert mode, got %q", got)
	}
}

func TestScreenResetKeepsHistory(t *testing.T) {
	s := testScreen(2, 10)

	s.WriteText("old")
	s.MoveCursorTo(1, 0)
	s.Linefeed()
	s.Reset()

	if s.grid.HistoryLineCount() != 1 {
		t.Errorf("expected history preserved across reset, got %d", s.grid.HistoryLineCount())
	}
	if got := s.PageText(); strings.TrimSpace(got) != "" {
		t.Errorf("expected blank page after reset, got %q", got)
	}
}

func TestScreenDeviceReports(t *testing.T) {
	s := testScreen(24, 80)

	if got := s.DeviceStatusReport(); got != "\x1b[0n" {
		t.Errorf("unexpected DSR reply: %q", got)
	}
	if got := s.CursorPositionReport(); got != "\x1b[1;1R" {
		t.Errorf("unexpected CPR reply: %q", got)
	}

	s.MoveCursorTo(4, 9)
	if got := s.CursorPositionReport(); got != "\x1b[5;10R" {
		t.Errorf("unexpected CPR reply: %q", got)
	}

	if got := s.TextAreaSizeChars(); got != "\x1b[8;24;80t" {
		t.Errorf("unexpected text area size reply: %q", got)
	}
}

func TestScreenModeReports(t *testing.T) {
	s := testScreen(24, 80)

	// Autowrap is on by default.
	if got := s.ReportPrivateMode(7); got != "\x1b[?7;1$y" {
		t.Errorf("unexpected DECRQM reply for mode 7: %q", got)
	}

	// Sixel scrolling on means DECSDM reports reset.
	if got := s.ReportPrivateMode(80); got != "\x1b[?80;2$y" {
		t.Errorf("unexpected DECRQM reply for mode 80: %q", got)
	}

	// Unknown modes report not recognized.
	if got := s.ReportPrivateMode(12345); got != "\x1b[?12345;0$y" {
		t.Errorf("unexpected DECRQM reply for unknown mode: %q", got)
	}

	if got := s.ReportAnsiMode(4); got != "\x1b[4;2$y" {
		t.Errorf("unexpected DECRQM reply for insert mode: %q", got)
	}
}

func TestScreenPlaceImageScrolls(t *testing.T) {
	s := testScreen(3, 10)
	img := s.state.Images.Store(ImageFormatRGBA, 40, 40, make([]byte, 40*40*4))

	s.MoveCursorTo(2, 0)
	s.PlaceImage(img, 2, 2)

	// Placing a two-row image at the bottom row scrolls once.
	if s.grid.HistoryLineCount() != 1 {
		t.Errorf("expected 1 scrolled line, got %d", s.grid.HistoryLineCount())
	}

	cell := s.grid.CellAt(CellLocation{Line: 2, Column: 0})
	if cell.Fragment == nil || cell.Fragment.Image != img {
		t.Fatal("expected an image fragment at the cursor row")
	}
	if cell.Fragment.Offset.Line != 1 {
		t.Errorf("expected the second image row at the bottom, got offset %d", cell.Fragment.Offset.Line)
	}
	if pos := s.CursorPosition(); pos.Column != 2 {
		t.Errorf("expected cursor past the image, got column %d", pos.Column)
	}
}

func TestScreenPlaceImageNoScroll(t *testing.T) {
	s := testScreen(3, 10)
	s.state.SetModeFlag(ModeSixelScrolling, false)
	img := s.state.Images.Store(ImageFormatRGBA, 40, 40, make([]byte, 40*40*4))

	s.MoveCursorTo(2, 5)
	s.PlaceImage(img, 2, 2)

	// With scrolling disabled the image anchors at the page origin.
	cell := s.grid.CellAt(CellLocation{Line: 0, Column: 0})
	if cell.Fragment == nil {
		t.Fatal("expected an image fragment at the origin")
	}
	if s.grid.HistoryLineCount() != 0 {
		t.Error("expected no scroll with sixel scrolling disabled")
	}
	if pos := s.CursorPosition(); pos.Line != 2 || pos.Column != 5 {
		t.Errorf("expected cursor unmoved, got (%d, %d)", pos.Line, pos.Column)
	}
}
