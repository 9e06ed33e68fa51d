package vtscreen

import (
	"encoding/base64"
	"fmt"
	"image/color"

	"github.com/danielgatis/go-ansicode"
)

// ApplicationCommandReceived processes an APC sequence. Kitty graphics
// commands (leading 'G') are handled by the graphics engine; everything else
// goes to the configured APC provider.
func (t *Terminal) ApplicationCommandReceived(data []byte) {
	if len(data) > 0 && data[0] == 'G' {
		if !t.kittyEnabled {
			return
		}
		t.mu.Lock()
		t.state.InstructionCounter++
		response := t.kitty.Handle(data[1:], t.active)
		t.mu.Unlock()
		t.writeResponse(response)
		return
	}

	t.apcProvider.Receive(data)
}

// Backspace moves the cursor left one column, stopping at the left margin.
func (t *Terminal) Backspace() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.Backspace()
}

// Bell triggers the bell provider.
func (t *Terminal) Bell() {
	t.bellProvider.Ring()
}

// CarriageReturn moves the cursor to the left margin of the current line.
func (t *Terminal) CarriageReturn() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.CarriageReturn()
}

// ClearLine erases part of the cursor line (EL) using the current background.
func (t *Terminal) ClearLine(mode ansicode.LineClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	switch mode {
	case ansicode.LineClearModeRight:
		t.active.EraseInLine(0)
	case ansicode.LineClearModeLeft:
		t.active.EraseInLine(1)
	case ansicode.LineClearModeAll:
		t.active.EraseInLine(2)
	}
}

// ClearScreen erases part of the screen (ED) using the current background.
func (t *Terminal) ClearScreen(mode ansicode.ClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	switch mode {
	case ansicode.ClearModeBelow:
		t.active.EraseInDisplay(0)
	case ansicode.ClearModeAbove:
		t.active.EraseInDisplay(1)
	case ansicode.ClearModeAll:
		t.active.EraseInDisplay(2)
	case ansicode.ClearModeSaved:
		t.active.EraseInDisplay(3)
	}
}

// ClearTabs removes the tab stop under the cursor or all tab stops (TBC).
func (t *Terminal) ClearTabs(mode ansicode.TabulationClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	switch mode {
	case ansicode.TabulationClearModeCurrent:
		t.active.ClearTabStop()
	case ansicode.TabulationClearModeAll:
		t.active.ClearAllTabStops()
	}
}

// ClipboardLoad answers an OSC 52 query with the clipboard content from the
// provider, base64 encoded.
func (t *Terminal) ClipboardLoad(clipboard byte, terminator string) {
	content := t.clipboardProvider.Read(clipboard)
	if content == "" {
		return
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	t.writeResponse("\x1b]52;" + string(clipboard) + ";" + encoded + terminator)
}

// ClipboardStore writes data to the clipboard provider via OSC 52.
func (t *Terminal) ClipboardStore(clipboard byte, data []byte) {
	t.clipboardProvider.Write(clipboard, data)
}

// ConfigureCharset assigns a character set to one of the G0-G3 slots.
func (t *Terminal) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.DesignateCharset(CharsetIndex(index), Charset(charset))
}

// Decaln fills the screen with 'E' characters (DEC screen alignment test).
func (t *Terminal) Decaln() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.AlignmentPattern()
}

// DeleteChars removes n characters at the cursor, shifting the rest of the
// line left (DCH).
func (t *Terminal) DeleteChars(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.DeleteCharacters(n)
}

// DeleteLines removes n lines at the cursor, shifting the scroll region up
// (DL).
func (t *Terminal) DeleteLines(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.DeleteLines(n)
}

// DeviceStatus answers DSR queries (5: ready, 6: cursor position).
func (t *Terminal) DeviceStatus(n int) {
	t.mu.RLock()
	var response string
	switch n {
	case 5:
		response = t.active.DeviceStatusReport()
	case 6:
		response = t.active.CursorPositionReport()
	}
	t.mu.RUnlock()

	t.writeResponse(response)
}

// EraseChars resets n characters at the cursor without shifting (ECH).
func (t *Terminal) EraseChars(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.EraseCharacters(n)
}

// Goto moves the cursor to an absolute position (CUP). Coordinates are
// 0-based; origin mode makes them relative to the margins.
func (t *Terminal) Goto(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.MoveCursorTo(row, col)
}

// GotoCol moves the cursor to an absolute column on the current line (CHA).
func (t *Terminal) GotoCol(col int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.MoveCursorToColumn(col)
}

// GotoLine moves the cursor to an absolute line in the current column (VPA).
func (t *Terminal) GotoLine(row int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.MoveCursorToLine(row)
}

// HorizontalTabSet sets a tab stop at the cursor column (HTS).
func (t *Terminal) HorizontalTabSet() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.SetTabStop()
}

// IdentifyTerminal answers a device attributes request (DA1/DA2).
func (t *Terminal) IdentifyTerminal(b byte) {
	t.mu.RLock()
	var response string
	if b == '>' {
		response = t.active.SecondaryDeviceAttributes()
	} else {
		response = t.active.PrimaryDeviceAttributes()
	}
	t.mu.RUnlock()

	t.writeResponse(response)
}

// Input writes a character at the cursor. Handles wide characters, combining
// marks, charset translation, insert mode, and deferred autowrap.
func (t *Terminal) Input(r rune) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active.WriteRune(r)
}

// InsertBlank inserts n blank characters at the cursor, shifting the rest of
// the line right (ICH).
func (t *Terminal) InsertBlank(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.InsertCharacters(n)
}

// InsertBlankLines inserts n blank lines at the cursor, shifting the scroll
// region down (IL).
func (t *Terminal) InsertBlankLines(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.InsertLines(n)
}

// LineFeed moves the cursor down one line, scrolling at the bottom margin.
func (t *Terminal) LineFeed() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.Linefeed()
}

// MoveBackward moves the cursor left n columns, stopping at the margin (CUB).
func (t *Terminal) MoveBackward(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.MoveCursorBackward(n)
}

// MoveBackwardTabs moves the cursor left to the previous n tab stops (CBT).
func (t *Terminal) MoveBackwardTabs(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.TabBackward(n)
}

// MoveDown moves the cursor down n lines, stopping at the margin (CUD).
func (t *Terminal) MoveDown(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.MoveCursorDown(n)
}

// MoveDownCr moves the cursor down n lines and to the left margin (CNL).
func (t *Terminal) MoveDownCr(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.MoveCursorNextLine(n)
}

// MoveForward moves the cursor right n columns, stopping at the margin (CUF).
func (t *Terminal) MoveForward(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.MoveCursorForward(n)
}

// MoveForwardTabs moves the cursor right to the next n tab stops (CHT).
func (t *Terminal) MoveForwardTabs(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.TabForward(n)
}

// MoveUp moves the cursor up n lines, stopping at the margin (CUU).
func (t *Terminal) MoveUp(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.MoveCursorUp(n)
}

// MoveUpCr moves the cursor up n lines and to the left margin (CPL).
func (t *Terminal) MoveUpCr(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.MoveCursorPrevLine(n)
}

// PopKeyboardMode removes the top n entries from the keyboard mode stack.
func (t *Terminal) PopKeyboardMode(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < n && len(t.keyboardModes) > 0; i++ {
		t.keyboardModes = t.keyboardModes[:len(t.keyboardModes)-1]
	}
}

// PopTitle restores the previously pushed window title (XTPOPTITLE).
func (t *Terminal) PopTitle() {
	t.mu.Lock()
	t.state.PopTitle()
	title := t.state.Title
	t.mu.Unlock()

	t.titleProvider.PopTitle()
	t.titleProvider.SetTitle(title)
}

// PrivacyMessageReceived forwards a PM sequence to the configured provider.
func (t *Terminal) PrivacyMessageReceived(data []byte) {
	t.pmProvider.Receive(data)
}

// PushKeyboardMode pushes a keyboard mode onto the stack.
func (t *Terminal) PushKeyboardMode(mode ansicode.KeyboardMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.keyboardModes = append(t.keyboardModes, mode)
}

// PushTitle saves the current window title on the stack (XTPUSHTITLE).
func (t *Terminal) PushTitle() {
	t.mu.Lock()
	t.state.PushTitle()
	t.mu.Unlock()

	t.titleProvider.PushTitle()
}

// ReportKeyboardMode answers a keyboard mode query.
func (t *Terminal) ReportKeyboardMode() {
	t.mu.RLock()
	var mode ansicode.KeyboardMode
	if len(t.keyboardModes) > 0 {
		mode = t.keyboardModes[len(t.keyboardModes)-1]
	}
	t.mu.RUnlock()

	t.writeResponse(fmt.Sprintf("\x1b[?%du", mode))
}

// ReportModifyOtherKeys answers a modify-other-keys query.
func (t *Terminal) ReportModifyOtherKeys() {
	t.mu.RLock()
	modify := t.modifyOtherKeys
	t.mu.RUnlock()

	t.writeResponse(fmt.Sprintf("\x1b[>4;%dm", modify))
}

// ResetColor restores a palette entry to its default value (OSC 104).
func (t *Terminal) ResetColor(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Palette.ResetIndexed(i)
}

// ResetState performs a hard reset (RIS): both screens, modes, palette,
// images, hyperlinks, tab stops, and keyboard state return to power-up
// defaults.
func (t *Terminal) ResetState() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Reset()
	t.primary.Reset()
	t.alternate.Reset()
	t.active = t.primary
	t.keyboardModes = t.keyboardModes[:0]
	t.modifyOtherKeys = 0
	t.kitty = KittyEngine{}
	t.userVars = make(map[string]string)
}

// RestoreCursorPosition restores the saved cursor state (DECRC).
func (t *Terminal) RestoreCursorPosition() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.RestoreCursor()
}

// ReverseIndex moves the cursor up one line, scrolling down at the top
// margin (RI).
func (t *Terminal) ReverseIndex() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.ReverseIndex()
}

// SaveCursorPosition saves the cursor state (DECSC).
func (t *Terminal) SaveCursorPosition() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.SaveCursor()
}

// ScrollDown scrolls the scroll region down n lines (SD).
func (t *Terminal) ScrollDown(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.ScrollDown(n)
}

// ScrollUp scrolls the scroll region up n lines (SU).
func (t *Terminal) ScrollUp(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.ScrollUp(n)
}

// SetActiveCharset selects which of G0-G3 is active (SI/SO/LS2/LS3).
func (t *Terminal) SetActiveCharset(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n >= 0 && n < 4 {
		t.active.SelectCharset(CharsetIndex(n))
	}
}

// SetColor stores a custom color in the palette (OSC 4).
func (t *Terminal) SetColor(index int, c color.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Palette.SetIndexed(index, c)
}

// SetCursorStyle changes the cursor rendering style (DECSCUSR).
func (t *Terminal) SetCursorStyle(style ansicode.CursorStyle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active.SetCursorStyle(CursorStyle(style))
}

// SetDynamicColor answers a dynamic color query (OSC 10/11/12) with the
// current color value.
func (t *Terminal) SetDynamicColor(prefix string, index int, terminator string) {
	t.mu.RLock()
	var c color.Color
	if index < 256 {
		c = &IndexedColor{Index: index}
	} else {
		c = &NamedColor{Name: index}
	}
	rgba := t.state.Palette.Resolve(c, true)
	t.mu.RUnlock()

	t.writeResponse(fmt.Sprintf("\x1b]%s;rgb:%02x/%02x/%02x%s", prefix, rgba.R, rgba.G, rgba.B, terminator))
}

// SetHyperlink sets the active hyperlink (OSC 8) for subsequently written
// characters. A nil or empty hyperlink clears it.
func (t *Terminal) SetHyperlink(hyperlink *ansicode.Hyperlink) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if hyperlink == nil {
		t.active.Pen().Hyperlink = 0
		return
	}
	t.active.Pen().Hyperlink = t.state.Hyperlinks.Intern(hyperlink.ID, hyperlink.URI)
}

// SetKeyboardMode modifies the top keyboard mode on the stack using the
// given behavior (replace, union, or difference).
func (t *Terminal) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {
	t.mu.Lock()
	defer t.mu.Unlock()

	currentMode := ansicode.KeyboardModeNoMode
	if len(t.keyboardModes) > 0 {
		currentMode = t.keyboardModes[len(t.keyboardModes)-1]
	}

	var newMode ansicode.KeyboardMode
	switch behavior {
	case ansicode.KeyboardModeBehaviorReplace:
		newMode = mode
	case ansicode.KeyboardModeBehaviorUnion:
		newMode = currentMode | mode
	case ansicode.KeyboardModeBehaviorDifference:
		newMode = currentMode &^ mode
	}

	if len(t.keyboardModes) > 0 {
		t.keyboardModes[len(t.keyboardModes)-1] = newMode
	} else {
		t.keyboardModes = append(t.keyboardModes, newMode)
	}
}

// SetKeypadApplicationMode enables application keypad mode (DECKPAM).
func (t *Terminal) SetKeypadApplicationMode() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.SetModeFlag(ModeKeypadApplication, true)
}

// SetMode enables a terminal mode. Some modes carry side effects: origin
// mode homes the cursor and mode 1049 switches to the alternate screen.
func (t *Terminal) SetMode(mode ansicode.TerminalMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setModeLocked(mode, true)
}

// UnsetMode disables a terminal mode.
func (t *Terminal) UnsetMode(mode ansicode.TerminalMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setModeLocked(mode, false)
}

func (t *Terminal) setModeLocked(mode ansicode.TerminalMode, set bool) {
	t.state.InstructionCounter++

	var m TerminalMode

	switch mode {
	case ansicode.TerminalModeCursorKeys:
		m = ModeCursorKeys
	case ansicode.TerminalModeColumnMode:
		m = ModeColumnMode
		t.active.EraseInDisplay(2)
		t.active.resetMargins()
		t.active.MoveCursorTo(0, 0)
	case ansicode.TerminalModeInsert:
		m = ModeInsert
	case ansicode.TerminalModeOrigin:
		m = ModeOrigin
		t.state.SetModeFlag(ModeOrigin, set)
		t.active.MoveCursorTo(0, 0)
	case ansicode.TerminalModeLineWrap:
		m = ModeLineWrap
		if !set {
			t.active.cursor.WrapPending = false
		}
	case ansicode.TerminalModeBlinkingCursor:
		m = ModeBlinkingCursor
	case ansicode.TerminalModeLineFeedNewLine:
		m = ModeLineFeedNewLine
	case ansicode.TerminalModeShowCursor:
		m = ModeShowCursor
		t.primary.SetCursorVisible(set)
		t.alternate.SetCursorVisible(set)
	case ansicode.TerminalModeReportMouseClicks:
		m = ModeReportMouseClicks
	case ansicode.TerminalModeReportCellMouseMotion:
		m = ModeReportCellMouseMotion
	case ansicode.TerminalModeReportAllMouseMotion:
		m = ModeReportAllMouseMotion
	case ansicode.TerminalModeReportFocusInOut:
		m = ModeReportFocusInOut
	case ansicode.TerminalModeUTF8Mouse:
		m = ModeUTF8Mouse
	case ansicode.TerminalModeSGRMouse:
		m = ModeSGRMouse
	case ansicode.TerminalModeAlternateScroll:
		m = ModeAlternateScroll
	case ansicode.TerminalModeUrgencyHints:
		m = ModeUrgencyHints
	case ansicode.TerminalModeSwapScreenAndSetRestoreCursor:
		m = ModeSwapScreenAndSetRestoreCursor
		if set {
			if t.active != t.alternate {
				t.primary.SaveCursor()
				t.alternate.cursor = t.primary.cursor
				t.active = t.alternate
				t.active.EraseInDisplay(2)
			}
		} else {
			if t.active != t.primary {
				t.active = t.primary
				t.primary.RestoreCursor()
			}
		}
	case ansicode.TerminalModeBracketedPaste:
		m = ModeBracketedPaste
	default:
		return
	}

	t.state.SetModeFlag(m, set)
}

// SetModifyOtherKeys sets how modifier keys are reported (XTMODKEYS).
func (t *Terminal) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.modifyOtherKeys = modify
}

// SetScrollingRegion sets the top and bottom margins (DECSTBM). Values are
// 1-based; the cursor moves to the home position.
func (t *Terminal) SetScrollingRegion(top, bottom int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.SetScrollingRegion(top, bottom)
}

// StartOfStringReceived forwards a SOS sequence to the configured provider.
func (t *Terminal) StartOfStringReceived(data []byte) {
	t.sosProvider.Receive(data)
}

// SetTerminalCharAttribute applies an SGR attribute to the current pen.
func (t *Terminal) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	pen := t.active.Pen()

	switch attr.Attr {
	case ansicode.CharAttributeReset:
		hyperlink := pen.Hyperlink
		*pen = NewGraphicsAttributes()
		pen.Hyperlink = hyperlink

	case ansicode.CharAttributeBold:
		pen.SetFlag(CellFlagBold)

	case ansicode.CharAttributeDim:
		pen.SetFlag(CellFlagDim)

	case ansicode.CharAttributeItalic:
		pen.SetFlag(CellFlagItalic)

	case ansicode.CharAttributeUnderline:
		pen.ClearFlag(underlineMask)
		pen.SetFlag(CellFlagUnderline)

	case ansicode.CharAttributeDoubleUnderline:
		pen.ClearFlag(underlineMask)
		pen.SetFlag(CellFlagDoubleUnderline)

	case ansicode.CharAttributeCurlyUnderline:
		pen.ClearFlag(underlineMask)
		pen.SetFlag(CellFlagCurlyUnderline)

	case ansicode.CharAttributeDottedUnderline:
		pen.ClearFlag(underlineMask)
		pen.SetFlag(CellFlagDottedUnderline)

	case ansicode.CharAttributeDashedUnderline:
		pen.ClearFlag(underlineMask)
		pen.SetFlag(CellFlagDashedUnderline)

	case ansicode.CharAttributeBlinkSlow:
		pen.SetFlag(CellFlagBlinkSlow)

	case ansicode.CharAttributeBlinkFast:
		pen.SetFlag(CellFlagBlinkFast)

	case ansicode.CharAttributeReverse:
		pen.SetFlag(CellFlagReverse)

	case ansicode.CharAttributeHidden:
		pen.SetFlag(CellFlagHidden)

	case ansicode.CharAttributeStrike:
		pen.SetFlag(CellFlagStrike)

	case ansicode.CharAttributeCancelBold:
		pen.ClearFlag(CellFlagBold)

	case ansicode.CharAttributeCancelBoldDim:
		pen.ClearFlag(CellFlagBold | CellFlagDim)

	case ansicode.CharAttributeCancelItalic:
		pen.ClearFlag(CellFlagItalic)

	case ansicode.CharAttributeCancelUnderline:
		pen.ClearFlag(underlineMask)

	case ansicode.CharAttributeCancelBlink:
		pen.ClearFlag(CellFlagBlinkSlow | CellFlagBlinkFast)

	case ansicode.CharAttributeCancelReverse:
		pen.ClearFlag(CellFlagReverse)

	case ansicode.CharAttributeCancelHidden:
		pen.ClearFlag(CellFlagHidden)

	case ansicode.CharAttributeCancelStrike:
		pen.ClearFlag(CellFlagStrike)

	case ansicode.CharAttributeForeground:
		pen.Fg = resolveColor(attr)

	case ansicode.CharAttributeBackground:
		pen.Bg = resolveColor(attr)

	case ansicode.CharAttributeUnderlineColor:
		if attr.RGBColor == nil && attr.IndexedColor == nil && attr.NamedColor == nil {
			pen.UnderlineColor = nil
		} else {
			pen.UnderlineColor = resolveColor(attr)
		}
	}
}

// resolveColor converts an attribute's color specification into a cell
// color, falling back to the default for the attribute kind.
func resolveColor(attr ansicode.TerminalCharAttribute) color.Color {
	if attr.RGBColor != nil {
		return color.RGBA{
			R: attr.RGBColor.R,
			G: attr.RGBColor.G,
			B: attr.RGBColor.B,
			A: 255,
		}
	}

	if attr.IndexedColor != nil {
		return &IndexedColor{Index: int(attr.IndexedColor.Index)}
	}

	if attr.NamedColor != nil {
		return &NamedColor{Name: int(*attr.NamedColor)}
	}

	if attr.Attr == ansicode.CharAttributeBackground {
		return &NamedColor{Name: NamedColorBackground}
	}
	return &NamedColor{Name: NamedColorForeground}
}

// SetTitle updates the window title and notifies the title provider.
func (t *Terminal) SetTitle(title string) {
	t.mu.Lock()
	t.state.Title = title
	t.mu.Unlock()

	t.titleProvider.SetTitle(title)
}

// Substitute replaces the character at the cursor with '?' (SUB).
func (t *Terminal) Substitute() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cell := t.active.grid.UseCellAt(t.active.CursorPosition())
	cell.Char = '?'
}

// Tab moves the cursor right to the next n tab stops (HT).
func (t *Terminal) Tab(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	t.active.TabForward(n)
}

// TextAreaSizeChars answers XTWINOPS 18 with the text area size in cells.
func (t *Terminal) TextAreaSizeChars() {
	t.mu.RLock()
	response := t.active.TextAreaSizeChars()
	t.mu.RUnlock()

	t.writeResponse(response)
}

// TextAreaSizePixels answers XTWINOPS 14 with the text area size in pixels.
func (t *Terminal) TextAreaSizePixels() {
	t.mu.RLock()
	response := t.active.TextAreaSizePixels()
	t.mu.RUnlock()

	t.writeResponse(response)
}

// CellSizePixels answers XTWINOPS 16 with the cell size in pixels.
func (t *Terminal) CellSizePixels() {
	cellWidth, cellHeight := t.cellSizePixels()
	t.writeResponse(fmt.Sprintf("\x1b[6;%d;%dt", cellHeight, cellWidth))
}

// UnsetKeypadApplicationMode disables application keypad mode (DECKPNM).
func (t *Terminal) UnsetKeypadApplicationMode() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.SetModeFlag(ModeKeypadApplication, false)
}

// SetWorkingDirectory records the working directory URI reported via OSC 7.
func (t *Terminal) SetWorkingDirectory(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.WorkingDirectory = uri
}

// WorkingDirectoryPath extracts the filesystem path from the OSC 7 URI
// (file://hostname/path).
func (t *Terminal) WorkingDirectoryPath() string {
	t.mu.RLock()
	uri := t.state.WorkingDirectory
	t.mu.RUnlock()

	const prefix = "file://"
	if len(uri) <= len(prefix) || uri[:len(prefix)] != prefix {
		return ""
	}
	rest := uri[len(prefix):]

	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[i:]
		}
	}
	return ""
}

// SixelReceived decodes a sixel image and places it at the cursor.
func (t *Terminal) SixelReceived(params [][]uint16, data []byte) {
	if !t.sixelEnabled {
		return
	}

	var p []int64
	for _, param := range params {
		if len(param) > 0 {
			p = append(p, int64(param[0]))
		}
	}

	width, height, pixels := DecodeSixel(p, data)
	if width == 0 || height == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.InstructionCounter++
	img := t.state.Images.Store(ImageFormatRGBA, width, height, pixels)
	if img == nil {
		t.failureProvider.Failure("sixel", "image rejected by pool")
		return
	}

	cellWidth, cellHeight := t.state.CellPixelWidth, t.state.CellPixelHeight
	cols := int((width + uint32(cellWidth) - 1) / uint32(cellWidth))
	rows := int((height + uint32(cellHeight) - 1) / uint32(cellHeight))

	t.active.PlaceImage(img, rows, cols)
}

// ShellIntegrationMark forwards an OSC 133 semantic prompt mark to the
// configured provider.
func (t *Terminal) ShellIntegrationMark(mark ShellIntegrationMark, exitCode int) {
	t.markProvider.Mark(mark, exitCode)
}

// DesktopNotification forwards an OSC 99 notification to the configured
// provider and writes back its query response, if any.
func (t *Terminal) DesktopNotification(payload *NotificationPayload) {
	response := t.notificationProvider.Notify(payload)
	t.writeResponse(response)
}

// SetUserVar records a user variable set via OSC 1337 SetUserVar.
func (t *Terminal) SetUserVar(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.userVars[name] = value
}
