package vtscreen

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// Status reports are pure string builders: each returns the reply the host
// would receive, and the caller routes it to the response sink. Keeping them
// side-effect free makes the exact reply bytes testable.

// CursorPositionReport answers DSR 6 (CPR). Coordinates are 1-based and, in
// origin mode, relative to the margin origin.
func (s *Screen) CursorPositionReport() string {
	line, col := s.reportedCursor()
	return fmt.Sprintf("\x1b[%d;%dR", line, col)
}

// ExtendedCursorPositionReport answers DSR ?6 (DECXCPR), which carries the
// page number after the coordinates.
func (s *Screen) ExtendedCursorPositionReport() string {
	line, col := s.reportedCursor()
	return fmt.Sprintf("\x1b[?%d;%d;1R", line, col)
}

func (s *Screen) reportedCursor() (line, col int) {
	pos := s.cursor.Position
	if s.state.HasMode(ModeOrigin) {
		return pos.Line - s.margin.Top + 1, pos.Column - s.margin.Left + 1
	}
	return pos.Line + 1, pos.Column + 1
}

// DeviceStatusReport answers DSR 5: no malfunction.
func (s *Screen) DeviceStatusReport() string {
	return "\x1b[0n"
}

// PrimaryDeviceAttributes answers DA1: a VT220-level terminal with sixel
// graphics (4), selective erase (6) and horizontal scrolling (21).
func (s *Screen) PrimaryDeviceAttributes() string {
	return "\x1b[?62;4;6;21c"
}

// SecondaryDeviceAttributes answers DA2 with the VT220 class and a firmware
// version of 1.0.
func (s *Screen) SecondaryDeviceAttributes() string {
	return "\x1b[>1;10;0c"
}

// TextAreaSizeChars answers XTWINOPS 18: the text area size in cells.
func (s *Screen) TextAreaSizeChars() string {
	size := s.grid.PageSize()
	return fmt.Sprintf("\x1b[8;%d;%dt", size.Lines, size.Columns)
}

// TextAreaSizePixels answers XTWINOPS 14: the text area size in pixels,
// derived from the cell pixel geometry.
func (s *Screen) TextAreaSizePixels() string {
	size := s.grid.PageSize()
	return fmt.Sprintf("\x1b[4;%d;%dt",
		size.Lines*s.state.CellPixelHeight, size.Columns*s.state.CellPixelWidth)
}

// DECRPM mode states.
const (
	modeNotRecognized = 0
	modeSet           = 1
	modeReset         = 2
)

// ReportPrivateMode answers DECRQM for a DEC private mode number.
func (s *Screen) ReportPrivateMode(number int) string {
	value := modeNotRecognized
	if mode, ok := privateModeFromNumber(number); ok {
		set := s.state.HasMode(mode)
		if number == 80 {
			// DECSDM set means sixel display mode, i.e. scrolling off.
			set = !set
		}
		if set {
			value = modeSet
		} else {
			value = modeReset
		}
	}
	return fmt.Sprintf("\x1b[?%d;%d$y", number, value)
}

// ReportAnsiMode answers DECRQM for an ANSI mode number.
func (s *Screen) ReportAnsiMode(number int) string {
	value := modeNotRecognized
	if mode, ok := ansiModeFromNumber(number); ok {
		if s.state.HasMode(mode) {
			value = modeSet
		} else {
			value = modeReset
		}
	}
	return fmt.Sprintf("\x1b[%d;%d$y", number, value)
}

// privateModeFromNumber maps a DEC private mode parameter to its flag.
func privateModeFromNumber(number int) (TerminalMode, bool) {
	switch number {
	case 1:
		return ModeCursorKeys, true
	case 3:
		return ModeColumnMode, true
	case 5:
		return ModeReverseVideo, true
	case 6:
		return ModeOrigin, true
	case 7:
		return ModeLineWrap, true
	case 12:
		return ModeBlinkingCursor, true
	case 25:
		return ModeShowCursor, true
	case 69:
		return ModeLeftRightMargin, true
	case 80:
		return ModeSixelScrolling, true
	case 1000:
		return ModeReportMouseClicks, true
	case 1002:
		return ModeReportCellMouseMotion, true
	case 1003:
		return ModeReportAllMouseMotion, true
	case 1004:
		return ModeReportFocusInOut, true
	case 1005:
		return ModeUTF8Mouse, true
	case 1006:
		return ModeSGRMouse, true
	case 1007:
		return ModeAlternateScroll, true
	case 1049:
		return ModeSwapScreenAndSetRestoreCursor, true
	case 2004:
		return ModeBracketedPaste, true
	default:
		return 0, false
	}
}

// ansiModeFromNumber maps an ANSI mode parameter to its flag.
func ansiModeFromNumber(number int) (TerminalMode, bool) {
	switch number {
	case 4:
		return ModeInsert, true
	case 20:
		return ModeLineFeedNewLine, true
	default:
		return 0, false
	}
}

// RequestStatusString answers DECRQSS for a setting mnemonic: the final
// characters of the sequence that would set it ("r" for DECSTBM, "m" for SGR,
// `"q` for DECSCA, " q" for DECSCUSR). Unrecognized settings get the error
// reply.
func (s *Screen) RequestStatusString(setting string) string {
	switch setting {
	case "r":
		return fmt.Sprintf("\x1bP1$r%d;%dr\x1b\\", s.margin.Top+1, s.margin.Bottom+1)
	case "m":
		return fmt.Sprintf("\x1bP1$r%sm\x1b\\", s.penSGR())
	case "\"q":
		v := 0
		if s.cursor.Protected {
			v = 1
		}
		return fmt.Sprintf("\x1bP1$r%d\"q\x1b\\", v)
	case " q":
		return fmt.Sprintf("\x1bP1$r%d q\x1b\\", int(s.cursor.Style))
	default:
		return "\x1bP0$r\x1b\\"
	}
}

// penSGR renders the current pen as SGR parameters, starting from a reset.
func (s *Screen) penSGR() string {
	return sgrParams(s.cursor.Rendition)
}

// sgrParams renders one pen as SGR parameters, starting from a reset.
func sgrParams(pen GraphicsAttributes) string {
	params := []string{"0"}
	add := func(p string) { params = append(params, p) }

	if pen.Flags&CellFlagBold != 0 {
		add("1")
	}
	if pen.Flags&CellFlagDim != 0 {
		add("2")
	}
	if pen.Flags&CellFlagItalic != 0 {
		add("3")
	}
	switch {
	case pen.Flags&CellFlagUnderline != 0:
		add("4")
	case pen.Flags&CellFlagDoubleUnderline != 0:
		add("4:2")
	case pen.Flags&CellFlagCurlyUnderline != 0:
		add("4:3")
	case pen.Flags&CellFlagDottedUnderline != 0:
		add("4:4")
	case pen.Flags&CellFlagDashedUnderline != 0:
		add("4:5")
	}
	if pen.Flags&CellFlagBlinkSlow != 0 {
		add("5")
	}
	if pen.Flags&CellFlagBlinkFast != 0 {
		add("6")
	}
	if pen.Flags&CellFlagReverse != 0 {
		add("7")
	}
	if pen.Flags&CellFlagHidden != 0 {
		add("8")
	}
	if pen.Flags&CellFlagStrike != 0 {
		add("9")
	}
	if p, ok := colorSGR(pen.Fg, 30); ok {
		add(p)
	}
	if p, ok := colorSGR(pen.Bg, 40); ok {
		add(p)
	}
	return strings.Join(params, ";")
}

// colorSGR renders one pen color as an SGR parameter. base is 30 for the
// foreground group and 40 for the background group. Default colors render
// nothing: the leading reset already selected them.
func colorSGR(c color.Color, base int) (string, bool) {
	switch v := c.(type) {
	case color.RGBA:
		return fmt.Sprintf("%d;2;%d;%d;%d", base+8, v.R, v.G, v.B), true
	case *IndexedColor:
		return fmt.Sprintf("%d;5;%d", base+8, v.Index), true
	case *NamedColor:
		switch {
		case v.Name >= 0 && v.Name <= 7:
			return fmt.Sprintf("%d", base+v.Name), true
		case v.Name >= 8 && v.Name <= 15:
			return fmt.Sprintf("%d", base+60+v.Name-8), true
		}
	}
	return "", false
}

// RequestTabStops answers DECTABSR: the 1-based tab stop columns joined
// with "/".
func (s *Screen) RequestTabStops() string {
	var stops []string
	for col, set := range s.tabs {
		if set {
			stops = append(stops, fmt.Sprintf("%d", col+1))
		}
	}
	return fmt.Sprintf("\x1bP2$u%s\x1b\\", strings.Join(stops, "/"))
}

// RequestCapability answers XTGETTCAP for one capability name. The reply
// carries the name and value hex encoded, per xterm.
func (s *Screen) RequestCapability(name string) string {
	var value string
	switch name {
	case "TN", "name":
		value = "xterm-256color"
	case "Co", "colors":
		value = "256"
	case "RGB":
		value = "8/8/8"
	default:
		return fmt.Sprintf("\x1bP0+r%s\x1b\\", hex.EncodeToString([]byte(name)))
	}
	return fmt.Sprintf("\x1bP1+r%s=%s\x1b\\",
		hex.EncodeToString([]byte(name)), hex.EncodeToString([]byte(value)))
}
