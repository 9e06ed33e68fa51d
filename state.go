package vtscreen

// TerminalMode is a bitmask of terminal behavior flags.
// Multiple modes can be active simultaneously.
type TerminalMode uint32

const (
	// ModeCursorKeys enables cursor key mode (DECCKM).
	ModeCursorKeys TerminalMode = 1 << iota
	// ModeColumnMode enables 132-column mode (DECCOLM).
	ModeColumnMode
	// ModeInsert enables insert mode (characters shift right instead of overwrite).
	ModeInsert
	// ModeOrigin enables origin mode (cursor positioning relative to the margins).
	ModeOrigin
	// ModeLineWrap enables automatic line wrapping at the right margin.
	ModeLineWrap
	// ModeBlinkingCursor enables blinking cursor.
	ModeBlinkingCursor
	// ModeLineFeedNewLine makes line feed also move to column 0.
	ModeLineFeedNewLine
	// ModeShowCursor makes the cursor visible.
	ModeShowCursor
	// ModeReportMouseClicks enables mouse click reporting.
	ModeReportMouseClicks
	// ModeReportCellMouseMotion enables mouse motion reporting (cell-based).
	ModeReportCellMouseMotion
	// ModeReportAllMouseMotion enables reporting of all mouse motion events.
	ModeReportAllMouseMotion
	// ModeReportFocusInOut enables focus in/out event reporting.
	ModeReportFocusInOut
	// ModeUTF8Mouse enables UTF-8 mouse encoding.
	ModeUTF8Mouse
	// ModeSGRMouse enables SGR mouse encoding.
	ModeSGRMouse
	// ModeAlternateScroll enables alternate scroll mode.
	ModeAlternateScroll
	// ModeUrgencyHints enables urgency hints.
	ModeUrgencyHints
	// ModeSwapScreenAndSetRestoreCursor swaps to the alternate screen and
	// saves the cursor.
	ModeSwapScreenAndSetRestoreCursor
	// ModeBracketedPaste enables bracketed paste mode.
	ModeBracketedPaste
	// ModeKeypadApplication enables application keypad mode.
	ModeKeypadApplication
	// ModeLeftRightMargin enables left/right margin support (DECLRMM).
	ModeLeftRightMargin
	// ModeSixelScrolling makes sixel images scroll with the text (DECSDM off).
	ModeSixelScrolling
	// ModeReverseVideo swaps default foreground and background (DECSCNM).
	ModeReverseVideo
)

// defaultModes are the flags active after power-up and after RIS.
const defaultModes = ModeLineWrap | ModeShowCursor | ModeSixelScrolling

// TerminalState holds everything shared between the primary and alternate
// screens: mode flags, the color palette, the window title and its stack,
// interned hyperlinks and decoded images.
type TerminalState struct {
	Modes      TerminalMode
	savedModes map[TerminalMode]bool

	Palette    *ColorPalette
	Hyperlinks *HyperlinkStorage
	Images     *ImagePool

	Title      string
	titleStack []string

	WorkingDirectory string

	// CellPixelWidth/Height describe the glyph cell in pixels; image
	// placement converts pixel extents to grid extents through them.
	CellPixelWidth  int
	CellPixelHeight int

	// InstructionCounter counts handled control functions and printed
	// characters, a cheap measure of processing activity.
	InstructionCounter uint64
}

// maxTitleStackDepth bounds the XTPUSHTITLE stack like xterm does.
const maxTitleStackDepth = 10

// NewTerminalState creates the default state with the given cell pixel
// geometry.
func NewTerminalState(cellPixelWidth, cellPixelHeight int) *TerminalState {
	return &TerminalState{
		Modes:           defaultModes,
		savedModes:      make(map[TerminalMode]bool),
		Palette:         NewColorPalette(),
		Hyperlinks:      NewHyperlinkStorage(),
		Images:          NewImagePool(DefaultImagePoolBudget),
		CellPixelWidth:  cellPixelWidth,
		CellPixelHeight: cellPixelHeight,
	}
}

// HasMode returns true if the given mode flag is enabled.
func (s *TerminalState) HasMode(mode TerminalMode) bool {
	return s.Modes&mode != 0
}

// SetModeFlag enables or disables a mode flag.
func (s *TerminalState) SetModeFlag(mode TerminalMode, enable bool) {
	if enable {
		s.Modes |= mode
	} else {
		s.Modes &^= mode
	}
}

// SaveMode records the current value of a mode flag (XTSAVE).
func (s *TerminalState) SaveMode(mode TerminalMode) {
	s.savedModes[mode] = s.HasMode(mode)
}

// RestoreMode restores a previously saved mode flag (XTRESTORE). Flags that
// were never saved are left untouched.
func (s *TerminalState) RestoreMode(mode TerminalMode) {
	if v, ok := s.savedModes[mode]; ok {
		s.SetModeFlag(mode, v)
	}
}

// PushTitle saves the current title on the title stack.
func (s *TerminalState) PushTitle() {
	if len(s.titleStack) >= maxTitleStackDepth {
		s.titleStack = s.titleStack[1:]
	}
	s.titleStack = append(s.titleStack, s.Title)
}

// PopTitle restores the most recently pushed title. Popping an empty stack
// leaves the title unchanged.
func (s *TerminalState) PopTitle() {
	if len(s.titleStack) == 0 {
		return
	}
	s.Title = s.titleStack[len(s.titleStack)-1]
	s.titleStack = s.titleStack[:len(s.titleStack)-1]
}

// Reset restores power-up defaults. The working directory and cell geometry
// survive a reset.
func (s *TerminalState) Reset() {
	s.Modes = defaultModes
	s.savedModes = make(map[TerminalMode]bool)
	s.Palette.Reset()
	s.Hyperlinks.Reset()
	s.Images.Reset()
	s.Title = ""
	s.titleStack = nil
	s.InstructionCounter = 0
}
