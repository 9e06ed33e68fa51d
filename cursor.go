package vtscreen

// CellLocation identifies a cell in the grid (0-based). Line may be negative
// when referring into scrollback history (-1 is the most recent history line).
type CellLocation struct {
	Line   int
	Column int
}

// Before returns true if this location comes before other in reading order
// (top-to-bottom, left-to-right).
func (p CellLocation) Before(other CellLocation) bool {
	if p.Line < other.Line {
		return true
	}
	return p.Line == other.Line && p.Column < other.Column
}

// Equal returns true if both line and column match.
func (p CellLocation) Equal(other CellLocation) bool {
	return p.Line == other.Line && p.Column == other.Column
}

// CursorStyle determines how the cursor is rendered.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Cursor tracks the screen's write position and pen. Position is always a
// real page coordinate; origin mode only affects how incoming logical
// coordinates are translated, never how the position is stored.
//
// WrapPending implements deferred autowrap: writing into the last column
// sets it instead of moving the cursor, and the flag is consumed by the next
// printable character (which then wraps first) or cancelled by any explicit
// cursor movement.
type Cursor struct {
	Position    CellLocation
	OriginMode  bool
	WrapPending bool
	Visible     bool
	Style       CursorStyle
	Rendition   GraphicsAttributes
	Protected   bool // DECSCA: newly written cells get CellFlagProtected
}

// NewCursor creates a visible cursor at (0, 0) with the default pen and
// blinking block style.
func NewCursor() Cursor {
	return Cursor{
		Visible:   true,
		Style:     CursorStyleBlinkingBlock,
		Rendition: NewGraphicsAttributes(),
	}
}

// Pen returns the rendition that newly written cells receive, including the
// protected flag when DECSCA guarding is active.
func (c *Cursor) Pen() GraphicsAttributes {
	attrs := c.Rendition
	if c.Protected {
		attrs.Flags |= CellFlagProtected
	}
	return attrs
}

// SavedCursor stores the state captured by DECSC for later DECRC restoration,
// and doubles as the save slot used when switching to the alternate screen.
type SavedCursor struct {
	Position      CellLocation
	OriginMode    bool
	Rendition     GraphicsAttributes
	Protected     bool
	ActiveCharset CharsetIndex
	Charsets      [4]Charset
}

// Charset selects the character encoding variant for one of the G0-G3 slots.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// CharsetIndex selects one of four character set slots (G0-G3).
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)

// translateLineDrawing maps ASCII to DEC Special Graphics box-drawing runes.
func translateLineDrawing(r rune) rune {
	switch r {
	case '`':
		return '◆'
	case 'a':
		return '▒'
	case 'f':
		return '°'
	case 'g':
		return '±'
	case 'j':
		return '┘'
	case 'k':
		return '┐'
	case 'l':
		return '┌'
	case 'm':
		return '└'
	case 'n':
		return '┼'
	case 'o':
		return '⎺'
	case 'p':
		return '⎻'
	case 'q':
		return '─'
	case 'r':
		return '⎼'
	case 's':
		return '⎽'
	case 't':
		return '├'
	case 'u':
		return '┤'
	case 'v':
		return '┴'
	case 'w':
		return '┬'
	case 'x':
		return '│'
	case 'y':
		return '≤'
	case 'z':
		return '≥'
	case '{':
		return 'π'
	case '|':
		return '≠'
	case '}':
		return '£'
	case '~':
		return '·'
	default:
		return r
	}
}
