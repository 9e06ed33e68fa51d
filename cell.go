package vtscreen

import "image/color"

// CellFlags is a bitmask of cell rendering attributes.
type CellFlags uint32

const (
	CellFlagBold CellFlags = 1 << iota
	CellFlagDim
	CellFlagItalic
	CellFlagUnderline
	CellFlagDoubleUnderline
	CellFlagCurlyUnderline
	CellFlagDottedUnderline
	CellFlagDashedUnderline
	CellFlagBlinkSlow
	CellFlagBlinkFast
	CellFlagReverse
	CellFlagHidden
	CellFlagStrike
	CellFlagOverline
	CellFlagWideChar
	CellFlagWideCharSpacer
	// CellFlagProtected marks a cell as guarded (DECSCA). Selective erase
	// operations (DECSEL/DECSED) leave protected cells untouched.
	CellFlagProtected
)

// underlineMask covers every underline style flag.
const underlineMask = CellFlagUnderline | CellFlagDoubleUnderline |
	CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline

// HyperlinkID references an interned hyperlink record in HyperlinkStorage.
// Zero means "no hyperlink".
type HyperlinkID uint32

// GraphicsAttributes is the current SGR pen: the colors, style flags, and
// hyperlink applied to subsequently written cells. Existing cells are never
// retroactively restyled.
type GraphicsAttributes struct {
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Flags          CellFlags
	Hyperlink      HyperlinkID
}

// NewGraphicsAttributes returns the default pen (default fg/bg, no flags).
func NewGraphicsAttributes() GraphicsAttributes {
	return GraphicsAttributes{
		Fg: &NamedColor{Name: NamedColorForeground},
		Bg: &NamedColor{Name: NamedColorBackground},
	}
}

// HasFlag returns true if the specified flag is set.
func (a *GraphicsAttributes) HasFlag(flag CellFlags) bool {
	return a.Flags&flag != 0
}

// SetFlag enables the specified flag without affecting others.
func (a *GraphicsAttributes) SetFlag(flag CellFlags) {
	a.Flags |= flag
}

// ClearFlag disables the specified flag without affecting others.
func (a *GraphicsAttributes) ClearFlag(flag CellFlags) {
	a.Flags &^= flag
}

// SameStyle reports whether two pens are indistinguishable for rendering.
// Used to decide whether a trivial line can keep its single shared attribute.
func (a GraphicsAttributes) SameStyle(other GraphicsAttributes) bool {
	return a.Flags == other.Flags &&
		a.Hyperlink == other.Hyperlink &&
		colorEqual(a.Fg, other.Fg) &&
		colorEqual(a.Bg, other.Bg) &&
		colorEqual(a.UnderlineColor, other.UnderlineColor)
}

// colorEqual compares two cell colors, treating Indexed/Named references by
// index rather than resolved RGBA.
func colorEqual(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *IndexedColor:
		bv, ok := b.(*IndexedColor)
		return ok && av.Index == bv.Index
	case *NamedColor:
		bv, ok := b.(*NamedColor)
		return ok && av.Name == bv.Name
	case color.RGBA:
		bv, ok := b.(color.RGBA)
		return ok && av == bv
	default:
		ar, ag, ab, aa := a.RGBA()
		br, bg, bb, ba := b.RGBA()
		return ar == br && ag == bg && ab == bb && aa == ba
	}
}

// Cell stores one grid position: its codepoint, colors, style flags,
// hyperlink id, and optional image fragment. Wide characters occupy two
// columns; the second carries CellFlagWideCharSpacer.
type Cell struct {
	Char           rune
	Combining      []rune
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Flags          CellFlags
	Hyperlink      HyperlinkID
	Fragment       *ImageFragment
}

// NewCell creates a cell holding a space with default colors.
func NewCell() Cell {
	return Cell{
		Char: ' ',
		Fg:   &NamedColor{Name: NamedColorForeground},
		Bg:   &NamedColor{Name: NamedColorBackground},
	}
}

// NewCellWithAttrs creates a blank cell carrying the given pen. Erase and
// scroll fill rely on this so vacated cells take the current SGR background.
func NewCellWithAttrs(attrs GraphicsAttributes) Cell {
	return Cell{
		Char:           ' ',
		Fg:             attrs.Fg,
		Bg:             attrs.Bg,
		UnderlineColor: attrs.UnderlineColor,
		Flags:          attrs.Flags &^ (CellFlagWideChar | CellFlagWideCharSpacer | CellFlagProtected),
		Hyperlink:      attrs.Hyperlink,
	}
}

// Reset restores the cell to a blank with the given pen. The protected flag
// is deliberately dropped: an erased cell is no longer guarded.
func (c *Cell) Reset(attrs GraphicsAttributes) {
	*c = NewCellWithAttrs(attrs)
}

// Write sets the cell's codepoint and pen in one step.
func (c *Cell) Write(r rune, attrs GraphicsAttributes) {
	c.Char = r
	c.Combining = nil
	c.Fg = attrs.Fg
	c.Bg = attrs.Bg
	c.UnderlineColor = attrs.UnderlineColor
	c.Flags = attrs.Flags
	c.Hyperlink = attrs.Hyperlink
	c.Fragment = nil
}

// HasFlag returns true if the specified flag is set.
func (c *Cell) HasFlag(flag CellFlags) bool {
	return c.Flags&flag != 0
}

// SetFlag enables the specified flag without affecting others.
func (c *Cell) SetFlag(flag CellFlags) {
	c.Flags |= flag
}

// ClearFlag disables the specified flag without affecting others.
func (c *Cell) ClearFlag(flag CellFlags) {
	c.Flags &^= flag
}

// IsWide returns true if this cell holds a two-column character.
func (c *Cell) IsWide() bool {
	return c.HasFlag(CellFlagWideChar)
}

// IsWideSpacer returns true if this is the trailing half of a wide character.
func (c *Cell) IsWideSpacer() bool {
	return c.HasFlag(CellFlagWideCharSpacer)
}

// IsProtected returns true if the cell is guarded against selective erase.
func (c *Cell) IsProtected() bool {
	return c.HasFlag(CellFlagProtected)
}

// IsBlank returns true if the cell renders as empty space.
func (c *Cell) IsBlank() bool {
	return (c.Char == ' ' || c.Char == 0) && c.Fragment == nil && !c.IsWideSpacer()
}

// Width returns the column count the cell occupies: 0 for a wide spacer,
// 2 for a wide character, 1 otherwise.
func (c *Cell) Width() int {
	switch {
	case c.IsWideSpacer():
		return 0
	case c.IsWide():
		return 2
	default:
		return 1
	}
}

// Attributes returns the cell's pen, e.g. for reuse as a fill attribute.
func (c *Cell) Attributes() GraphicsAttributes {
	return GraphicsAttributes{
		Fg:             c.Fg,
		Bg:             c.Bg,
		UnderlineColor: c.UnderlineColor,
		Flags:          c.Flags &^ (CellFlagWideChar | CellFlagWideCharSpacer),
		Hyperlink:      c.Hyperlink,
	}
}

// HasImage returns true if this cell carries an image fragment.
func (c *Cell) HasImage() bool {
	return c.Fragment != nil
}
