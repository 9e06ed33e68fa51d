package vtscreen

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ScreenshotConfig controls how the terminal page is rendered to an image.
type ScreenshotConfig struct {
	// Font face to use for rendering. If nil, uses basicfont.Face7x13.
	Font font.Face

	// CellWidth and CellHeight override the cell dimensions in pixels.
	// If zero, derived from font metrics.
	CellWidth  int
	CellHeight int

	// CursorColor fills the cursor cell. If nil, the cursor is drawn by
	// inverting the cell colors.
	CursorColor *color.RGBA

	// ShowCursor controls whether to render the cursor. Default true.
	ShowCursor *bool
}

// LoadFont loads a TrueType or OpenType font from a file path.
func LoadFont(path string, size float64) (font.Face, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadFontFromReader(f, size)
}

// LoadFontFromReader loads a TrueType or OpenType font from an io.Reader.
func LoadFontFromReader(r io.Reader, size float64) (font.Face, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return LoadFontFromBytes(data, size)
}

// LoadFontFromBytes loads a TrueType or OpenType font from raw bytes.
func LoadFontFromBytes(data []byte, size float64) (font.Face, error) {
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}

	return opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// VTScreenshot reconstructs the visible page as a VT byte sequence. Writing
// the result to another terminal of the same size reproduces the page text,
// renditions, and cursor position.
func (t *Terminal) VTScreenshot() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.active.VTScreenshot()
}

// VTScreenshot reconstructs the visible page as a VT byte sequence: clear and
// home, then each line's cells with SGR changes emitted at run boundaries,
// and finally the cursor position.
func (s *Screen) VTScreenshot() string {
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H\x1b[0m")

	size := s.grid.PageSize()
	pen := NewGraphicsAttributes()
	for row := 0; row < size.Lines; row++ {
		if row > 0 {
			b.WriteString("\r\n")
		}
		line := s.grid.LineAt(row)
		for col := 0; col < size.Columns; col++ {
			cell := line.CellAt(col)
			if cell.Flags&CellFlagWideCharSpacer != 0 {
				continue
			}

			cellPen := GraphicsAttributes{
				Fg:             cell.Fg,
				Bg:             cell.Bg,
				UnderlineColor: cell.UnderlineColor,
				Flags:          cell.Flags &^ (CellFlagWideChar | CellFlagWideCharSpacer | CellFlagProtected),
			}
			if !pen.SameStyle(cellPen) {
				fmt.Fprintf(&b, "\x1b[%sm", sgrParams(cellPen))
				pen = cellPen
			}

			ch := cell.Char
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
			for _, c := range cell.Combining {
				b.WriteRune(c)
			}
		}
	}

	pos := s.cursor.Position
	fmt.Fprintf(&b, "\x1b[0m\x1b[%d;%dH", pos.Line+1, pos.Column+1)
	return b.String()
}

// Screenshot renders the visible page to an RGBA image using default
// settings (basicfont, current palette).
func (t *Terminal) Screenshot() *image.RGBA {
	return t.ScreenshotWithConfig(&ScreenshotConfig{})
}

// ScreenshotWithConfig renders the visible page to an RGBA image. Colors
// resolve through the terminal's palette, so OSC 4 overrides are honored.
func (t *Terminal) ScreenshotWithConfig(cfg *ScreenshotConfig) *image.RGBA {
	t.mu.RLock()
	defer t.mu.RUnlock()

	face := cfg.Font
	if face == nil {
		face = basicfont.Face7x13
	}

	cellWidth := cfg.CellWidth
	cellHeight := cfg.CellHeight
	if cellWidth == 0 {
		adv, _ := face.GlyphAdvance('M')
		cellWidth = adv.Ceil()
		if cellWidth == 0 {
			cellWidth = 7
		}
	}
	if cellHeight == 0 {
		cellHeight = face.Metrics().Height.Ceil()
	}

	showCursor := true
	if cfg.ShowCursor != nil {
		showCursor = *cfg.ShowCursor
	}

	palette := t.state.Palette
	reverseVideo := t.state.HasMode(ModeReverseVideo)

	imgWidth := t.cols * cellWidth
	imgHeight := t.lines * cellHeight
	img := image.NewRGBA(image.Rect(0, 0, imgWidth, imgHeight))

	defaultBG := palette.Resolve(&NamedColor{Name: NamedColorBackground}, false)
	if reverseVideo {
		defaultBG = palette.Resolve(&NamedColor{Name: NamedColorForeground}, true)
	}
	for y := 0; y < imgHeight; y++ {
		for x := 0; x < imgWidth; x++ {
			img.SetRGBA(x, y, defaultBG)
		}
	}

	metrics := face.Metrics()

	t.active.grid.RenderPage(0, func(pos CellLocation, cell Cell) {
		if cell.Flags&CellFlagWideCharSpacer != 0 {
			return
		}

		x := pos.Column * cellWidth
		y := pos.Line * cellHeight

		fg := palette.Resolve(cell.Fg, true)
		bg := palette.Resolve(cell.Bg, false)

		if cell.Flags&CellFlagReverse != 0 {
			fg, bg = bg, fg
		}
		if reverseVideo {
			fg, bg = bg, fg
		}
		if cell.Flags&CellFlagDim != 0 {
			fg = dim(fg)
		}

		for py := 0; py < cellHeight; py++ {
			for px := 0; px < cellWidth; px++ {
				img.SetRGBA(x+px, y+py, bg)
			}
		}

		ch := cell.Char
		if ch == 0 || ch == ' ' || cell.Flags&CellFlagHidden != 0 {
			return
		}

		baseline := y + metrics.Ascent.Ceil()
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(fg),
			Face: face,
			Dot:  fixed.P(x, baseline),
		}
		d.DrawString(string(ch))

		if cell.Flags&underlineMask != 0 {
			underlineColor := fg
			if cell.UnderlineColor != nil {
				underlineColor = palette.Resolve(cell.UnderlineColor, true)
			}
			underlineY := baseline + 2
			if underlineY < imgHeight {
				for px := 0; px < cellWidth; px++ {
					img.SetRGBA(x+px, underlineY, underlineColor)
				}
			}
		}

		if cell.Flags&CellFlagStrike != 0 {
			strikeY := y + cellHeight/2
			for px := 0; px < cellWidth; px++ {
				img.SetRGBA(x+px, strikeY, fg)
			}
		}
	})

	if showCursor && t.active.cursor.Visible {
		pos := t.active.CursorPosition()
		cursorX := pos.Column * cellWidth
		cursorY := pos.Line * cellHeight

		for py := 0; py < cellHeight; py++ {
			for px := 0; px < cellWidth; px++ {
				cx, cy := cursorX+px, cursorY+py
				if cx >= imgWidth || cy >= imgHeight {
					continue
				}
				if cfg.CursorColor != nil {
					img.SetRGBA(cx, cy, *cfg.CursorColor)
				} else {
					existing := img.RGBAAt(cx, cy)
					img.SetRGBA(cx, cy, color.RGBA{
						R: 255 - existing.R,
						G: 255 - existing.G,
						B: 255 - existing.B,
						A: 255,
					})
				}
			}
		}
	}

	return img
}
