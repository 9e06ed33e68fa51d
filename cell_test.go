package vtscreen

import (
	"image/color"
	"testing"
)

func TestNewCell(t *testing.T) {
	cell := NewCell()
	if cell.Char != ' ' {
		t.Errorf("expected a space, got %q", cell.Char)
	}
	if !cell.IsBlank() {
		t.Error("expected a fresh cell to be blank")
	}
}

func TestCellWrite(t *testing.T) {
	cell := NewCell()
	attrs := GraphicsAttributes{
		Fg:    color.RGBA{255, 0, 0, 255},
		Bg:    color.RGBA{0, 0, 255, 255},
		Flags: CellFlagBold,
	}
	cell.Write('X', attrs)

	if cell.Char != 'X' {
		t.Errorf("expected 'X', got %q", cell.Char)
	}
	if !cell.HasFlag(CellFlagBold) {
		t.Error("expected the bold flag carried over")
	}
	if cell.Fg != attrs.Fg || cell.Bg != attrs.Bg {
		t.Error("expected the pen colors carried over")
	}
}

func TestCellResetDropsProtection(t *testing.T) {
	cell := NewCell()
	cell.Write('X', GraphicsAttributes{Flags: CellFlagProtected})

	cell.Reset(GraphicsAttributes{Flags: CellFlagProtected})
	if cell.IsProtected() {
		t.Error("expected reset to drop the protected flag")
	}
	if cell.Char != ' ' {
		t.Errorf("expected a blank after reset, got %q", cell.Char)
	}
}

func TestCellFlags(t *testing.T) {
	cell := NewCell()
	cell.SetFlag(CellFlagItalic)
	cell.SetFlag(CellFlagUnderline)
	cell.ClearFlag(CellFlagItalic)

	if cell.HasFlag(CellFlagItalic) {
		t.Error("expected italic cleared")
	}
	if !cell.HasFlag(CellFlagUnderline) {
		t.Error("expected underline kept")
	}
}

func TestCellWidth(t *testing.T) {
	cell := NewCell()
	if cell.Width() != 1 {
		t.Errorf("expected width 1, got %d", cell.Width())
	}

	cell.SetFlag(CellFlagWideChar)
	if cell.Width() != 2 {
		t.Errorf("expected width 2, got %d", cell.Width())
	}

	spacer := NewCell()
	spacer.SetFlag(CellFlagWideCharSpacer)
	if spacer.Width() != 0 {
		t.Errorf("expected width 0 for a spacer, got %d", spacer.Width())
	}
	if spacer.IsBlank() {
		t.Error("expected a spacer not to count as blank")
	}
}

func TestCellAttributesStripWideFlags(t *testing.T) {
	cell := NewCell()
	cell.Write('世', GraphicsAttributes{Flags: CellFlagWideChar | CellFlagBold})

	attrs := cell.Attributes()
	if attrs.Flags&CellFlagWideChar != 0 {
		t.Error("expected the wide flag stripped from reused attributes")
	}
	if attrs.Flags&CellFlagBold == 0 {
		t.Error("expected the bold flag kept")
	}
}
