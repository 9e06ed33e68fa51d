package vtscreen

import (
	"image/color"
	"testing"
)

func TestScreenshotSize(t *testing.T) {
	term := New(WithSize(2, 4))

	img := term.ScreenshotWithConfig(&ScreenshotConfig{CellWidth: 8, CellHeight: 16})

	bounds := img.Bounds()
	if bounds.Dx() != 32 || bounds.Dy() != 32 {
		t.Errorf("expected a 32x32 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestScreenshotBackgroundFill(t *testing.T) {
	term := New(WithSize(2, 4))
	hide := false
	img := term.ScreenshotWithConfig(&ScreenshotConfig{CellWidth: 8, CellHeight: 16, ShowCursor: &hide})

	want := term.state.Palette.Resolve(&NamedColor{Name: NamedColorBackground}, false)
	if got := img.RGBAAt(20, 20); got != want {
		t.Errorf("expected the default background %v, got %v", want, got)
	}
}

func TestScreenshotCellBackground(t *testing.T) {
	term := New(WithSize(2, 4))
	term.active.Pen().Bg = &IndexedColor{Index: 1}
	term.active.WriteText(" ")

	hide := false
	img := term.ScreenshotWithConfig(&ScreenshotConfig{CellWidth: 8, CellHeight: 16, ShowCursor: &hide})

	want := term.state.Palette.Resolve(&IndexedColor{Index: 1}, false)
	if got := img.RGBAAt(0, 0); got != want {
		t.Errorf("expected the cell background %v, got %v", want, got)
	}
}

func TestScreenshotCursorColor(t *testing.T) {
	term := New(WithSize(2, 4))
	red := color.RGBA{255, 0, 0, 255}

	img := term.ScreenshotWithConfig(&ScreenshotConfig{CellWidth: 8, CellHeight: 16, CursorColor: &red})

	if got := img.RGBAAt(0, 0); got != red {
		t.Errorf("expected the cursor cell filled %v, got %v", red, got)
	}
}

func TestScreenshotCursorHidden(t *testing.T) {
	term := New(WithSize(2, 4))
	hide := false

	img := term.ScreenshotWithConfig(&ScreenshotConfig{CellWidth: 8, CellHeight: 16, ShowCursor: &hide})

	want := term.state.Palette.Resolve(&NamedColor{Name: NamedColorBackground}, false)
	if got := img.RGBAAt(0, 0); got != want {
		t.Errorf("expected no cursor drawn, got %v", got)
	}
}

func TestScreenshotReverseVideo(t *testing.T) {
	term := New(WithSize(2, 4))
	term.state.SetModeFlag(ModeReverseVideo, true)

	hide := false
	img := term.ScreenshotWithConfig(&ScreenshotConfig{CellWidth: 8, CellHeight: 16, ShowCursor: &hide})

	want := term.state.Palette.Resolve(&NamedColor{Name: NamedColorForeground}, true)
	if got := img.RGBAAt(20, 20); got != want {
		t.Errorf("expected the foreground color as background %v, got %v", want, got)
	}
}

func TestVTScreenshotReplay(t *testing.T) {
	term := New(WithSize(3, 10))
	term.WriteString("\x1b[1;31mRED\x1b[0m ok")
	term.WriteString("\x1b[2;4H")

	shot := term.VTScreenshot()

	replay := New(WithSize(3, 10))
	replay.WriteString(shot)

	if got := replay.LineContent(0); got != "RED ok" {
		t.Errorf("expected replayed text, got %q", got)
	}
	cell := replay.Cell(0, 0)
	if cell.Flags&CellFlagBold == 0 {
		t.Error("expected bold to survive the reconstruction")
	}
	if fg, ok := cell.Fg.(*NamedColor); !ok || fg.Name != 1 {
		t.Errorf("expected the red foreground, got %#v", cell.Fg)
	}
	if line, col := replay.CursorPos(); line != 1 || col != 3 {
		t.Errorf("expected cursor at (1, 3), got (%d, %d)", line, col)
	}
	if again := replay.VTScreenshot(); again != shot {
		t.Errorf("expected a stable reconstruction, got %q vs %q", again, shot)
	}
}

func TestVTScreenshotWideChars(t *testing.T) {
	term := New(WithSize(2, 6))
	term.WriteString("你A")

	shot := term.VTScreenshot()

	replay := New(WithSize(2, 6))
	replay.WriteString(shot)

	if got := replay.LineContent(0); got != "你A" {
		t.Errorf("expected wide char replayed once, got %q", got)
	}
	if replay.Cell(0, 1).Flags&CellFlagWideCharSpacer == 0 {
		t.Error("expected a spacer after the wide char")
	}
}
