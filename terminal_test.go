package vtscreen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/danielgatis/go-ansicode"
)

func TestNewTerminal(t *testing.T) {
	term := New()

	if term.Lines() != 24 {
		t.Errorf("expected 24 lines, got %d", term.Lines())
	}
	if term.Cols() != 80 {
		t.Errorf("expected 80 cols, got %d", term.Cols())
	}
	if !term.CursorVisible() {
		t.Error("expected cursor visible by default")
	}
}

func TestTerminalWithSize(t *testing.T) {
	term := New(WithSize(40, 120))

	if term.Lines() != 40 {
		t.Errorf("expected 40 lines, got %d", term.Lines())
	}
	if term.Cols() != 120 {
		t.Errorf("expected 120 cols, got %d", term.Cols())
	}
}

func TestTerminalWrite(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Hello")

	if got := term.LineContent(0); got != "Hello" {
		t.Errorf("expected 'Hello', got %q", got)
	}
	line, col := term.CursorPos()
	if line != 0 || col != 5 {
		t.Errorf("expected cursor at (0, 5), got (%d, %d)", line, col)
	}
}

func TestTerminalNewline(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Line1\r\nLine2")

	if got := term.LineContent(0); got != "Line1" {
		t.Errorf("expected 'Line1', got %q", got)
	}
	if got := term.LineContent(1); got != "Line2" {
		t.Errorf("expected 'Line2', got %q", got)
	}
}

func TestTerminalCursorAddressing(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b[3;6H")

	line, col := term.CursorPos()
	if line != 2 || col != 5 {
		t.Errorf("expected cursor at (2, 5), got (%d, %d)", line, col)
	}
}

func TestTerminalClearScreen(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Hello")
	term.WriteString("\x1b[2J")

	if got := strings.TrimSpace(term.String()); got != "" {
		t.Errorf("expected blank page, got %q", got)
	}
}

func TestTerminalSGR(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b[1;31mRed")

	cell := term.Cell(0, 0)
	if cell.Flags&CellFlagBold == 0 {
		t.Error("expected bold flag")
	}
	if cell.Fg == nil {
		t.Error("expected a foreground color")
	}

	term.WriteString("\x1b[0m plain")
	cell = term.Cell(0, 4)
	if cell.Flags&CellFlagBold != 0 {
		t.Error("expected reset to clear bold")
	}
}

func TestTerminalUnderlineColor(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b[4m\x1b[58;2;255;0;0mText\x1b[0m")

	cell := term.Cell(0, 0)
	if cell.Flags&CellFlagUnderline == 0 {
		t.Error("expected underline flag")
	}
	rgba, ok := cell.UnderlineColor.(interface{ RGBA() (r, g, b, a uint32) })
	if !ok {
		t.Fatal("expected an underline color")
	}
	r, g, b, _ := rgba.RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("expected red underline, got %v", cell.UnderlineColor)
	}
}

func TestTerminalWrapAround(t *testing.T) {
	term := New(WithSize(24, 10))

	term.WriteString("1234567890ABC")

	if got := term.LineContent(0); got != "1234567890" {
		t.Errorf("expected full first line, got %q", got)
	}
	if got := term.LineContent(1); got != "ABC" {
		t.Errorf("expected 'ABC' on line 1, got %q", got)
	}
	if !term.IsWrapped(1) {
		t.Error("expected line 1 to be a soft-wrap continuation")
	}
}

func TestTerminalAlternateScreen(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Main screen")
	term.WriteString("\x1b[?1049h")

	if !term.IsAlternateScreen() {
		t.Fatal("expected alternate screen")
	}
	if got := strings.TrimSpace(term.String()); got != "" {
		t.Errorf("expected cleared alternate screen, got %q", got)
	}

	term.WriteString("Alt screen")
	term.WriteString("\x1b[?1049l")

	if term.IsAlternateScreen() {
		t.Fatal("expected primary screen")
	}
	if got := term.LineContent(0); got != "Main screen" {
		t.Errorf("expected primary content restored, got %q", got)
	}
}

func TestTerminalAlternateScreenNoHistory(t *testing.T) {
	term := New(WithSize(2, 10))

	term.WriteString("\x1b[?1049h")
	for i := 0; i < 5; i++ {
		term.WriteString("Line\r\n")
	}

	if term.HistoryLineCount() != 0 {
		t.Errorf("expected no scrollback on the alternate screen, got %d", term.HistoryLineCount())
	}
}

func TestTerminalTitle(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]0;My Title\x07")

	if got := term.Title(); got != "My Title" {
		t.Errorf("expected 'My Title', got %q", got)
	}
}

func TestTerminalTitleStack(t *testing.T) {
	term := New(WithSize(24, 80))

	term.SetTitle("first")
	term.PushTitle()
	term.SetTitle("second")
	term.PopTitle()

	if got := term.Title(); got != "first" {
		t.Errorf("expected 'first' after pop, got %q", got)
	}
}

func TestTerminalDeviceStatusReport(t *testing.T) {
	var buf bytes.Buffer
	term := New(WithSize(24, 80), WithResponse(&buf))

	term.WriteString("\x1b[5n")

	if got := buf.String(); got != "\x1b[0n" {
		t.Errorf("unexpected DSR response: %q", got)
	}

	buf.Reset()
	term.DeviceStatus(6)

	if got := buf.String(); got != "\x1b[1;1R" {
		t.Errorf("unexpected CPR response: %q", got)
	}
}

func TestTerminalScrollback(t *testing.T) {
	term := New(WithSize(2, 20), WithMaxHistory(100))

	term.WriteString("Line1\r\n")
	term.WriteString("Line2\r\n")
	term.WriteString("Line3\r\n")

	if term.HistoryLineCount() != 2 {
		t.Fatalf("expected 2 history lines, got %d", term.HistoryLineCount())
	}
	if got := term.LineContent(-2); got != "Line1" {
		t.Errorf("expected 'Line1' deepest in history, got %q", got)
	}
	if got := term.LineContent(-1); got != "Line2" {
		t.Errorf("expected 'Line2' in history, got %q", got)
	}

	term.ClearHistory()
	if term.HistoryLineCount() != 0 {
		t.Errorf("expected empty history, got %d", term.HistoryLineCount())
	}
}

func TestTerminalResizeReflow(t *testing.T) {
	term := New(WithSize(4, 10))

	term.WriteString("1234567890ABC")
	term.Resize(4, 20)

	if got := term.LineContent(0); got != "1234567890ABC" {
		t.Errorf("expected rejoined line, got %q", got)
	}
}

func TestTerminalHyperlink(t *testing.T) {
	term := New(WithSize(24, 80))

	term.SetHyperlink(&ansicode.Hyperlink{ID: "1", URI: "https://example.com"})
	term.WriteString("link")
	term.SetHyperlink(nil)
	term.WriteString(" after")

	cell := term.Cell(0, 0)
	if cell.Hyperlink == 0 {
		t.Fatal("expected a hyperlink id on the linked cell")
	}
	link := term.state.Hyperlinks.Lookup(term.active.grid.LineAt(0).HyperlinkAt(0))
	if link == nil || link.URI != "https://example.com" {
		t.Errorf("expected the interned hyperlink, got %+v", link)
	}
	if term.Cell(0, 5).Hyperlink != 0 {
		t.Error("expected no hyperlink after clearing")
	}
}

func TestTerminalShellIntegrationMarks(t *testing.T) {
	marks := &recordingMarkProvider{}
	term := New(WithSize(24, 80), WithMarks(marks))

	term.WriteString("\x1b]133;A\x07")
	term.WriteString("$ ")
	term.WriteString("\x1b]133;D;1\x07")

	if len(marks.marks) != 2 {
		t.Fatalf("expected 2 marks, got %d", len(marks.marks))
	}
	if marks.exitCodes[1] != 1 {
		t.Errorf("expected exit code 1, got %d", marks.exitCodes[1])
	}
}

type recordingMarkProvider struct {
	marks     []ShellIntegrationMark
	exitCodes []int
}

func (p *recordingMarkProvider) Mark(mark ShellIntegrationMark, exitCode int) {
	p.marks = append(p.marks, mark)
	p.exitCodes = append(p.exitCodes, exitCode)
}

type recordingBell struct{ rings int }

func (b *recordingBell) Ring() { b.rings++ }

func TestTerminalBell(t *testing.T) {
	bell := &recordingBell{}
	term := New(WithSize(24, 80), WithBell(bell))

	term.WriteString("\x07")

	if bell.rings != 1 {
		t.Errorf("expected 1 bell, got %d", bell.rings)
	}
}

func TestTerminalRecording(t *testing.T) {
	rec := &bufferRecording{}
	term := New(WithSize(24, 80), WithRecording(rec))

	term.WriteString("Hello")
	term.WriteString("\x1b[2J")

	if got := rec.buf.String(); got != "Hello\x1b[2J" {
		t.Errorf("expected raw input recorded, got %q", got)
	}
}

type bufferRecording struct{ buf bytes.Buffer }

func (r *bufferRecording) Record(data []byte) { r.buf.Write(data) }

func TestTerminalUserVars(t *testing.T) {
	term := New(WithSize(24, 80))

	term.SetUserVar("SESSION", "abc")

	if v, ok := term.UserVar("SESSION"); !ok || v != "abc" {
		t.Errorf("expected 'abc', got %q (ok=%v)", v, ok)
	}
	if _, ok := term.UserVar("MISSING"); ok {
		t.Error("expected missing variable to report not found")
	}
}

func TestTerminalWorkingDirectoryPath(t *testing.T) {
	term := New(WithSize(24, 80))

	term.SetWorkingDirectory("file://host/home/user")

	if got := term.WorkingDirectory(); got != "file://host/home/user" {
		t.Errorf("unexpected URI: %q", got)
	}
	if got := term.WorkingDirectoryPath(); got != "/home/user" {
		t.Errorf("expected '/home/user', got %q", got)
	}
}

func TestTerminalResetState(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]0;My Title\x07")
	term.WriteString("Hello")
	term.SetUserVar("K", "V")
	term.ResetState()

	if got := term.Title(); got != "" {
		t.Errorf("expected empty title after RIS, got %q", got)
	}
	if got := strings.TrimSpace(term.String()); got != "" {
		t.Errorf("expected blank page after RIS, got %q", got)
	}
	if _, ok := term.UserVar("K"); ok {
		t.Error("expected user vars cleared after RIS")
	}
	if term.IsAlternateScreen() {
		t.Error("expected primary screen after RIS")
	}
}

func TestTerminalKeyboardModeStack(t *testing.T) {
	var buf bytes.Buffer
	term := New(WithSize(24, 80), WithResponse(&buf))

	term.PushKeyboardMode(ansicode.KeyboardMode(1))
	term.SetKeyboardMode(ansicode.KeyboardMode(4), ansicode.KeyboardModeBehaviorUnion)
	term.ReportKeyboardMode()

	if got := buf.String(); got != "\x1b[?5u" {
		t.Errorf("unexpected keyboard mode report: %q", got)
	}

	buf.Reset()
	term.PopKeyboardMode(1)
	term.ReportKeyboardMode()

	if got := buf.String(); got != "\x1b[?0u" {
		t.Errorf("expected empty stack report, got %q", got)
	}
}

func TestTerminalInstructionCounter(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("abc")
	term.WriteString("\x1b[2J")

	if got := term.InstructionCounter(); got < 4 {
		t.Errorf("expected at least 4 processed instructions, got %d", got)
	}
}

func TestTerminalSearch(t *testing.T) {
	term := New(WithSize(4, 20))

	term.WriteString("alpha beta\r\n")
	term.WriteString("gamma beta\r\n")

	pos, ok := term.Search("beta", CellLocation{})
	if !ok || pos.Line != 0 || pos.Column != 6 {
		t.Errorf("expected match at (0, 6), got (%d, %d) ok=%v", pos.Line, pos.Column, ok)
	}

	pos, ok = term.Search("beta", CellLocation{Line: 1})
	if !ok || pos.Line != 1 {
		t.Errorf("expected match on line 1, got line %d ok=%v", pos.Line, ok)
	}

	_, ok = term.Search("missing", CellLocation{})
	if ok {
		t.Error("expected no match")
	}
}

func TestTerminalSearchCaseSensitive(t *testing.T) {
	term := New(WithSize(4, 20))

	term.WriteString("NEEDLE")

	if _, ok := term.Search("needle", CellLocation{}); ok {
		t.Error("expected no match for a lowercase needle against uppercase text")
	}
	if _, ok := term.Search("NEEDLE", CellLocation{}); !ok {
		t.Error("expected an exact match")
	}
}

func TestTerminalSearchReverseIntoHistory(t *testing.T) {
	term := New(WithSize(2, 20), WithMaxHistory(50))

	term.WriteString("needle here\r\n")
	term.WriteString("filler\r\n")
	term.WriteString("filler\r\n")

	pos, ok := term.SearchReverse("needle", CellLocation{Line: 1, Column: 19})
	if !ok {
		t.Fatal("expected a match in scrollback")
	}
	if pos.Line >= 0 {
		t.Errorf("expected a negative history line, got %d", pos.Line)
	}
	if got := term.LineContent(pos.Line); !strings.HasPrefix(got, "needle") {
		t.Errorf("match does not point at the needle: %q", got)
	}
}
