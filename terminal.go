package vtscreen

import (
	"sync"

	"github.com/danielgatis/go-ansicode"
)

const (
	// DEFAULT_LINES is the page height used when no size is given.
	DEFAULT_LINES = 24
	// DEFAULT_COLS is the page width used when no size is given.
	DEFAULT_COLS = 80

	// DEFAULT_CELL_WIDTH and DEFAULT_CELL_HEIGHT are the assumed glyph cell
	// pixel geometry when no size provider is set.
	DEFAULT_CELL_WIDTH  = 10
	DEFAULT_CELL_HEIGHT = 20

	// DEFAULT_MAX_HISTORY is the default scrollback cap in lines.
	DEFAULT_MAX_HISTORY = 10000
)

// Terminal is a headless terminal: it consumes a raw byte stream via Write,
// decodes the escape sequences, and maintains primary and alternate screens
// over their grids. All exported methods are safe for concurrent use.
type Terminal struct {
	mu sync.RWMutex

	state     *TerminalState
	primary   *Screen
	alternate *Screen
	active    *Screen

	decoder *ansicode.Decoder
	router  extensionRouter
	kitty   KittyEngine

	keyboardModes   []ansicode.KeyboardMode
	modifyOtherKeys ansicode.ModifyOtherKeys

	userVars map[string]string

	lines      int
	cols       int
	maxHistory int
	reflow     bool

	sixelEnabled bool
	kittyEnabled bool
	imageBudget  int64

	responseProvider     ResponseProvider
	bellProvider         BellProvider
	titleProvider        TitleProvider
	apcProvider          APCProvider
	pmProvider           PMProvider
	sosProvider          SOSProvider
	clipboardProvider    ClipboardProvider
	notificationProvider NotificationProvider
	recordingProvider    RecordingProvider
	markProvider         MarkProvider
	failureProvider      FailureProvider
	sizeProvider         SizeProvider
}

// RecordingProvider captures raw input bytes before they reach the decoder,
// for replay or regression testing.
type RecordingProvider interface {
	Record(data []byte)
}

// NoopRecording discards all recorded data.
type NoopRecording struct{}

func (NoopRecording) Record(data []byte) {}

// Option configures a Terminal at construction time.
type Option func(*Terminal)

// WithSize sets the page dimensions. Values <= 0 are replaced with the
// defaults (24x80).
func WithSize(lines, cols int) Option {
	if lines <= 0 {
		lines = DEFAULT_LINES
	}
	if cols <= 0 {
		cols = DEFAULT_COLS
	}
	return func(t *Terminal) {
		t.lines = lines
		t.cols = cols
	}
}

// WithMaxHistory sets the scrollback cap in lines for the primary screen.
// Use 0 for no scrollback or MaxHistoryUnlimited for no cap.
func WithMaxHistory(lines int) Option {
	return func(t *Terminal) {
		t.maxHistory = lines
	}
}

// WithReflow controls whether column resizes re-wrap logical lines instead
// of truncating. Default is true.
func WithReflow(enabled bool) Option {
	return func(t *Terminal) {
		t.reflow = enabled
	}
}

// WithResponse sets the writer for terminal responses (e.g., cursor position
// reports). If nil, responses are discarded.
func WithResponse(p ResponseProvider) Option {
	return func(t *Terminal) {
		t.responseProvider = p
	}
}

// WithBell sets the handler for bell events.
func WithBell(p BellProvider) Option {
	return func(t *Terminal) {
		t.bellProvider = p
	}
}

// WithTitle sets the handler for window title changes.
func WithTitle(p TitleProvider) Option {
	return func(t *Terminal) {
		t.titleProvider = p
	}
}

// WithAPC sets the handler for Application Program Command sequences not
// consumed by the kitty graphics engine.
func WithAPC(p APCProvider) Option {
	return func(t *Terminal) {
		t.apcProvider = p
	}
}

// WithPM sets the handler for Privacy Message sequences.
func WithPM(p PMProvider) Option {
	return func(t *Terminal) {
		t.pmProvider = p
	}
}

// WithSOS sets the handler for Start of String sequences.
func WithSOS(p SOSProvider) Option {
	return func(t *Terminal) {
		t.sosProvider = p
	}
}

// WithClipboard sets the handler for clipboard operations (OSC 52).
func WithClipboard(p ClipboardProvider) Option {
	return func(t *Terminal) {
		t.clipboardProvider = p
	}
}

// WithNotification sets the handler for desktop notifications.
func WithNotification(p NotificationProvider) Option {
	return func(t *Terminal) {
		t.notificationProvider = p
	}
}

// WithRecording sets the handler for capturing raw input bytes before
// decoding. Useful for replay, debugging, or regression testing.
func WithRecording(p RecordingProvider) Option {
	return func(t *Terminal) {
		t.recordingProvider = p
	}
}

// WithMarks sets the handler for shell integration marks (OSC 133).
func WithMarks(p MarkProvider) Option {
	return func(t *Terminal) {
		t.markProvider = p
	}
}

// WithFailure sets the handler for internal consistency reports.
func WithFailure(p FailureProvider) Option {
	return func(t *Terminal) {
		t.failureProvider = p
	}
}

// WithSizeProvider sets the provider for pixel dimension queries.
func WithSizeProvider(p SizeProvider) Option {
	return func(t *Terminal) {
		t.sizeProvider = p
	}
}

// WithSixel enables or disables sixel graphics. Default is true.
func WithSixel(enabled bool) Option {
	return func(t *Terminal) {
		t.sixelEnabled = enabled
	}
}

// WithKitty enables or disables kitty graphics. Default is true.
func WithKitty(enabled bool) Option {
	return func(t *Terminal) {
		t.kittyEnabled = enabled
	}
}

// WithImageBudget sets the memory budget in bytes for decoded images.
func WithImageBudget(bytes int64) Option {
	return func(t *Terminal) {
		t.imageBudget = bytes
	}
}

// New creates a terminal with the given options. Defaults to 24x80 with
// line wrap, cursor visible, reflow resizing and 10000 lines of scrollback.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		lines:                DEFAULT_LINES,
		cols:                 DEFAULT_COLS,
		maxHistory:           DEFAULT_MAX_HISTORY,
		reflow:               true,
		sixelEnabled:         true,
		kittyEnabled:         true,
		imageBudget:          DefaultImagePoolBudget,
		keyboardModes:        make([]ansicode.KeyboardMode, 0),
		userVars:             make(map[string]string),
		responseProvider:     NoopResponse{},
		bellProvider:         NoopBell{},
		titleProvider:        NoopTitle{},
		apcProvider:          NoopAPC{},
		pmProvider:           NoopPM{},
		sosProvider:          NoopSOS{},
		clipboardProvider:    NoopClipboard{},
		notificationProvider: NoopNotification{},
		recordingProvider:    NoopRecording{},
		markProvider:         NoopMark{},
		failureProvider:      NoopFailure{},
	}

	for _, opt := range opts {
		opt(t)
	}

	cellWidth, cellHeight := DEFAULT_CELL_WIDTH, DEFAULT_CELL_HEIGHT
	if t.sizeProvider != nil {
		cellWidth, cellHeight = t.sizeProvider.CellSizePixels()
	}

	t.state = NewTerminalState(cellWidth, cellHeight)
	t.state.Images.SetMaxMemory(t.imageBudget)

	size := PageSize{Lines: t.lines, Columns: t.cols}
	t.primary = NewScreen(NewGrid(size, t.maxHistory, t.reflow), t.state)
	t.alternate = NewScreen(NewGrid(size, 0, false), t.state)
	t.active = t.primary

	t.decoder = ansicode.NewDecoder(t)
	return t
}

// Write processes raw bytes, decoding escape sequences and updating the
// terminal. Sequences the decoder would drop are routed to their handlers
// first; everything else reaches the decoder in order. Implements io.Writer.
func (t *Terminal) Write(data []byte) (int, error) {
	t.recordingProvider.Record(data)
	if err := t.router.route(t, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// WriteString converts the string to bytes and calls Write.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// --- Geometry and content queries ---

// Lines returns the page height in rows.
func (t *Terminal) Lines() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lines
}

// Cols returns the page width in columns.
func (t *Terminal) Cols() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cols
}

// Cell returns a copy of the cell at the given page position of the active
// screen. Negative lines address scrollback.
func (t *Terminal) Cell(line, col int) Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.grid.CellAt(CellLocation{Line: line, Column: col})
}

// LineContent returns the text of the given page row, trailing blanks
// trimmed. Negative rows address scrollback.
func (t *Terminal) LineContent(row int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.LineText(row)
}

// String returns the visible page as newline-joined text.
func (t *Terminal) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.PageText()
}

// IsWrapped returns true if the given row is a soft-wrap continuation.
func (t *Terminal) IsWrapped(row int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.grid.LineAt(row).Wrapped()
}

// RenderPage invokes fn for every visible cell of the active screen.
// scrollOffset shifts the view into scrollback.
func (t *Terminal) RenderPage(scrollOffset int, fn func(pos CellLocation, cell Cell)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.active.grid.RenderPage(scrollOffset, fn)
}

// --- Cursor queries ---

// CursorPos returns the cursor position (0-based).
func (t *Terminal) CursorPos() (line, col int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos := t.active.CursorPosition()
	return pos.Line, pos.Column
}

// CursorVisible returns true if the cursor is currently visible.
func (t *Terminal) CursorVisible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.cursor.Visible
}

// CursorStyle returns the current cursor rendering style.
func (t *Terminal) CursorStyle() CursorStyle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.cursor.Style
}

// --- Mode, title, state queries ---

// HasMode returns true if the specified mode flag is enabled.
func (t *Terminal) HasMode(mode TerminalMode) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.HasMode(mode)
}

// Title returns the current window title.
func (t *Terminal) Title() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Title
}

// IsAlternateScreen returns true while the alternate screen is active.
func (t *Terminal) IsAlternateScreen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active == t.alternate
}

// ScrollRegion returns the active vertical margins (0-based, inclusive).
func (t *Terminal) ScrollRegion() (top, bottom int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.margin.Top, t.active.margin.Bottom
}

// WorkingDirectory returns the URI reported by the last OSC 7.
func (t *Terminal) WorkingDirectory() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.WorkingDirectory
}

// UserVar returns the value set for name by OSC 1337 SetUserVar, and
// whether it exists.
func (t *Terminal) UserVar(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.userVars[name]
	return v, ok
}

// InstructionCounter returns the number of processed control functions and
// printed characters.
func (t *Terminal) InstructionCounter() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.InstructionCounter
}

// --- Scrollback ---

// HistoryLineCount returns the number of scrollback lines on the primary
// screen.
func (t *Terminal) HistoryLineCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primary.grid.HistoryLineCount()
}

// MaxHistory returns the scrollback cap.
func (t *Terminal) MaxHistory() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primary.grid.MaxHistory()
}

// SetMaxHistory changes the scrollback cap, evicting immediately if needed.
func (t *Terminal) SetMaxHistory(lines int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primary.grid.SetMaxHistory(lines)
}

// ClearHistory drops all scrollback lines.
func (t *Terminal) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primary.grid.ClearHistory()
}

// --- Search ---

// Search finds the next occurrence of needle at or after from on the active
// screen. Negative lines in the result address scrollback.
func (t *Terminal) Search(needle string, from CellLocation) (CellLocation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.Search(needle, from)
}

// SearchReverse finds the closest occurrence of needle at or before from,
// scanning backward through the page and scrollback.
func (t *Terminal) SearchReverse(needle string, from CellLocation) (CellLocation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active.SearchReverse(needle, from)
}

// --- Images ---

// Image returns the stored image for the given ID, or nil.
func (t *Terminal) Image(id uint32) *Image {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Images.Image(id)
}

// ImageCount returns the number of stored images.
func (t *Terminal) ImageCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Images.Count()
}

// ImageUsedMemory returns the image pool memory usage in bytes.
func (t *Terminal) ImageUsedMemory() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Images.UsedMemory()
}

// SetImageMaxMemory changes the image pool budget.
func (t *Terminal) SetImageMaxMemory(bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Images.SetMaxMemory(bytes)
}

// ClearImages drops all stored images.
func (t *Terminal) ClearImages() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Images.Reset()
}

// SixelEnabled returns true if sixel graphics are enabled.
func (t *Terminal) SixelEnabled() bool {
	return t.sixelEnabled
}

// KittyEnabled returns true if kitty graphics are enabled.
func (t *Terminal) KittyEnabled() bool {
	return t.kittyEnabled
}

// --- Resize ---

// Resize changes the page dimensions on both screens, translating cursors
// and (with reflow enabled) re-wrapping logical lines. Invalid dimensions
// are ignored.
func (t *Terminal) Resize(lines, cols int) {
	if lines <= 0 || cols <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	size := PageSize{Lines: lines, Columns: cols}
	t.primary.Resize(size)
	t.alternate.Resize(size)
	t.lines = lines
	t.cols = cols
}

// --- Providers ---

// SetResponseProvider replaces the response writer.
func (t *Terminal) SetResponseProvider(p ResponseProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		p = NoopResponse{}
	}
	t.responseProvider = p
}

// ResponseProvider returns the current response writer.
func (t *Terminal) ResponseProvider() ResponseProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.responseProvider
}

func (t *Terminal) writeResponse(s string) {
	if s == "" {
		return
	}
	_, _ = t.responseProvider.Write([]byte(s))
}

// cellSizePixels answers from the size provider when set, else from the
// defaults recorded in the state.
func (t *Terminal) cellSizePixels() (int, int) {
	if t.sizeProvider != nil {
		return t.sizeProvider.CellSizePixels()
	}
	return t.state.CellPixelWidth, t.state.CellPixelHeight
}
