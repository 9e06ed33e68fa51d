package vtscreen

import "io"

// NotificationPayload carries one OSC 99 desktop notification: its
// identifier, the payload kind ("title", "body", or "?" for a capability
// query), the payload bytes, and whether the notification is complete.
type NotificationPayload struct {
	ID          string
	PayloadType string
	Data        []byte
	Done        bool
}

// ResponseProvider writes terminal responses (e.g., cursor position reports)
// back to the host. Typically an io.Writer connected to the PTY input.
type ResponseProvider = io.Writer

// NoopResponse discards all response data.
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// --- Bell Provider ---

// BellProvider handles bell events triggered by BEL (0x07) characters.
type BellProvider interface {
	Ring()
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// --- Title Provider ---

// TitleProvider observes window title changes (OSC 0, 1, 2 and the
// XTPUSHTITLE/XTPOPTITLE stack).
type TitleProvider interface {
	SetTitle(title string)
	PushTitle()
	PopTitle()
}

// NoopTitle ignores all title operations.
type NoopTitle struct{}

func (NoopTitle) SetTitle(title string) {}
func (NoopTitle) PushTitle()            {}
func (NoopTitle) PopTitle()             {}

// --- APC Provider ---

// APCProvider handles Application Program Command sequences that the
// terminal does not consume itself (everything but kitty graphics).
type APCProvider interface {
	Receive(data []byte)
}

// NoopAPC ignores all APC sequences.
type NoopAPC struct{}

func (NoopAPC) Receive(data []byte) {}

// --- PM Provider ---

// PMProvider handles Privacy Message sequences.
type PMProvider interface {
	Receive(data []byte)
}

// NoopPM ignores all PM sequences.
type NoopPM struct{}

func (NoopPM) Receive(data []byte) {}

// --- SOS Provider ---

// SOSProvider handles Start of String sequences.
type SOSProvider interface {
	Receive(data []byte)
}

// NoopSOS ignores all SOS sequences.
type NoopSOS struct{}

func (NoopSOS) Receive(data []byte) {}

// --- Clipboard Provider ---

// ClipboardProvider handles clipboard read/write operations (OSC 52).
type ClipboardProvider interface {
	Read(clipboard byte) string
	Write(clipboard byte, data []byte)
}

// NoopClipboard ignores all clipboard operations.
type NoopClipboard struct{}

func (NoopClipboard) Read(clipboard byte) string        { return "" }
func (NoopClipboard) Write(clipboard byte, data []byte) {}

// --- Notification Provider ---

// NotificationProvider handles desktop notifications (OSC 99). The returned
// string, if non-empty, is written back as the query response.
type NotificationProvider interface {
	Notify(payload *NotificationPayload) string
}

// NoopNotification ignores all notifications.
type NoopNotification struct{}

func (NoopNotification) Notify(payload *NotificationPayload) string { return "" }

// --- Size Provider ---

// SizeProvider reports the pixel geometry of a character cell, used to
// answer pixel-size queries and to convert image extents to cells.
type SizeProvider interface {
	CellSizePixels() (width, height int)
}

// FixedCellSize reports a constant cell geometry.
type FixedCellSize struct {
	Width  int
	Height int
}

func (f FixedCellSize) CellSizePixels() (int, int) {
	return f.Width, f.Height
}

// --- Failure Provider ---

// FailureProvider observes internal consistency violations: conditions the
// terminal recovers from by clamping or ignoring, but that indicate a bug or
// hostile input worth surfacing.
type FailureProvider interface {
	Failure(op string, detail string)
}

// NoopFailure ignores all failure reports.
type NoopFailure struct{}

func (NoopFailure) Failure(op string, detail string) {}

// --- Mark Provider ---

// ShellIntegrationMark identifies an OSC 133 semantic prompt boundary.
type ShellIntegrationMark byte

const (
	// MarkPromptStart precedes the shell prompt (OSC 133;A).
	MarkPromptStart ShellIntegrationMark = 'A'
	// MarkCommandStart precedes the typed command (OSC 133;B).
	MarkCommandStart ShellIntegrationMark = 'B'
	// MarkCommandExecuted precedes the command output (OSC 133;C).
	MarkCommandExecuted ShellIntegrationMark = 'C'
	// MarkCommandFinished follows the command output, optionally carrying
	// the exit code (OSC 133;D;code).
	MarkCommandFinished ShellIntegrationMark = 'D'
)

// MarkProvider observes shell integration marks (OSC 133 prompt/command
// boundaries). exitCode is -1 when the mark carries none.
type MarkProvider interface {
	Mark(mark ShellIntegrationMark, exitCode int)
}

// NoopMark ignores all shell integration marks.
type NoopMark struct{}

func (NoopMark) Mark(mark ShellIntegrationMark, exitCode int) {}

// Ensure implementations satisfy their interfaces
var (
	_ BellProvider         = NoopBell{}
	_ TitleProvider        = NoopTitle{}
	_ APCProvider          = NoopAPC{}
	_ PMProvider           = NoopPM{}
	_ SOSProvider          = NoopSOS{}
	_ ClipboardProvider    = NoopClipboard{}
	_ NotificationProvider = NoopNotification{}
	_ SizeProvider         = FixedCellSize{}
	_ FailureProvider      = NoopFailure{}
	_ MarkProvider         = NoopMark{}
	_ RecordingProvider    = NoopRecording{}
)
