// Package vtscreen provides a headless VT320/xterm-compatible terminal
// emulation core.
//
// The package models the screen of a terminal without any display, making it
// useful for:
//   - Testing terminal applications without a GUI
//   - Building terminal multiplexers and recorders
//   - Driving terminals from servers and automation
//   - Screen scraping of CLI tools
//
// # Quick Start
//
// Create a terminal and write ANSI sequences to it:
//
//	term := vtscreen.New()
//	term.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	fmt.Println(term.String()) // "Hello World!"
//
// # Architecture
//
// The package is organized around these core types:
//
//   - [Terminal]: The concurrency-safe front end that decodes ANSI sequences
//   - [Screen]: One screen buffer applying VT semantics (cursor, margins, erase)
//   - [Grid]: A ring of lines holding the page plus scrolled-off history
//   - [Line]: One row of cells with wrap and trivia flags
//   - [Cell]: A single grapheme with colors and attributes
//   - [TerminalState]: State shared between the primary and alternate screen
//
// # Terminal
//
// Terminal is the main entry point. It implements [io.Writer] so you can feed
// it raw bytes containing ANSI escape sequences:
//
//	term := vtscreen.New(
//	    vtscreen.WithSize(24, 80),        // 24 lines, 80 columns
//	    vtscreen.WithMaxHistory(10000),   // scrollback line limit
//	    vtscreen.WithResponse(ptyWriter), // terminal replies (DSR, DA, ...)
//	)
//
//	cmd := exec.Command("ls", "-la", "--color")
//	cmd.Stdout = term
//	cmd.Run()
//
//	for line := 0; line < term.Lines(); line++ {
//	    fmt.Println(term.LineContent(line))
//	}
//
// # Dual Screens
//
// Terminal maintains two screens sharing one [TerminalState]:
//
//   - Primary screen: normal mode, with history and optional reflow on resize
//   - Alternate screen: used by full-screen apps (vim, less, htop), no history
//
// Applications switch screens via CSI ?1049h/l. Check which one is active
// with [Terminal.IsAlternateScreen].
//
// # History and Negative Lines
//
// Line numbers are relative to the top of the page: line 0 is the first
// visible line, negative lines address scrolled-off history.
//
//	term.LineContent(0)   // top of the page
//	term.LineContent(-1)  // most recently scrolled-off line
//	term.HistoryLineCount()
//
// # Cells and Attributes
//
// Each cell stores a grapheme cluster with its rendition:
//
//	cell := term.Cell(line, col)
//	fmt.Printf("Char: %c\n", cell.Char)
//	fmt.Printf("Bold: %v\n", cell.HasFlag(vtscreen.CellFlagBold))
//	fmt.Printf("FG: %v\n", cell.Fg)
//
// Colors use Go's [image/color] interface: [color.RGBA] for true color,
// [IndexedColor] for the 256-color palette and [NamedColor] for the
// default-color slots. [ColorPalette.Resolve] flattens any of them to RGBA,
// honoring OSC 4 redefinitions.
//
// # Resize and Reflow
//
// [Terminal.Resize] changes the page size. On the primary screen long lines
// rejoin and rewrap when reflow is enabled; the alternate screen is always
// clipped.
//
// # Providers
//
// Providers handle terminal events and queries. All are optional with no-op
// defaults:
//
//   - [BellProvider]: bell events
//   - [TitleProvider]: window title changes (OSC 0/1/2)
//   - [ClipboardProvider]: clipboard operations (OSC 52)
//   - [NotificationProvider]: desktop notifications (OSC 777/99)
//   - [MarkProvider]: shell integration marks (OSC 133)
//   - [RecordingProvider]: raw input capture for replay
//   - [SizeProvider]: pixel dimensions for window queries
//   - [FailureProvider]: decode and consistency failures
//
// # Images
//
// Sixel and kitty graphics are decoded into an LRU [ImagePool] and placed on
// the grid as per-cell fragments:
//
//	term := vtscreen.New(vtscreen.WithSixel(true), vtscreen.WithKitty(true))
//
// # Screenshots
//
// Render the visible page to an [image.RGBA], or reconstruct it as a VT
// byte sequence that replays into another terminal:
//
//	img := term.Screenshot()
//	png.Encode(file, img)
//
//	seq := term.VTScreenshot()
//
// # Search
//
// Find text in the page or the history:
//
//	if loc, ok := term.Search("error", vtscreen.CellLocation{}); ok {
//	    fmt.Printf("found at line %d, column %d\n", loc.Line, loc.Column)
//	}
//
// # Thread Safety
//
// All Terminal methods are safe for concurrent use. [Screen] and [Grid] are
// not; use them directly only from a single goroutine.
//
// For the list of decoded sequences, see the [go-ansicode] package.
//
// [go-ansicode]: https://github.com/danielgatis/go-ansicode
package vtscreen
