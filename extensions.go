package vtscreen

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// The decoder drops DCS strings and the OSC numbers it does not recognize.
// The extension router scans the byte stream ahead of the decoder,
// intercepts the sequences the decoder would discard (sixel, DECRQSS,
// XTGETTCAP, DECRQTSR, the XTWINOPS cell size query, and OSC 7/99/133/1337),
// and forwards everything else untouched. A sequence may arrive split
// across Write calls, so an unfinished candidate is carried over to the
// next call.

type extensionKind int

const (
	extNone extensionKind = iota
	extIncomplete
	extSixel
	extStatusString
	extCapabilities
	extCellSize
	extTabStops
	extOSC
)

// maxExtensionPending bounds the carry-over buffer. An unterminated
// candidate larger than this is handed to the decoder instead.
const maxExtensionPending = 4 << 20

type extensionRouter struct {
	pending []byte
}

// route splits data into passthrough segments and intercepted sequences,
// keeping byte order: each passthrough segment reaches the decoder before
// the sequence that follows it is dispatched.
func (r *extensionRouter) route(t *Terminal, data []byte) error {
	buf := data
	if len(r.pending) > 0 {
		buf = append(r.pending, data...)
		r.pending = nil
	}

	start, i := 0, 0
	for i < len(buf) {
		if buf[i] != 0x1b {
			i++
			continue
		}
		kind, params, body, n := classifyExtension(buf[i:])
		switch kind {
		case extNone:
			i++
		case extIncomplete:
			if len(buf)-i > maxExtensionPending {
				i++
				continue
			}
			if err := t.forwardToDecoder(buf[start:i]); err != nil {
				return err
			}
			r.pending = append(r.pending, buf[i:]...)
			return nil
		default:
			if err := t.forwardToDecoder(buf[start:i]); err != nil {
				return err
			}
			dispatchExtension(t, kind, params, body)
			i += n
			start = i
		}
	}
	return t.forwardToDecoder(buf[start:])
}

func (t *Terminal) forwardToDecoder(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	_, err := t.decoder.Write(p)
	return err
}

// classifyExtension inspects a byte slice starting at an ESC. It returns
// the sequence kind, its parameter and body strings, and the byte length
// consumed. extNone means the decoder should handle it; extIncomplete
// means more bytes are needed to decide.
func classifyExtension(s []byte) (extensionKind, string, string, int) {
	if len(s) < 2 {
		return extIncomplete, "", "", 0
	}
	switch s[1] {
	case ']':
		return classifyOSC(s)
	case 'P':
		return classifyDCS(s)
	case '[':
		return classifyCSI(s)
	}
	return extNone, "", "", 0
}

// interceptedOSC reports whether the router handles this OSC number.
func interceptedOSC(number string) bool {
	switch number {
	case "7", "99", "133", "1337":
		return true
	}
	return false
}

func classifyOSC(s []byte) (extensionKind, string, string, int) {
	i := 2
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == len(s) {
		return extIncomplete, "", "", 0
	}
	if s[i] != ';' && s[i] != 0x07 && s[i] != 0x1b {
		return extNone, "", "", 0
	}
	number := string(s[2:i])
	if !interceptedOSC(number) {
		return extNone, "", "", 0
	}
	body, end, ok := findStringTerminator(s, i, true)
	if !ok {
		return extIncomplete, "", "", 0
	}
	return extOSC, number, strings.TrimPrefix(body, ";"), end
}

func classifyDCS(s []byte) (extensionKind, string, string, int) {
	i := 2
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == ';') {
		i++
	}
	params := string(s[2:i])
	j := i
	for j < len(s) && s[j] >= 0x20 && s[j] <= 0x2f {
		j++
	}
	if j == len(s) {
		return extIncomplete, "", "", 0
	}

	var kind extensionKind
	switch string(s[i:j]) + string(s[j]) {
	case "q":
		kind = extSixel
	case "$q":
		kind = extStatusString
	case "+q":
		kind = extCapabilities
	default:
		return extNone, "", "", 0
	}

	body, end, ok := findStringTerminator(s, j+1, false)
	if !ok {
		return extIncomplete, "", "", 0
	}
	return kind, params, body, end
}

func classifyCSI(s []byte) (extensionKind, string, string, int) {
	i := 2
	for i < len(s) && s[i] >= 0x20 && s[i] <= 0x3f {
		i++
	}
	if i == len(s) {
		return extIncomplete, "", "", 0
	}
	switch string(s[2:i]) + string(s[i]) {
	case "16t":
		return extCellSize, "", "", i + 1
	case "2$w":
		return extTabStops, "", "", i + 1
	}
	return extNone, "", "", 0
}

// findStringTerminator scans for BEL (when allowed) or ST from offset from.
// It returns the body before the terminator and the total length consumed,
// both relative to the start of s.
func findStringTerminator(s []byte, from int, allowBEL bool) (string, int, bool) {
	for i := from; i < len(s); i++ {
		switch {
		case allowBEL && s[i] == 0x07:
			return string(s[from:i]), i + 1, true
		case s[i] == 0x1b:
			if i+1 >= len(s) {
				return "", 0, false
			}
			if s[i+1] == '\\' {
				return string(s[from:i]), i + 2, true
			}
		}
	}
	return "", 0, false
}

func dispatchExtension(t *Terminal, kind extensionKind, params, body string) {
	switch kind {
	case extSixel:
		t.SixelReceived(sixelParams(params), []byte(body))
	case extStatusString:
		t.mu.RLock()
		reply := t.active.RequestStatusString(body)
		t.mu.RUnlock()
		t.writeResponse(reply)
	case extCapabilities:
		var b strings.Builder
		for _, name := range strings.Split(body, ";") {
			decoded, err := hex.DecodeString(name)
			if err != nil {
				continue
			}
			t.mu.RLock()
			reply := t.active.RequestCapability(string(decoded))
			t.mu.RUnlock()
			b.WriteString(reply)
		}
		t.writeResponse(b.String())
	case extCellSize:
		t.CellSizePixels()
	case extTabStops:
		t.mu.RLock()
		reply := t.active.RequestTabStops()
		t.mu.RUnlock()
		t.writeResponse(reply)
	case extOSC:
		dispatchOSC(t, params, body)
	}
}

func dispatchOSC(t *Terminal, number, body string) {
	switch number {
	case "7":
		t.SetWorkingDirectory(body)
	case "99":
		if payload, ok := parseNotification(body); ok {
			t.DesktopNotification(payload)
		}
	case "133":
		if body == "" {
			return
		}
		mark := ShellIntegrationMark(body[0])
		if mark < MarkPromptStart || mark > MarkCommandFinished {
			return
		}
		exitCode := -1
		if rest, ok := strings.CutPrefix(body[1:], ";"); ok {
			if code, err := strconv.Atoi(rest); err == nil {
				exitCode = code
			}
		}
		t.ShellIntegrationMark(mark, exitCode)
	case "1337":
		value, ok := strings.CutPrefix(body, "SetUserVar=")
		if !ok {
			return
		}
		name, encoded, ok := strings.Cut(value, "=")
		if !ok {
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return
		}
		t.SetUserVar(name, string(decoded))
	}
}

// parseNotification parses an OSC 99 body: colon-separated metadata
// key=value pairs, then ';' and the payload. d=0 marks a partial
// notification, e=1 marks a base64 encoded payload, p names the payload
// kind ("title" when absent).
func parseNotification(body string) (*NotificationPayload, bool) {
	metadata, data, _ := strings.Cut(body, ";")
	payload := &NotificationPayload{PayloadType: "title", Done: true}
	encoded := false
	for _, part := range strings.Split(metadata, ":") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch key {
		case "i":
			payload.ID = value
		case "p":
			payload.PayloadType = value
		case "d":
			payload.Done = value != "0"
		case "e":
			encoded = value == "1"
		}
	}
	if encoded {
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, false
		}
		payload.Data = decoded
	} else {
		payload.Data = []byte(data)
	}
	return payload, true
}

// sixelParams converts raw DCS parameter text into the parameter shape the
// sixel handler expects: one group per ';' separated value.
func sixelParams(raw string) [][]uint16 {
	if raw == "" {
		return nil
	}
	var params [][]uint16
	for _, p := range strings.Split(raw, ";") {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			n = 0
		}
		params = append(params, []uint16{uint16(n)})
	}
	return params
}
