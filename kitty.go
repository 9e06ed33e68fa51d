package vtscreen

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
)

// Kitty graphics protocol: APC G sequences carrying key=value control data
// and a base64 payload. Supported actions cover transmission (chunked or
// not), display, query and deletion; animation actions are ignored.

// KittyAction selects what a graphics command does.
type KittyAction byte

const (
	KittyActionTransmit        KittyAction = 't'
	KittyActionTransmitDisplay KittyAction = 'T'
	KittyActionQuery           KittyAction = 'q'
	KittyActionPut             KittyAction = 'p'
	KittyActionDelete          KittyAction = 'd'
)

// KittyFormat is the payload pixel format.
type KittyFormat uint32

const (
	KittyFormatRGB  KittyFormat = 24
	KittyFormatRGBA KittyFormat = 32
	KittyFormatPNG  KittyFormat = 100
)

// KittyCommand is one parsed graphics escape.
type KittyCommand struct {
	Action      KittyAction
	Format      KittyFormat
	Compression byte // 'z' for zlib

	ImageID     uint32 // i=
	PlacementID uint32 // p=

	Width  uint32 // s=
	Height uint32 // v=
	More   bool   // m=

	Cols, Rows      uint32 // c=, r=
	DoNotMoveCursor bool   // C=
	Delete          byte   // d=
	Quiet           uint32 // q=

	Payload []byte
}

// ParseKittyCommand parses the APC content (after the leading G, without the
// terminator) into a command. The payload is base64 decoded.
func ParseKittyCommand(data []byte) (*KittyCommand, error) {
	cmd := &KittyCommand{
		Action: KittyActionTransmitDisplay,
		Format: KittyFormatRGBA,
	}

	control := data
	var payload []byte
	if sep := bytes.IndexByte(data, ';'); sep >= 0 {
		control = data[:sep]
		payload = data[sep+1:]
	}

	for _, pair := range bytes.Split(control, []byte{','}) {
		eq := bytes.IndexByte(pair, '=')
		if eq != 1 {
			continue
		}
		key := pair[0]
		value := pair[2:]
		switch key {
		case 'a':
			if len(value) > 0 {
				cmd.Action = KittyAction(value[0])
			}
		case 'f':
			cmd.Format = KittyFormat(kittyUint(value))
		case 'o':
			if len(value) > 0 {
				cmd.Compression = value[0]
			}
		case 'i':
			cmd.ImageID = kittyUint(value)
		case 'p':
			cmd.PlacementID = kittyUint(value)
		case 's':
			cmd.Width = kittyUint(value)
		case 'v':
			cmd.Height = kittyUint(value)
		case 'm':
			cmd.More = kittyUint(value) == 1
		case 'c':
			cmd.Cols = kittyUint(value)
		case 'r':
			cmd.Rows = kittyUint(value)
		case 'C':
			cmd.DoNotMoveCursor = kittyUint(value) == 1
		case 'd':
			if len(value) > 0 {
				cmd.Delete = value[0]
			}
		case 'q':
			cmd.Quiet = kittyUint(value)
		}
	}

	if len(payload) > 0 {
		decoded, err := base64.StdEncoding.DecodeString(string(payload))
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(string(payload))
			if err != nil {
				return nil, fmt.Errorf("kitty: decode payload: %w", err)
			}
		}
		cmd.Payload = decoded
	}
	return cmd, nil
}

func kittyUint(b []byte) uint32 {
	n, _ := strconv.ParseUint(string(b), 10, 32)
	return uint32(n)
}

// decodePixels turns the accumulated payload into RGBA pixels.
func (cmd *KittyCommand) decodePixels(payload []byte) ([]byte, uint32, uint32, error) {
	if cmd.Compression == 'z' && len(payload) > 0 {
		r, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("kitty: zlib: %w", err)
		}
		defer r.Close()
		payload, err = io.ReadAll(r)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("kitty: decompress: %w", err)
		}
	}

	switch cmd.Format {
	case KittyFormatPNG:
		return decodePNG(payload)
	case KittyFormatRGB:
		expected := int(cmd.Width) * int(cmd.Height) * 3
		if cmd.Width == 0 || cmd.Height == 0 || len(payload) < expected {
			return nil, 0, 0, fmt.Errorf("kitty: RGB payload needs %d bytes, got %d", expected, len(payload))
		}
		rgba := make([]byte, cmd.Width*cmd.Height*4)
		for i := 0; i < int(cmd.Width)*int(cmd.Height); i++ {
			rgba[i*4] = payload[i*3]
			rgba[i*4+1] = payload[i*3+1]
			rgba[i*4+2] = payload[i*3+2]
			rgba[i*4+3] = 255
		}
		return rgba, cmd.Width, cmd.Height, nil
	case KittyFormatRGBA:
		expected := int(cmd.Width) * int(cmd.Height) * 4
		if cmd.Width == 0 || cmd.Height == 0 || len(payload) < expected {
			return nil, 0, 0, fmt.Errorf("kitty: RGBA payload needs %d bytes, got %d", expected, len(payload))
		}
		return payload[:expected], cmd.Width, cmd.Height, nil
	default:
		return nil, 0, 0, fmt.Errorf("kitty: unsupported format %d", cmd.Format)
	}
}

// decodePNG decodes PNG (or any registered image format) data to RGBA.
func decodePNG(data []byte) ([]byte, uint32, uint32, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("kitty: decode image: %w", err)
		}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgba := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := (y*w + x) * 4
			rgba[off] = uint8(r >> 8)
			rgba[off+1] = uint8(g >> 8)
			rgba[off+2] = uint8(b >> 8)
			rgba[off+3] = uint8(a >> 8)
		}
	}
	return rgba, uint32(w), uint32(h), nil
}

// KittyResponse builds the reply for a graphics command: "OK" on success or
// an error message.
func KittyResponse(imageID uint32, message string) string {
	if imageID > 0 {
		return fmt.Sprintf("\x1b_Gi=%d;%s\x1b\\", imageID, message)
	}
	return fmt.Sprintf("\x1b_G;%s\x1b\\", message)
}

// KittyEngine executes parsed graphics commands against a screen, holding
// the accumulator for chunked transmissions.
type KittyEngine struct {
	pending *KittyCommand
	accum   []byte
}

// Handle processes one APC G sequence body and returns the reply to send,
// or "" when the command expects none (intermediate chunks, quiet mode).
func (e *KittyEngine) Handle(data []byte, s *Screen) string {
	cmd, err := ParseKittyCommand(data)
	if err != nil {
		return KittyResponse(0, err.Error())
	}

	// Continuation chunks carry only m= and the payload.
	if e.pending != nil {
		e.accum = append(e.accum, cmd.Payload...)
		if cmd.More {
			return ""
		}
		done := e.pending
		payload := e.accum
		e.pending = nil
		e.accum = nil
		return e.finish(done, payload, s)
	}

	switch cmd.Action {
	case KittyActionQuery:
		if cmd.Quiet >= 1 {
			return ""
		}
		return KittyResponse(cmd.ImageID, "OK")
	case KittyActionDelete:
		e.handleDelete(cmd, s)
		return ""
	case KittyActionPut:
		img := s.state.Images.Image(cmd.ImageID)
		if img == nil {
			return KittyResponse(cmd.ImageID, "ENOENT:image not found")
		}
		e.place(cmd, img, s)
		if cmd.Quiet >= 1 {
			return ""
		}
		return KittyResponse(cmd.ImageID, "OK")
	case KittyActionTransmit, KittyActionTransmitDisplay:
		if cmd.More {
			e.pending = cmd
			e.accum = append([]byte(nil), cmd.Payload...)
			return ""
		}
		return e.finish(cmd, cmd.Payload, s)
	default:
		return ""
	}
}

func (e *KittyEngine) finish(cmd *KittyCommand, payload []byte, s *Screen) string {
	pixels, width, height, err := cmd.decodePixels(payload)
	if err != nil {
		return KittyResponse(cmd.ImageID, "EINVAL:"+err.Error())
	}

	var img *Image
	if cmd.ImageID > 0 {
		img = s.state.Images.StoreWithID(cmd.ImageID, ImageFormatRGBA, width, height, pixels)
	} else {
		img = s.state.Images.Store(ImageFormatRGBA, width, height, pixels)
	}

	if cmd.Action == KittyActionTransmitDisplay {
		e.place(cmd, img, s)
	}
	if cmd.Quiet >= 1 {
		return ""
	}
	return KittyResponse(cmd.ImageID, "OK")
}

// place maps the image to a cell extent and writes it at the cursor. The
// extent comes from c=/r= when given, otherwise from the pixel size divided
// by the cell geometry.
func (e *KittyEngine) place(cmd *KittyCommand, img *Image, s *Screen) {
	cols := int(cmd.Cols)
	rows := int(cmd.Rows)
	if cols == 0 {
		cols = pixelsToCells(int(img.Width), s.state.CellPixelWidth)
	}
	if rows == 0 {
		rows = pixelsToCells(int(img.Height), s.state.CellPixelHeight)
	}

	if cmd.DoNotMoveCursor {
		saved := s.cursor.Position
		pending := s.cursor.WrapPending
		s.PlaceImage(img, rows, cols)
		s.cursor.Position = s.clampToPage(saved)
		s.cursor.WrapPending = pending
		return
	}
	s.PlaceImage(img, rows, cols)
}

func (e *KittyEngine) handleDelete(cmd *KittyCommand, s *Screen) {
	switch cmd.Delete {
	case 'i', 'I':
		s.state.Images.Delete(cmd.ImageID)
	case 'a', 'A', 0:
		s.state.Images.Reset()
	}
}

// pixelsToCells converts a pixel extent to cells, rounding up.
func pixelsToCells(pixels, perCell int) int {
	if perCell <= 0 {
		return 1
	}
	n := (pixels + perCell - 1) / perCell
	if n < 1 {
		n = 1
	}
	return n
}
