package vtscreen

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"testing"
)

func kittyPayload(pixels []byte) string {
	return base64.StdEncoding.EncodeToString(pixels)
}

func TestParseKittyCommand(t *testing.T) {
	pixels := make([]byte, 2*2*4)
	data := []byte("a=T,f=32,s=2,v=2,i=5,p=1,c=3,r=2;" + kittyPayload(pixels))

	cmd, err := ParseKittyCommand(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != KittyActionTransmitDisplay {
		t.Errorf("expected action 'T', got %q", cmd.Action)
	}
	if cmd.Format != KittyFormatRGBA {
		t.Errorf("expected format 32, got %d", cmd.Format)
	}
	if cmd.Width != 2 || cmd.Height != 2 {
		t.Errorf("expected size 2x2, got %dx%d", cmd.Width, cmd.Height)
	}
	if cmd.ImageID != 5 || cmd.PlacementID != 1 {
		t.Errorf("expected image 5 placement 1, got %d/%d", cmd.ImageID, cmd.PlacementID)
	}
	if cmd.Cols != 3 || cmd.Rows != 2 {
		t.Errorf("expected extent 3x2, got %dx%d", cmd.Cols, cmd.Rows)
	}
	if len(cmd.Payload) != len(pixels) {
		t.Errorf("expected %d payload bytes, got %d", len(pixels), len(cmd.Payload))
	}
}

func TestParseKittyCommandDefaults(t *testing.T) {
	cmd, err := ParseKittyCommand([]byte("i=1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != KittyActionTransmitDisplay {
		t.Errorf("expected default action 'T', got %q", cmd.Action)
	}
	if cmd.Format != KittyFormatRGBA {
		t.Errorf("expected default format RGBA, got %d", cmd.Format)
	}
}

func TestParseKittyCommandBadPayload(t *testing.T) {
	if _, err := ParseKittyCommand([]byte("a=t;@@@not base64@@@")); err == nil {
		t.Error("expected an error for undecodable payload")
	}
}

func TestKittyQuery(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)

	resp := e.Handle([]byte("a=q,i=31,s=1,v=1;"+kittyPayload(make([]byte, 4))), s)
	if resp != "\x1b_Gi=31;OK\x1b\\" {
		t.Errorf("expected an OK reply, got %q", resp)
	}

	if resp := e.Handle([]byte("a=q,i=31,q=1"), s); resp != "" {
		t.Errorf("expected quiet query to stay silent, got %q", resp)
	}
}

func TestKittyTransmitDisplay(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)
	pixels := make([]byte, 2*2*4)

	resp := e.Handle([]byte("a=T,f=32,s=2,v=2,i=7;"+kittyPayload(pixels)), s)
	if resp != "\x1b_Gi=7;OK\x1b\\" {
		t.Fatalf("expected an OK reply, got %q", resp)
	}

	img := s.state.Images.Image(7)
	if img == nil {
		t.Fatal("expected the image stored under its ID")
	}
	if img.Width != 2 || img.Height != 2 {
		t.Errorf("expected a 2x2 image, got %dx%d", img.Width, img.Height)
	}

	cell := s.grid.CellAt(CellLocation{Line: 0, Column: 0})
	if cell.Fragment == nil || cell.Fragment.Image != img {
		t.Error("expected an image fragment placed at the cursor")
	}
}

func TestKittyTransmitOnly(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)

	e.Handle([]byte("a=t,f=32,s=1,v=1,i=4;"+kittyPayload(make([]byte, 4))), s)

	if s.state.Images.Image(4) == nil {
		t.Fatal("expected the image stored")
	}
	if cell := s.grid.CellAt(CellLocation{Line: 0, Column: 0}); cell.Fragment != nil {
		t.Error("expected no placement for a plain transmit")
	}
}

func TestKittyChunkedTransmission(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)
	pixels := make([]byte, 1*2*4)
	for i := range pixels {
		pixels[i] = byte(i)
	}

	resp := e.Handle([]byte("a=t,f=32,s=1,v=2,i=9,m=1;"+kittyPayload(pixels[:4])), s)
	if resp != "" {
		t.Errorf("expected no reply for an intermediate chunk, got %q", resp)
	}
	resp = e.Handle([]byte("m=0;"+kittyPayload(pixels[4:])), s)
	if resp != "\x1b_Gi=9;OK\x1b\\" {
		t.Fatalf("expected an OK reply on the final chunk, got %q", resp)
	}

	img := s.state.Images.Image(9)
	if img == nil {
		t.Fatal("expected the assembled image stored")
	}
	if !bytes.Equal(img.Data, pixels) {
		t.Error("expected the chunks reassembled in order")
	}
}

func TestKittyPut(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)

	e.Handle([]byte("a=t,f=32,s=1,v=1,i=6;"+kittyPayload(make([]byte, 4))), s)
	resp := e.Handle([]byte("a=p,i=6,c=2,r=1"), s)
	if resp != "\x1b_Gi=6;OK\x1b\\" {
		t.Errorf("expected an OK reply, got %q", resp)
	}
	if cell := s.grid.CellAt(CellLocation{Line: 0, Column: 0}); cell.Fragment == nil {
		t.Error("expected a fragment placed by the put action")
	}
}

func TestKittyPutMissingImage(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)

	resp := e.Handle([]byte("a=p,i=99"), s)
	if resp != "\x1b_Gi=99;ENOENT:image not found\x1b\\" {
		t.Errorf("expected an ENOENT reply, got %q", resp)
	}
}

func TestKittyDelete(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)

	e.Handle([]byte("a=t,f=32,s=1,v=1,i=3;"+kittyPayload(make([]byte, 4))), s)
	e.Handle([]byte("a=d,d=i,i=3"), s)
	if s.state.Images.Image(3) != nil {
		t.Error("expected the image deleted by ID")
	}

	e.Handle([]byte("a=t,f=32,s=1,v=1,i=3;"+kittyPayload(make([]byte, 4))), s)
	e.Handle([]byte("a=d,d=a"), s)
	if s.state.Images.Count() != 0 {
		t.Errorf("expected the pool cleared, got %d images", s.state.Images.Count())
	}
}

func TestKittyRGBFormat(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)
	rgb := []byte{10, 20, 30, 40, 50, 60}

	e.Handle([]byte("a=t,f=24,s=2,v=1,i=8;"+kittyPayload(rgb)), s)

	img := s.state.Images.Image(8)
	if img == nil {
		t.Fatal("expected the image stored")
	}
	want := []byte{10, 20, 30, 255, 40, 50, 60, 255}
	if !bytes.Equal(img.Data, want) {
		t.Errorf("expected RGB expanded to opaque RGBA, got %v", img.Data)
	}
}

func TestKittyZlibCompression(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)
	pixels := make([]byte, 1*1*4)
	pixels[3] = 255

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(pixels)
	zw.Close()

	resp := e.Handle([]byte("a=t,f=32,o=z,s=1,v=1,i=2;"+kittyPayload(compressed.Bytes())), s)
	if resp != "\x1b_Gi=2;OK\x1b\\" {
		t.Fatalf("expected an OK reply, got %q", resp)
	}
	img := s.state.Images.Image(2)
	if img == nil || !bytes.Equal(img.Data, pixels) {
		t.Error("expected the payload decompressed before storing")
	}
}

func TestKittyTruncatedPayload(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)

	resp := e.Handle([]byte("a=t,f=32,s=4,v=4,i=5;"+kittyPayload(make([]byte, 8))), s)
	if resp == "" || resp == "\x1b_Gi=5;OK\x1b\\" {
		t.Errorf("expected an EINVAL reply for a short payload, got %q", resp)
	}
	if s.state.Images.Image(5) != nil {
		t.Error("expected nothing stored for a short payload")
	}
}

func TestKittyDoNotMoveCursor(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)

	e.Handle([]byte("a=T,f=32,s=1,v=1,i=1,c=2,r=1,C=1;"+kittyPayload(make([]byte, 4))), s)

	if pos := s.CursorPosition(); pos.Line != 0 || pos.Column != 0 {
		t.Errorf("expected the cursor unmoved, got (%d,%d)", pos.Line, pos.Column)
	}
	if cell := s.grid.CellAt(CellLocation{Line: 0, Column: 0}); cell.Fragment == nil {
		t.Error("expected the image still placed")
	}
}

func TestKittyQuietSuppressesReply(t *testing.T) {
	var e KittyEngine
	s := testScreen(5, 10)

	resp := e.Handle([]byte("a=T,f=32,s=1,v=1,i=1,q=1;"+kittyPayload(make([]byte, 4))), s)
	if resp != "" {
		t.Errorf("expected no reply in quiet mode, got %q", resp)
	}
	if s.state.Images.Image(1) == nil {
		t.Error("expected the image still stored")
	}
}

func TestPixelsToCells(t *testing.T) {
	if got := pixelsToCells(15, 10); got != 2 {
		t.Errorf("expected 15px in 10px cells to round up to 2, got %d", got)
	}
	if got := pixelsToCells(10, 10); got != 1 {
		t.Errorf("expected an exact fit to be 1, got %d", got)
	}
	if got := pixelsToCells(1, 0); got != 1 {
		t.Errorf("expected a zero cell size to fall back to 1, got %d", got)
	}
}
