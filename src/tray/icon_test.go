package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"
)

func TestIconPNGDecodes(t *testing.T) {
	data, err := iconPNG()
	if err != nil {
		t.Fatalf("iconPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Fatalf("icon is %dx%d", b.Dx(), b.Dy())
	}
}

func TestWrapICOHeader(t *testing.T) {
	payload := []byte("\x89PNG fake")
	ico := wrapICO(payload, 32)

	if len(ico) != 22+len(payload) {
		t.Fatalf("ico length = %d", len(ico))
	}
	if typ := binary.LittleEndian.Uint16(ico[2:4]); typ != 1 {
		t.Errorf("type = %d, want 1 (icon)", typ)
	}
	if n := binary.LittleEndian.Uint16(ico[4:6]); n != 1 {
		t.Errorf("count = %d", n)
	}
	if ico[6] != 32 || ico[7] != 32 {
		t.Errorf("dimensions = %dx%d", ico[6], ico[7])
	}
	if size := binary.LittleEndian.Uint32(ico[14:18]); size != uint32(len(payload)) {
		t.Errorf("size = %d", size)
	}
	if off := binary.LittleEndian.Uint32(ico[18:22]); off != 22 {
		t.Errorf("offset = %d", off)
	}
	if !bytes.Equal(ico[22:], payload) {
		t.Error("payload not copied after header")
	}
}

func TestWrapICOLargeSizeIsZero(t *testing.T) {
	ico := wrapICO([]byte{1}, 256)
	if ico[6] != 0 || ico[7] != 0 {
		t.Fatalf("256px dimensions should encode as 0, got %d", ico[6])
	}
}
