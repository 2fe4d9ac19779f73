package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 32

var (
	iconFrame = color.RGBA{0x00, 0x78, 0xd4, 0xff}
	iconText  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	iconFill  = color.RGBA{0x33, 0x33, 0x33, 0xe0}
)

// drawIcon renders the tray glyph: a dashed selection frame around a dark
// panel carrying a "T".
func drawIcon() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			edge := x < 2 || y < 2 || x >= iconSize-2 || y >= iconSize-2
			switch {
			case edge && (x+y)/4%2 == 0:
				img.SetRGBA(x, y, iconFrame)
			case x >= 5 && y >= 5 && x < iconSize-5 && y < iconSize-5:
				img.SetRGBA(x, y, iconFill)
			}
		}
	}
	// "T": bar then stem
	for y := 9; y < 12; y++ {
		for x := 9; x < 23; x++ {
			img.SetRGBA(x, y, iconText)
		}
	}
	for y := 12; y < 24; y++ {
		for x := 14; x < 18; x++ {
			img.SetRGBA(x, y, iconText)
		}
	}
	return img
}

func iconPNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, drawIcon()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrapICO embeds a PNG image in a single-entry .ico container, the format
// the Windows tray expects.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	// ICONDIR
	binary.Write(&buf, binary.LittleEndian, struct {
		Reserved, Type, Count uint16
	}{0, 1, 1})
	// ICONDIRENTRY; 0 in width/height means 256
	dim := uint8(size)
	if size >= 256 {
		dim = 0
	}
	binary.Write(&buf, binary.LittleEndian, struct {
		Width, Height, Colors, Reserved uint8
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{dim, dim, 0, 0, 1, 32, uint32(len(pngData)), 6 + 16})
	buf.Write(pngData)
	return buf.Bytes()
}

// Icon returns the tray icon bytes for the current platform.
func Icon() []byte {
	data, err := iconPNG()
	if err != nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return wrapICO(data, iconSize)
	}
	return data
}
