package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 16

var (
	activeColor   = color.RGBA{R: 0x2e, G: 0xb8, B: 0x4b, A: 0xff}
	inactiveColor = color.RGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff}

	activeIcon   = platformIcon(renderDot(activeColor))
	inactiveIcon = platformIcon(renderDot(inactiveColor))
)

func iconFor(active bool) []byte {
	if active {
		return activeIcon
	}
	return inactiveIcon
}

// renderDot draws a filled circle on a transparent square and encodes it
// as PNG.
func renderDot(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	r := float64(iconSize)/2 - 1
	center := float64(iconSize) / 2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := float64(x) + 0.5 - center
			dy := float64(y) + 0.5 - center
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// platformIcon wraps the PNG in an ICO container on windows, which only
// accepts .ico data.
func platformIcon(pngData []byte) []byte {
	if runtime.GOOS == "windows" {
		return wrapICO(pngData, iconSize)
	}
	return pngData
}

// wrapICO builds a single-image ICO whose payload is PNG-compressed.
func wrapICO(pngData []byte, size int) []byte {
	const headerLen, entryLen = 6, 16
	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.WriteByte(byte(size % 256))
	buf.WriteByte(byte(size % 256))
	buf.WriteByte(0) // palette
	buf.WriteByte(0) // reserved
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bpp
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(headerLen+entryLen))
	buf.Write(pngData)
	return buf.Bytes()
}
