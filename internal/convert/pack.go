package convert

import (
	"fmt"
	"image"
)

// EPD panel geometry (7.5" B V2, black/red).
const (
	EPDWidth      = 800
	EPDHeight     = 480
	EPDByteStride = EPDWidth / 8 // 100 bytes per row
	EPDPlaneSize  = EPDByteStride * EPDHeight
)

// PackGray converts a two-color *image.Gray into the packed 1bpp plane the
// Waveshare 7.5" B V2 panel expects for its black channel.
//
// Requirements / behavior:
//
//   - img must be exactly 800x480 pixels.
//   - pixels with luma < 128 are ink (black); everything else is white.
//
// Packing rules:
//
//   - y-major, MSB-first 1bpp:
//     byteIndex = y * 100 + (x >> 3)
//     mask      = 0x80 >> (x & 7)
//   - all bits start at 1 (white); ink pixels clear their bit to 0.
func PackGray(img *image.Gray) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() != EPDWidth || b.Dy() != EPDHeight {
		return nil, fmt.Errorf("convert: expected %dx%d image, got %dx%d",
			EPDWidth, EPDHeight, b.Dx(), b.Dy())
	}

	plane := BlankPlane()

	// Walk the pixel buffer directly via Stride to avoid At() per pixel.
	for y := 0; y < EPDHeight; y++ {
		rowOff := y * img.Stride
		for x := 0; x < EPDWidth; x++ {
			if img.Pix[rowOff+x] >= 128 {
				continue
			}
			byteIndex := y*EPDByteStride + (x >> 3)
			plane[byteIndex] &^= 0x80 >> (x & 7) // 0 = ink
		}
	}

	return plane, nil
}

// BlankPlane returns an all-white plane. The application sends one of these
// as the panel's red channel on every run.
func BlankPlane() []byte {
	plane := make([]byte, EPDPlaneSize)
	for i := range plane {
		plane[i] = 0xFF
	}
	return plane
}
