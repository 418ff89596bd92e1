package convert

import (
	"image"
	"image/color"
	"testing"
)

func whiteCanvas() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, EPDWidth, EPDHeight))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

func TestPackGrayAllWhite(t *testing.T) {
	plane, err := PackGray(whiteCanvas())
	if err != nil {
		t.Fatalf("PackGray: %v", err)
	}
	if len(plane) != EPDPlaneSize {
		t.Fatalf("plane size=%d want %d", len(plane), EPDPlaneSize)
	}
	for i, b := range plane {
		if b != 0xFF {
			t.Fatalf("byte %d = %#02x, want 0xFF", i, b)
		}
	}
}

func TestPackGrayBitPlacement(t *testing.T) {
	img := whiteCanvas()
	// One black pixel at (10, 3): byte 3*100 + 1, bit 0x80>>2.
	img.SetGray(10, 3, color.Gray{Y: 0})

	plane, err := PackGray(img)
	if err != nil {
		t.Fatalf("PackGray: %v", err)
	}

	idx := 3*EPDByteStride + 1
	if plane[idx] != 0xFF&^(0x80>>2) {
		t.Errorf("byte %d = %#02x", idx, plane[idx])
	}
	// No other byte may be touched.
	for i, b := range plane {
		if i != idx && b != 0xFF {
			t.Errorf("unexpected ink in byte %d = %#02x", i, b)
		}
	}
}

func TestPackGrayWrongSize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 640, 384))
	if _, err := PackGray(img); err == nil {
		t.Fatal("expected size error")
	}
}

func TestBlankPlane(t *testing.T) {
	plane := BlankPlane()
	if len(plane) != EPDPlaneSize {
		t.Fatalf("size=%d", len(plane))
	}
	for i, b := range plane {
		if b != 0xFF {
			t.Fatalf("byte %d = %#02x", i, b)
		}
	}
}
