package display

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"epdweather/internal/convert"
)

// fakePanel records the call order and can fail any step.
type fakePanel struct {
	calls []string

	initErr    error
	clearErr   error
	displayErr error
	sleepErr   error

	black []byte
	red   []byte
}

func (f *fakePanel) Init() error {
	f.calls = append(f.calls, "init")
	return f.initErr
}

func (f *fakePanel) Clear() error {
	f.calls = append(f.calls, "clear")
	return f.clearErr
}

func (f *fakePanel) Display(black, red []byte) error {
	f.calls = append(f.calls, "display")
	f.black = black
	f.red = red
	return f.displayErr
}

func (f *fakePanel) Sleep() error {
	f.calls = append(f.calls, "sleep")
	return f.sleepErr
}

func whiteCanvas() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, convert.EPDWidth, convert.EPDHeight))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

func TestShowSequence(t *testing.T) {
	panel := &fakePanel{}
	if err := Show(panel, whiteCanvas()); err != nil {
		t.Fatalf("Show: %v", err)
	}

	want := []string{"init", "clear", "display", "sleep"}
	if !reflect.DeepEqual(panel.calls, want) {
		t.Fatalf("calls=%v want %v", panel.calls, want)
	}
	if len(panel.black) != convert.EPDPlaneSize {
		t.Errorf("black plane size=%d", len(panel.black))
	}
	// The red channel is always blank.
	for i, b := range panel.red {
		if b != 0xFF {
			t.Fatalf("red plane byte %d = %#02x, want blank", i, b)
		}
	}
}

func TestShowSleepsAfterTransferFailure(t *testing.T) {
	panel := &fakePanel{displayErr: errors.New("spi went away")}
	err := Show(panel, whiteCanvas())
	if err == nil {
		t.Fatal("expected error")
	}

	want := []string{"init", "clear", "display", "sleep"}
	if !reflect.DeepEqual(panel.calls, want) {
		t.Fatalf("calls=%v want %v (sleep must still run)", panel.calls, want)
	}
}

func TestShowInitFailureSkipsRest(t *testing.T) {
	panel := &fakePanel{initErr: errors.New("no hardware")}
	if err := Show(panel, whiteCanvas()); err == nil {
		t.Fatal("expected error")
	}
	if !reflect.DeepEqual(panel.calls, []string{"init"}) {
		t.Fatalf("calls=%v", panel.calls)
	}
}

func TestShowRejectsWrongSize(t *testing.T) {
	panel := &fakePanel{}
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	if err := Show(panel, img); err == nil {
		t.Fatal("expected pack error")
	}
	if len(panel.calls) != 0 {
		t.Fatalf("panel touched on pack failure: %v", panel.calls)
	}
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	if err := Dump(whiteCanvas(), dir); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "preview.png")); err != nil {
		t.Errorf("preview.png: %v", err)
	}
	plane, err := os.ReadFile(filepath.Join(dir, "black.bin"))
	if err != nil {
		t.Fatalf("black.bin: %v", err)
	}
	if len(plane) != convert.EPDPlaneSize {
		t.Errorf("plane size=%d", len(plane))
	}
}
