// Package render composes the 800x480 two-color dashboard image: template
// background, condition icon, and the fixed-position text labels.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	appLog "epdweather/internal/log"
	"epdweather/internal/model"
)

// Panel-native resolution. The template, if present, must match exactly.
const (
	Width  = 800
	Height = 480
)

// Icon paste origin.
var iconOrigin = image.Pt(40, 15)

var (
	inkBlack = color.Gray{Y: 0x00}
	inkWhite = color.Gray{Y: 0xFF}
)

// Renderer draws a Reading onto the panel canvas. All coordinates and font
// sizes are fixed; only the asset paths and unit suffixes vary.
type Renderer struct {
	templatePath string
	iconDir      string
	faces        *FaceSet
	units        model.Units
}

// New builds a Renderer with faces loaded from the given font file.
func New(fontPath, templatePath, iconDir string, units model.Units) (*Renderer, error) {
	faces, err := LoadFaces(fontPath)
	if err != nil {
		return nil, err
	}
	return NewWithFaces(faces, templatePath, iconDir, units), nil
}

// NewWithFaces builds a Renderer around pre-rasterized faces.
func NewWithFaces(faces *FaceSet, templatePath, iconDir string, units model.Units) *Renderer {
	return &Renderer{
		templatePath: templatePath,
		iconDir:      iconDir,
		faces:        faces,
		units:        units,
	}
}

// Compose renders the dashboard for a single reading. now supplies the
// "UPDATED hh:mm" stamp. The returned image contains only 0x00 and 0xFF
// pixels.
func (r *Renderer) Compose(reading model.Reading, now time.Time) (*image.Gray, error) {
	canvas, err := r.background()
	if err != nil {
		appLog.Error("template load failed", err, "path", r.templatePath)
		return nil, err
	}

	r.drawIcon(canvas, reading.IconCode)

	f := r.faces
	labels := []struct {
		x, y int
		text string
		face font.Face
		ink  color.Gray
	}{
		{30, 200, "Now: " + reading.Report, f.Report, inkBlack},
		{30, 240, "Precip: " + formatPercent(reading.PrecipPercent), f.Precip, inkBlack},
		{375, 35, formatTemp(reading.TempCurrent, r.units), f.Hero, inkBlack},
		{350, 210, "Feels like: " + formatTemp(reading.FeelsLike, r.units), f.Large, inkBlack},
		{35, 325, "High: " + formatTemp(reading.TempMax, r.units), f.Large, inkBlack},
		{35, 390, "Low: " + formatTemp(reading.TempMin, r.units), f.Large, inkBlack},
		{345, 340, "Humidity: " + formatHumidity(reading.Humidity), f.Precip, inkBlack},
		{345, 400, "Wind: " + formatWind(reading.Wind, r.units), f.Precip, inkBlack},
		// The bottom-right template region is black; these draw in white.
		{627, 330, "UPDATED", f.Caption, inkWhite},
		{627, 375, now.Format("15:04"), f.Clock, inkWhite},
	}
	for _, l := range labels {
		drawText(canvas, l.x, l.y, l.text, l.face, l.ink)
	}

	// Glyph rasterization antialiases edges; snap the canvas back to strict
	// black/white before it reaches the packer.
	snapTwoColor(canvas)

	appLog.Info("display image composed", "report", reading.Report)
	return canvas, nil
}

func snapTwoColor(img *image.Gray) {
	for i, p := range img.Pix {
		if p < 128 {
			img.Pix[i] = 0x00
		} else {
			img.Pix[i] = 0xFF
		}
	}
}

// background loads the template or falls back to a blank white canvas when
// the file is missing. A present-but-broken or wrong-sized template is a
// hard error.
func (r *Renderer) background() (*image.Gray, error) {
	f, err := os.Open(r.templatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Warn("template not found, using blank canvas", "path", r.templatePath)
			return blankCanvas(), nil
		}
		return nil, fmt.Errorf("render: open template: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("render: decode template: %w", err)
	}
	b := img.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		return nil, fmt.Errorf("render: template must be %dx%d, got %dx%d",
			Width, Height, b.Dx(), b.Dy())
	}
	return toTwoColor(img), nil
}

// drawIcon pastes the condition pictogram at the fixed origin. A missing
// asset is a soft failure: warn and keep rendering.
func (r *Renderer) drawIcon(canvas *image.Gray, iconCode string) {
	if iconCode == "" {
		appLog.Warn("empty icon code, skipping icon")
		return
	}
	path := filepath.Join(r.iconDir, iconCode+".png")

	f, err := os.Open(path)
	if err != nil {
		appLog.Warn("weather icon not found, skipping", "icon", iconCode, "path", path)
		return
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		appLog.Warn("weather icon unreadable, skipping", "icon", iconCode, "err", err)
		return
	}

	icon := toTwoColor(img)
	dst := image.Rectangle{Min: iconOrigin, Max: iconOrigin.Add(icon.Bounds().Size())}
	draw.Draw(canvas, dst, icon, icon.Bounds().Min, draw.Src)
}

// drawText places s with its glyph-box top-left at (x, y): the baseline sits
// one ascent below y.
func drawText(dst *image.Gray, x, y int, s string, face font.Face, ink color.Gray) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

func blankCanvas() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

// toTwoColor collapses an arbitrary decoded image to strict black/white by
// luma threshold.
func toTwoColor(src image.Image) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			v := uint8(0xFF)
			if c.Y < 128 {
				v = 0x00
			}
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: v})
		}
	}
	return out
}
