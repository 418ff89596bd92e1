package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// The layout uses six fixed point sizes, one per label group.
const (
	sizeReport  = 22
	sizePrecip  = 30
	sizeCaption = 35
	sizeLarge   = 50
	sizeClock   = 60
	sizeHero    = 160
)

// FaceSet holds the rasterized faces for every label size on the panel.
type FaceSet struct {
	Report  font.Face // condition text
	Precip  font.Face // precip / humidity / wind rows
	Caption font.Face // "UPDATED" caption
	Large   font.Face // feels-like / high / low
	Clock   font.Face // wall-clock time
	Hero    font.Face // current temperature
}

// LoadFaces reads a TrueType/OpenType file (or collection) and rasterizes
// all panel faces at 72 DPI.
func LoadFaces(path string) (*FaceSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: read font: %w", err)
	}
	fs, err := ParseFaces(data)
	if err != nil {
		return nil, fmt.Errorf("render: parse font %s: %w", path, err)
	}
	return fs, nil
}

// ParseFaces rasterizes the panel faces from raw font bytes. Collections
// (.ttc) contribute their first font.
func ParseFaces(data []byte) (*FaceSet, error) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	f, err := coll.Font(0)
	if err != nil {
		return nil, err
	}

	newFace := func(points float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    points,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	var fs FaceSet
	for _, p := range []struct {
		dst  *font.Face
		size float64
	}{
		{&fs.Report, sizeReport},
		{&fs.Precip, sizePrecip},
		{&fs.Caption, sizeCaption},
		{&fs.Large, sizeLarge},
		{&fs.Clock, sizeClock},
		{&fs.Hero, sizeHero},
	} {
		face, err := newFace(p.size)
		if err != nil {
			return nil, err
		}
		*p.dst = face
	}
	return &fs, nil
}
