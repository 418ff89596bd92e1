package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"epdweather/internal/convert"
	appLog "epdweather/internal/log"
)

// Dump writes debug artifacts for a composed image: preview.png (the canvas
// as-is) and black.bin (the packed plane exactly as it would hit the wire).
func Dump(img *image.Gray, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("display: dump dir: %w", err)
	}

	previewPath := filepath.Join(dir, "preview.png")
	f, err := os.Create(previewPath)
	if err != nil {
		return fmt.Errorf("display: create preview: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("display: encode preview: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	black, err := convert.PackGray(img)
	if err != nil {
		return err
	}
	planePath := filepath.Join(dir, "black.bin")
	if err := os.WriteFile(planePath, black, 0o644); err != nil {
		return fmt.Errorf("display: write plane: %w", err)
	}

	appLog.Info("debug artifacts written", "preview", previewPath, "plane", planePath)
	return nil
}
