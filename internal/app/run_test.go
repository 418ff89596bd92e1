package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"

	"epdweather/internal/config"
	"epdweather/internal/display"
)

const payload = `{
  "current": {
    "dt": 1700000000,
    "temp": 21.6,
    "feels_like": 19.3,
    "humidity": 62,
    "wind_speed": 3.42,
    "weather": [{"description": "light rain", "icon": "10d"}]
  },
  "daily": [{"temp": {"min": 12.4, "max": 23.9}, "pop": 0.17}]
}`

// recordingPanel satisfies display.Panel and counts every touch.
type recordingPanel struct {
	touched int
}

func (p *recordingPanel) Init() error { p.touched++; return nil }

func (p *recordingPanel) Clear() error { p.touched++; return nil }

func (p *recordingPanel) Display(black, red []byte) error { p.touched++; return nil }

func (p *recordingPanel) Sleep() error { p.touched++; return nil }

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	fontPath := filepath.Join(dir, "test.ttf")
	if err := os.WriteFile(fontPath, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.FetchTimeoutSeconds = 2
	cfg.Font = fontPath
	cfg.Template = filepath.Join(dir, "template.png")
	cfg.IconDir = dir
	return cfg
}

func TestRunFullPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, payload)
	}))
	defer srv.Close()

	panel := &recordingPanel{}
	opts := Options{
		NewPanel: func(context.Context) (display.Panel, error) { return panel, nil },
		Now:      func() time.Time { return time.Date(2026, 8, 30, 9, 5, 0, 0, time.UTC) },
	}

	if err := Run(context.Background(), testConfig(t, srv.URL), "key", opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if panel.touched != 4 {
		t.Errorf("panel touched %d times, want init/clear/display/sleep", panel.touched)
	}
}

func TestRunProviderFailureSkipsHardware(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	panel := &recordingPanel{}
	opts := Options{
		NewPanel: func(context.Context) (display.Panel, error) { return panel, nil },
	}

	if err := Run(context.Background(), testConfig(t, srv.URL), "key", opts); err == nil {
		t.Fatal("expected error")
	}
	if panel.touched != 0 {
		t.Errorf("hardware touched %d times after provider failure", panel.touched)
	}
}

func TestRunRenderOnlyWithDump(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, payload)
	}))
	defer srv.Close()

	dumpDir := t.TempDir()
	opts := Options{
		RenderOnly: true,
		Dump:       true,
		DumpDir:    dumpDir,
		NewPanel: func(context.Context) (display.Panel, error) {
			t.Fatal("panel opened in render-only mode")
			return nil, nil
		},
	}

	if err := Run(context.Background(), testConfig(t, srv.URL), "key", opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dumpDir, "preview.png")); err != nil {
		t.Errorf("preview.png: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dumpDir, "black.bin")); err != nil {
		t.Errorf("black.bin: %v", err)
	}
}

func TestRunDaemonRejectsBadSchedule(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	cfg.Refresh = "not a cron line"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := RunDaemon(ctx, cfg, "key", Options{RenderOnly: true}); err == nil {
		t.Fatal("expected schedule error")
	}
}
