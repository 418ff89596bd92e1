package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"epdweather/internal/app"
	"epdweather/internal/config"
	appLog "epdweather/internal/log"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	renderOnly bool
	dump       bool
	dumpDir    string
	daemon     bool
	verbose    bool
}

func main() {
	flags := parseFlags()

	if flags.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	// .env is optional; a deployed unit usually carries the key in its
	// environment already.
	if err := godotenv.Load(); err == nil {
		appLog.Debug(".env loaded")
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// Mirror the log stream into the rotating file from here on.
	appLog.SetFile(conf.LogFile, conf.LogMaxSizeMB, conf.LogBackups)

	appLog.Info("epdweather starting",
		"location", conf.Location,
		"lat", conf.Latitude,
		"lon", conf.Longitude,
		"units", conf.Units,
		"render_only", flags.renderOnly,
		"daemon", flags.daemon,
	)

	apiKey, err := config.APIKey()
	if err != nil {
		appLog.Error("missing API credential", err)
		os.Exit(1)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	opts := app.Options{
		RenderOnly: flags.renderOnly,
		Dump:       flags.dump,
		DumpDir:    flags.dumpDir,
	}

	if flags.daemon {
		err = app.RunDaemon(ctx, conf, apiKey, opts)
	} else {
		err = app.Run(ctx, conf, apiKey, opts)
	}
	if err != nil {
		appLog.Error("run failed", err)
		os.Exit(1)
	}

	appLog.Info("epdweather finished")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/epdweather/config.yaml", "Path to config file")
	flag.BoolVar(&cfg.renderOnly, "render-only", false, "Render only; do not touch display hardware")
	flag.BoolVar(&cfg.dump, "dump", false, "Dump debug artifacts (preview.png, black.bin)")
	flag.StringVar(&cfg.dumpDir, "out", ".", "Directory for dumped artifacts")
	flag.BoolVar(&cfg.daemon, "daemon", false, "Keep running and refresh on the configured cron schedule")
	flag.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
