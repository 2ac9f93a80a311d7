package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/esimov/ascii-particles/config"
	"github.com/esimov/ascii-particles/terminal"
)

func main() {
	configPtr := flag.String("c", "scene.yaml", "scene file to load (skipped if missing)")
	levelPtr := flag.String("d", "", "log level: debug, info, warn, error")
	logPtr := flag.String("o", "", "log file; logging is discarded when empty")
	fpsPtr := flag.Int("fps", 0, "frames per second")
	workersPtr := flag.Int("w", 0, "goroutines used for the particle update pass")
	flag.Parse()

	path := *configPtr
	if !config.Exists(path) {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	if *levelPtr != "" {
		cfg.Log.Level = *levelPtr
	}
	if *logPtr != "" {
		cfg.Log.File = *logPtr
	}
	if *fpsPtr > 0 {
		cfg.FPS = *fpsPtr
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	term := terminal.New(cfg.FPS, logger)
	sc := newScene(cfg, logger)
	term.OnClick(sc.burst)

	if err := term.Run(ctx, sc.frame); err != nil {
		logger.Errorw("frame loop stopped", "err", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Infow("bye", "stats", sc.system.Stats())
}
