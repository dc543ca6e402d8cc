package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kpauljoseph/notesflash/internal/config"
	"github.com/kpauljoseph/notesflash/internal/nlp"
	"github.com/kpauljoseph/notesflash/internal/notes"
	"github.com/kpauljoseph/notesflash/internal/pdf"
	"github.com/kpauljoseph/notesflash/internal/server"
	"github.com/kpauljoseph/notesflash/pkg/logger"
	"github.com/kpauljoseph/notesflash/pkg/version"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	addr := flag.String("addr", "", "listen address (overrides config and NOTESFLASH_ADDR)")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	debug := flag.Bool("debug", false, "enable debug mode with trace logging")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Print(version.GetDetailedVersionInfo())
		return
	}

	log := logger.New(logger.WithPrefix("[notesflash-api] "))
	log.SetVerbose(*verbose)
	if *debug {
		log.SetLevel(logger.LevelTrace)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal("Error loading config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	var lang *nlp.Language
	if cfg.StopwordsPath != "" {
		lang, err = nlp.EnglishWithStopwords(cfg.StopwordsPath)
	} else {
		lang, err = nlp.English()
	}
	if err != nil {
		log.Fatal("Error loading language resources: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loader := notes.NewLoader(pdf.NewExtractor(log), log)
	srv := server.New(cfg.Server.Addr, lang, loader, log)
	if err := srv.Start(ctx); err != nil {
		log.Fatal("Server stopped: %v", err)
	}
}
