package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kpauljoseph/notesflash/internal/anki"
	"github.com/kpauljoseph/notesflash/internal/config"
	"github.com/kpauljoseph/notesflash/internal/flashcards"
	"github.com/kpauljoseph/notesflash/internal/nlp"
	"github.com/kpauljoseph/notesflash/internal/notes"
	"github.com/kpauljoseph/notesflash/internal/pdf"
	"github.com/kpauljoseph/notesflash/internal/scanner"
	"github.com/kpauljoseph/notesflash/pkg/logger"
	"github.com/kpauljoseph/notesflash/pkg/utils"
	"github.com/kpauljoseph/notesflash/pkg/version"
)

type runReport struct {
	mu        sync.Mutex
	start     time.Time
	files     int
	failed    int
	cards     int
	exported  []string
	ankiAdded int
	ankiSkips int
}

func (r *runReport) record(fn func(r *runReport)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

func (r *runReport) print(log *logger.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Info("Processing complete:")
	log.Info("- Note files processed: %d (%d failed)", r.files, r.failed)
	log.Info("- Flashcards generated: %d", r.cards)
	for _, path := range r.exported {
		log.Info("- Exported: %s", path)
	}
	if r.ankiAdded > 0 || r.ankiSkips > 0 {
		log.Info("- Anki: %d added, %d duplicates skipped", r.ankiAdded, r.ankiSkips)
	}
	log.Info("- Took %s", time.Since(r.start).Round(time.Millisecond))
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	input := flag.String("input", "", "notes file or directory (overrides config notes_dir)")
	output := flag.String("output", "", "output PDF path, or directory in batch mode")
	numCards := flag.Int("cards", 0, "number of flashcards per notes file (4-64)")
	summary := flag.Bool("summary", false, "print a summary of each notes file")
	pushAnki := flag.Bool("anki", false, "push generated cards to Anki through AnkiConnect")
	rootDeckName := flag.String("root-deck", "", "root deck name for batch mode (defaults to the configured deck)")
	workers := flag.Int("workers", 4, "notes files processed in parallel in batch mode")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	debug := flag.Bool("debug", false, "enable debug mode with trace logging")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Print(version.GetDetailedVersionInfo())
		return
	}

	log := logger.New(logger.WithPrefix("[notesflash] "))
	log.SetVerbose(*verbose)
	if *debug {
		log.SetLevel(logger.LevelTrace)
	}
	log.Debug("%s", version.GetVersionInfo())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal("Error loading config: %v", err)
	}
	if *numCards != 0 {
		cfg.Generation.Cards = *numCards
	}
	if *input != "" {
		cfg.NotesDir = *input
	}
	if *pushAnki {
		cfg.Anki.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid settings: %v", err)
	}

	lang, err := loadLanguage(cfg)
	if err != nil {
		log.Fatal("Error loading language resources: %v", err)
	}

	exporter, err := pdf.NewExporter(cfg.Layout.Options(), log)
	if err != nil {
		log.Fatal("Error initializing exporter: %v", err)
	}

	info, err := os.Stat(cfg.NotesDir)
	if err != nil {
		log.Fatal("Notes path does not exist: %s", cfg.NotesDir)
	}

	var ankiService *anki.Service
	if cfg.Anki.Enabled {
		ankiService = anki.NewService(cfg.Anki.URL, log)
		log.Debug("Checking Anki connection...")
		if err := ankiService.CheckConnection(); err != nil {
			log.Fatal("Anki connection error: %v", err)
		}
		log.Info("Successfully connected to Anki")
	}

	app := &app{
		cfg:        cfg,
		loader:     notes.NewLoader(pdf.NewExtractor(log), log),
		generator:  flashcards.NewGenerator(lang, log),
		summarizer: nlp.NewSummarizer(lang),
		exporter:   exporter,
		anki:       ankiService,
		summary:    *summary,
		log:        log,
		report:     &runReport{start: time.Now()},
	}

	if !info.IsDir() {
		out := *output
		if out == "" {
			out = utils.GetDefaultOutputPath()
		}
		deck := cfg.Anki.DeckName
		if err := app.process(ctx, cfg.NotesDir, out, deck); err != nil {
			log.Fatal("Error processing %s: %v", cfg.NotesDir, err)
		}
		app.report.print(log)
		return
	}

	outDir := *output
	if outDir == "" {
		outDir = "flashcards"
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatal("Error creating output directory: %v", err)
	}
	root := *rootDeckName
	if root == "" {
		root = cfg.Anki.DeckName
	}

	log.Info("Scanning directory: %s", cfg.NotesDir)
	found, err := scanner.New(log).FindNotes(ctx, cfg.NotesDir)
	if err != nil {
		log.Fatal("Error finding notes: %v", err)
	}
	log.Info("Found %d note files to process", len(found))

	g := new(errgroup.Group)
	g.SetLimit(max(*workers, 1))
	for _, note := range found {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out := filepath.Join(outDir, strings.TrimSuffix(note.RelativePath, filepath.Ext(note.RelativePath))+".pdf")
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				log.Warn("Error creating %s: %v", filepath.Dir(out), err)
				app.report.record(func(r *runReport) { r.failed++ })
				return nil
			}
			deck := anki.GetDeckNameFromPath(root, note.RelativePath)
			if err := app.process(ctx, note.AbsolutePath, out, deck); err != nil {
				log.Warn("Error processing %s: %v", note.RelativePath, err)
			}
			return nil
		})
	}
	g.Wait()
	if ctx.Err() != nil {
		log.Warn("Interrupted before all notes were processed")
	}

	app.report.print(log)
}

type app struct {
	cfg        *config.Config
	loader     *notes.Loader
	generator  *flashcards.Generator
	summarizer *nlp.Summarizer
	exporter   pdf.CardExporter
	anki       *anki.Service
	summary    bool
	log        *logger.Logger
	report     *runReport

	ankiMu  sync.Mutex
	printMu sync.Mutex
}

func (a *app) process(ctx context.Context, path, out, deck string) error {
	a.report.record(func(r *runReport) { r.files++ })

	text, err := a.loader.LoadFile(ctx, path)
	if err != nil {
		a.report.record(func(r *runReport) { r.failed++ })
		return err
	}
	if text == "" {
		a.log.Warn("No text found in %s", path)
		return nil
	}

	if a.summary {
		summary := a.summarizer.Summarize(text, a.cfg.Generation.SummarySentences)
		a.printMu.Lock()
		fmt.Printf("\nSummary of %s:\n%s\n", filepath.Base(path), summary)
		a.printMu.Unlock()
	}

	cards := a.generator.Generate(text, a.cfg.Generation.Cards)
	a.report.record(func(r *runReport) { r.cards += len(cards) })
	if len(cards) == 0 {
		a.log.Warn("No flashcards could be generated from %s", path)
		return nil
	}
	for i, q := range cards.Questions() {
		a.log.Debug("Card %d: %s", i+1, q)
	}

	if err := a.exporter.ExportFile(out, cards); err != nil {
		a.report.record(func(r *runReport) { r.failed++ })
		return err
	}
	a.report.record(func(r *runReport) { r.exported = append(r.exported, out) })

	if a.anki != nil {
		// AnkiConnect model creation is not idempotent under concurrent calls.
		a.ankiMu.Lock()
		pushed, err := a.anki.AddAllFlashcards(deck, cards)
		a.ankiMu.Unlock()
		a.report.record(func(r *runReport) {
			r.ankiAdded += pushed.Added
			r.ankiSkips += pushed.Skipped
		})
		if err != nil {
			return fmt.Errorf("failed to push to deck %s: %w", deck, err)
		}
	}
	return nil
}

func loadLanguage(cfg *config.Config) (*nlp.Language, error) {
	if cfg.StopwordsPath != "" {
		return nlp.EnglishWithStopwords(cfg.StopwordsPath)
	}
	return nlp.English()
}
