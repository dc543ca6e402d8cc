// Package config loads NotesFlash settings from YAML, an optional .env file
// and NOTESFLASH_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kpauljoseph/notesflash/internal/anki"
	"github.com/kpauljoseph/notesflash/internal/pdf"
)

const (
	EnvAddr      = "NOTESFLASH_ADDR"
	EnvAnkiURL   = "NOTESFLASH_ANKI_URL"
	EnvDeck      = "NOTESFLASH_DECK"
	EnvStopwords = "NOTESFLASH_STOPWORDS"

	DefaultAddr     = ":8080"
	DefaultDeckName = "NotesFlash"
	DefaultNotesDir = "./notes"
)

// Accepted ranges for user-tunable values.
const (
	MinSummarySentences     = 3
	MaxSummarySentences     = 15
	DefaultSummarySentences = 7

	MinCards     = 4
	MaxCards     = 64
	DefaultCards = 24

	MinCols, MaxCols         = 1, 4
	MinRows, MaxRows         = 1, 6
	MinMarginMM, MaxMarginMM = 6.0, 30.0
	MinGutterMM, MaxGutterMM = 2.0, 20.0
	MinFontSize, MaxFontSize = 8.0, 20.0
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	NotesDir      string           `yaml:"notes_dir"`
	StopwordsPath string           `yaml:"stopwords_path"`
	Generation    GenerationConfig `yaml:"generation"`
	Layout        LayoutConfig     `yaml:"layout"`
	Anki          AnkiConfig       `yaml:"anki"`
	Server        ServerConfig     `yaml:"server"`
}

type GenerationConfig struct {
	SummarySentences int `yaml:"summary_sentences" json:"summary_sentences"`
	Cards            int `yaml:"cards" json:"num_cards"`
}

// LayoutConfig doubles as the layout part of HTTP export requests.
type LayoutConfig struct {
	Cols             int     `yaml:"cols" json:"cols"`
	Rows             int     `yaml:"rows" json:"rows"`
	MarginMM         float64 `yaml:"margin_mm" json:"margin_mm"`
	GutterMM         float64 `yaml:"gutter_mm" json:"gutter_mm"`
	DrawBorders      *bool   `yaml:"draw_borders" json:"draw_borders"`
	QuestionFontSize float64 `yaml:"question_font_size" json:"question_font_size"`
	AnswerFontSize   float64 `yaml:"answer_font_size" json:"answer_font_size"`
}

type AnkiConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	DeckName string `yaml:"deck_name"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault behaves like Load but treats a missing file as an empty one.
// A .env file in the working directory is read first when present.
func LoadOrDefault(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) || path == "" {
		cfg = &Config{}
		cfg.applyEnv()
		cfg.applyDefaults()
		return cfg, nil
	}
	return cfg, err
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvAnkiURL); v != "" {
		c.Anki.URL = v
	}
	if v := os.Getenv(EnvDeck); v != "" {
		c.Anki.DeckName = v
	}
	if v := os.Getenv(EnvStopwords); v != "" {
		c.StopwordsPath = v
	}
}

func (c *Config) applyDefaults() {
	if c.NotesDir == "" {
		c.NotesDir = DefaultNotesDir
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Anki.URL == "" {
		c.Anki.URL = anki.DefaultAnkiConnectURL
	}
	if c.Anki.DeckName == "" {
		c.Anki.DeckName = DefaultDeckName
	}
	c.Generation.ApplyDefaults()
	c.Layout.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	return c.Layout.Validate()
}

// ApplyDefaults fills zero values only.
func (g *GenerationConfig) ApplyDefaults() {
	if g.SummarySentences == 0 {
		g.SummarySentences = DefaultSummarySentences
	}
	if g.Cards == 0 {
		g.Cards = DefaultCards
	}
}

func (g GenerationConfig) Validate() error {
	if err := checkRange("summary_sentences", float64(g.SummarySentences), MinSummarySentences, MaxSummarySentences); err != nil {
		return err
	}
	return checkRange("num_cards", float64(g.Cards), MinCards, MaxCards)
}

// ApplyDefaults fills zero values only.
func (l *LayoutConfig) ApplyDefaults() {
	defaults := pdf.DefaultOptions()
	if l.Cols == 0 {
		l.Cols = defaults.Cols
	}
	if l.Rows == 0 {
		l.Rows = defaults.Rows
	}
	if l.MarginMM == 0 {
		l.MarginMM = defaults.MarginMM
	}
	if l.GutterMM == 0 {
		l.GutterMM = defaults.GutterMM
	}
	if l.DrawBorders == nil {
		borders := defaults.DrawBorders
		l.DrawBorders = &borders
	}
	if l.QuestionFontSize == 0 {
		l.QuestionFontSize = defaults.QuestionFontSize
	}
	if l.AnswerFontSize == 0 {
		l.AnswerFontSize = defaults.AnswerFontSize
	}
}

func (l LayoutConfig) Validate() error {
	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"cols", float64(l.Cols), MinCols, MaxCols},
		{"rows", float64(l.Rows), MinRows, MaxRows},
		{"margin_mm", l.MarginMM, MinMarginMM, MaxMarginMM},
		{"gutter_mm", l.GutterMM, MinGutterMM, MaxGutterMM},
		{"question_font_size", l.QuestionFontSize, MinFontSize, MaxFontSize},
		{"answer_font_size", l.AnswerFontSize, MinFontSize, MaxFontSize},
	}
	for _, c := range checks {
		if err := checkRange(c.name, c.value, c.min, c.max); err != nil {
			return err
		}
	}
	return nil
}

func (l LayoutConfig) Options() pdf.Options {
	opts := pdf.Options{
		Cols:             l.Cols,
		Rows:             l.Rows,
		MarginMM:         l.MarginMM,
		GutterMM:         l.GutterMM,
		DrawBorders:      true,
		QuestionFontSize: l.QuestionFontSize,
		AnswerFontSize:   l.AnswerFontSize,
	}
	if l.DrawBorders != nil {
		opts.DrawBorders = *l.DrawBorders
	}
	return opts
}

func checkRange(name string, value, min, max float64) error {
	if value < min || value > max {
		return fmt.Errorf("%w: %s must be between %g and %g, got %g", ErrInvalidConfig, name, min, max, value)
	}
	return nil
}
