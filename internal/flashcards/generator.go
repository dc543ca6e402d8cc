// Package flashcards turns a sanitized document into a ranked set of cloze
// question/answer cards.
package flashcards

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kpauljoseph/notesflash/internal/nlp"
	"github.com/kpauljoseph/notesflash/pkg/logger"
	"github.com/kpauljoseph/notesflash/pkg/models"
)

const (
	MaxKeywords        = 80
	MinSentenceLength  = 40
	MaxSentenceLength  = 240
	LengthBonusDivisor = 80.0
	MaxLengthBonus     = 2.0
	OversampleFactor   = 3
)

// KeywordSource ranks keyword phrases best first.
type KeywordSource interface {
	Extract(text string, max int) []string
}

type Generator struct {
	lang     *nlp.Language
	keywords KeywordSource
	logger   *logger.Logger
}

type Option func(*Generator)

// WithKeywordSource replaces the default RAKE extractor.
func WithKeywordSource(src KeywordSource) Option {
	return func(g *Generator) {
		g.keywords = src
	}
}

func NewGenerator(lang *nlp.Language, log *logger.Logger, options ...Option) *Generator {
	if log == nil {
		log = logger.Discard()
	}
	g := &Generator{
		lang:     lang,
		keywords: nlp.NewKeywordExtractor(lang),
		logger:   log,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

type candidate struct {
	sentence string
	score    float64
}

// Generate returns at most numCards cards. Short documents yield fewer cards;
// an empty document yields none.
func (g *Generator) Generate(text string, numCards int) models.CardSet {
	text = nlp.Sanitize(text)
	if text == "" || numCards <= 0 {
		return models.CardSet{}
	}

	keywords := g.keywords.Extract(text, MaxKeywords)
	g.logger.Debug("Extracted %d keywords", len(keywords))

	candidates := g.scoreSentences(text, keywords)
	g.logger.Debug("Scored %d eligible sentences", len(candidates))

	// Equal scores fall back to reverse lexicographic order of the sentence.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].sentence > candidates[j].sentence
	})
	if pool := numCards * OversampleFactor; len(candidates) > pool {
		candidates = candidates[:pool]
	}

	patterns := compileKeywords(keywords)
	cards := make([]models.Flashcard, 0, len(candidates))
	for _, c := range candidates {
		cards = append(cards, buildCard(c.sentence, patterns))
	}

	set := Dedupe(cards)
	if dropped := len(cards) - len(set); dropped > 0 {
		g.logger.Debug("Dropped %d duplicate cards", dropped)
	}
	if len(set) > numCards {
		set = set[:numCards]
	}

	g.logger.Info("Generated %d flashcards (requested %d)", len(set), numCards)
	return set
}

func (g *Generator) scoreSentences(text string, keywords []string) []candidate {
	// Each distinct keyword counts once per sentence.
	seen := make(map[string]bool, len(keywords))
	var distinct []string
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		if !seen[lower] {
			seen[lower] = true
			distinct = append(distinct, lower)
		}
	}
	patterns := compileKeywords(distinct)

	var out []candidate
	for _, s := range g.lang.SplitSentences(text) {
		n := utf8.RuneCountInString(s)
		if n < MinSentenceLength || n > MaxSentenceLength {
			continue
		}
		out = append(out, candidate{sentence: s, score: sentenceScore(s, n, patterns)})
	}
	return out
}

func sentenceScore(sentence string, length int, patterns []keywordPattern) float64 {
	var hits int
	for _, p := range patterns {
		if p.matches(sentence) {
			hits++
		}
	}
	return float64(hits) + math.Min(float64(length)/LengthBonusDivisor, MaxLengthBonus)
}
