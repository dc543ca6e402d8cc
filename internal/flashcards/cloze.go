package flashcards

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kpauljoseph/notesflash/pkg/models"
)

const (
	BlankMarker    = "____"
	FallbackPrefix = "What is the key idea in: "
)

// keywordPattern matches a keyword case-insensitively on word boundaries.
// Boundaries are checked by hand because RE2's \b only knows ASCII.
type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

func compileKeywords(keywords []string) []keywordPattern {
	patterns := make([]keywordPattern, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		patterns = append(patterns, keywordPattern{
			keyword: kw,
			re:      regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw)),
		})
	}
	return patterns
}

// find returns the byte ranges of every non-overlapping boundary match, leftmost first.
func (p keywordPattern) find(s string) [][2]int {
	var out [][2]int
	pos := 0
	for pos <= len(s) {
		loc := p.re.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if start != end && isBoundary(s, start) && isBoundary(s, end) {
			out = append(out, [2]int{start, end})
			pos = end
			continue
		}
		if start >= len(s) {
			break
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		pos = start + size
	}
	return out
}

func (p keywordPattern) matches(s string) bool {
	return len(p.find(s)) > 0
}

func (p keywordPattern) blank(s string) string {
	var sb strings.Builder
	last := 0
	for _, m := range p.find(s) {
		sb.WriteString(s[last:m[0]])
		sb.WriteString(BlankMarker)
		last = m[1]
	}
	sb.WriteString(s[last:])
	return sb.String()
}

func isBoundary(s string, i int) bool {
	var before, after bool
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Build turns a sentence into a cloze card. The first keyword in rank order
// that occurs in the sentence has every occurrence blanked; if none occurs
// the card asks for the key idea of the whole sentence.
func Build(sentence string, rankedKeywords []string) models.Flashcard {
	return buildCard(sentence, compileKeywords(rankedKeywords))
}

func buildCard(sentence string, patterns []keywordPattern) models.Flashcard {
	for _, p := range patterns {
		if p.matches(sentence) {
			return models.Flashcard{Question: p.blank(sentence), Answer: sentence}
		}
	}
	return models.Flashcard{Question: FallbackPrefix + sentence, Answer: sentence}
}

// Dedupe drops cards whose question and answer both repeat an earlier card,
// ignoring case.
func Dedupe(cards []models.Flashcard) models.CardSet {
	seen := make(map[[2]string]struct{}, len(cards))
	out := make(models.CardSet, 0, len(cards))
	for _, c := range cards {
		key := c.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
