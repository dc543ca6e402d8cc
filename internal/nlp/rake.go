package nlp

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Word runs and punctuation runs, in the manner of a word/punct tokenizer.
var wordPunctToken = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\p{L}\p{N}_\s]+`)

// KeywordExtractor ranks candidate phrases with RAKE: stopwords and punctuation
// delimit phrases, each word scores degree/frequency over the phrase
// co-occurrence graph, and a phrase scores the sum of its words.
type KeywordExtractor struct {
	lang *Language
}

func NewKeywordExtractor(lang *Language) *KeywordExtractor {
	return &KeywordExtractor{lang: lang}
}

type rankedPhrase struct {
	text  string
	score float64
}

// Extract returns at most max phrases, best first. Equal scores keep the order
// in which the phrases first appear in text.
func (k *KeywordExtractor) Extract(text string, max int) []string {
	if max <= 0 {
		return nil
	}

	phrases := k.candidatePhrases(text)
	if len(phrases) == 0 {
		return nil
	}

	degree := make(map[string]int)
	freq := make(map[string]int)
	for _, phrase := range phrases {
		for _, w := range phrase {
			degree[w] += len(phrase)
			freq[w]++
		}
	}

	seen := make(map[string]bool)
	var ranked []rankedPhrase
	for _, phrase := range phrases {
		joined := strings.Join(phrase, " ")
		if seen[joined] {
			continue
		}
		seen[joined] = true

		var score float64
		for _, w := range phrase {
			score += float64(degree[w]) / float64(freq[w])
		}
		ranked = append(ranked, rankedPhrase{text: joined, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.text
	}
	return out
}

func (k *KeywordExtractor) candidatePhrases(text string) [][]string {
	var phrases [][]string
	for _, sentence := range k.lang.SplitSentences(text) {
		var current []string
		flush := func() {
			if len(current) > 0 {
				phrases = append(phrases, current)
				current = nil
			}
		}
		for _, tok := range wordPunctToken.FindAllString(strings.ToLower(sentence), -1) {
			if isPunctuation(tok) || k.lang.IsStopword(tok) {
				flush()
				continue
			}
			current = append(current, tok)
		}
		flush()
	}
	return phrases
}

func isPunctuation(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return false
		}
	}
	return true
}
