package nlp

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	textRankDamping   = 0.85
	textRankEpsilon   = 1e-4
	textRankMaxIter   = 100
	zeroDivPrevention = 1e-7
)

// Words start with a letter and may carry apostrophes or hyphens.
var summaryWord = regexp.MustCompile(`\p{L}[\p{L}'\-]*`)

// Summarizer picks the most central sentences of a document with TextRank.
type Summarizer struct {
	lang *Language
}

func NewSummarizer(lang *Language) *Summarizer {
	return &Summarizer{lang: lang}
}

// Summarize returns up to max sentences joined by single spaces. The chosen
// sentences are the top ranked ones, emitted in document order.
func (s *Summarizer) Summarize(text string, max int) string {
	if max <= 0 {
		return ""
	}
	sentences := s.lang.SplitSentences(Sanitize(text))
	if len(sentences) == 0 {
		return ""
	}

	ranks := s.Rank(sentences)

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ranks[order[a]] > ranks[order[b]]
	})
	if len(order) > max {
		order = order[:max]
	}
	sort.Ints(order)

	picked := make([]string, len(order))
	for i, idx := range order {
		picked[i] = sentences[idx]
	}
	return strings.Join(picked, " ")
}

// Rank scores each sentence by its stationary weight in the similarity graph.
func (s *Summarizer) Rank(sentences []string) []float64 {
	n := len(sentences)
	if n == 0 {
		return nil
	}

	words := make([][]string, n)
	for i, sent := range sentences {
		words[i] = s.sentenceWords(sent)
	}

	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := edgeWeight(words[i], words[j])
			weights[i][j] = w
			weights[j][i] = w
		}
	}

	teleport := (1 - textRankDamping) / float64(n)
	for i := 0; i < n; i++ {
		var rowSum float64
		for _, w := range weights[i] {
			rowSum += w
		}
		for j := range weights[i] {
			if rowSum == 0 {
				// Dangling sentence: spread its mass evenly.
				weights[i][j] = teleport + textRankDamping/float64(n)
				continue
			}
			weights[i][j] = teleport + textRankDamping*weights[i][j]/(rowSum+zeroDivPrevention)
		}
	}

	return powerIteration(weights)
}

func (s *Summarizer) sentenceWords(sentence string) []string {
	var out []string
	for _, w := range summaryWord.FindAllString(strings.ToLower(sentence), -1) {
		if s.lang.IsStopword(w) {
			continue
		}
		out = append(out, s.lang.Stem(w))
	}
	return out
}

func edgeWeight(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	counts := make(map[string]int, len(b))
	for _, w := range b {
		counts[w]++
	}
	var shared int
	for _, w := range a {
		shared += counts[w]
	}
	if shared == 0 {
		return 0
	}
	norm := math.Log(float64(len(a))) + math.Log(float64(len(b)))
	if math.Abs(norm) < 1e-8 {
		return float64(shared)
	}
	return float64(shared) / norm
}

// powerIteration runs p <- Mᵀp from a uniform start until the step is below epsilon.
func powerIteration(m [][]float64) []float64 {
	n := len(m)
	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}

	for iter := 0; iter < textRankMaxIter; iter++ {
		next := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				next[i] += m[j][i] * p[j]
			}
		}
		var delta float64
		for i := range next {
			d := next[i] - p[i]
			delta += d * d
		}
		p = next
		if math.Sqrt(delta) <= textRankEpsilon {
			break
		}
	}
	return p
}
