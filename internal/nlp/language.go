// Package nlp holds the statistical text tooling behind card generation:
// language resources, text sanitizing, sentence splitting, RAKE keyword
// extraction and TextRank summarization.
//
// A Language is built once and passed to every component that needs it.
// It is immutable after construction and safe for concurrent use.
package nlp

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kljensen/snowball"
)

//go:embed stopwords/*.txt
var stopwordFS embed.FS

// Stemmer reduces a lowercase word to its stem.
type Stemmer interface {
	Stem(word string) string
}

// SentenceSplitter segments sanitized text into trimmed, non-empty sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

type Language struct {
	Name      string
	stopwords map[string]struct{}
	stemmer   Stemmer
	splitter  SentenceSplitter
}

func NewLanguage(name string, stopwords []string, stemmer Stemmer, splitter SentenceSplitter) *Language {
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return &Language{
		Name:      name,
		stopwords: set,
		stemmer:   stemmer,
		splitter:  splitter,
	}
}

// English builds the default resources: the embedded English stopword list,
// the Snowball English stemmer and the Punkt English sentence tokenizer.
func English() (*Language, error) {
	f, err := stopwordFS.Open("stopwords/english.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded stopwords: %w", err)
	}
	defer f.Close()

	words, err := readStopwords(f)
	if err != nil {
		return nil, err
	}
	return englishWith(words)
}

// EnglishWithStopwords keeps the English stemmer and splitter but swaps the
// stopword list for the one in path (one word per line, # comments allowed).
func EnglishWithStopwords(path string) (*Language, error) {
	words, err := LoadStopwords(path)
	if err != nil {
		return nil, err
	}
	return englishWith(words)
}

func englishWith(words []string) (*Language, error) {
	splitter, err := NewPunktSplitter()
	if err != nil {
		return nil, err
	}
	return NewLanguage("english", words, NewSnowballStemmer("english"), splitter), nil
}

func LoadStopwords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stopwords file: %w", err)
	}
	defer f.Close()
	return readStopwords(f)
}

func readStopwords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopwords: %w", err)
	}
	return words, nil
}

func (l *Language) IsStopword(word string) bool {
	_, ok := l.stopwords[word]
	return ok
}

func (l *Language) StopwordCount() int {
	return len(l.stopwords)
}

func (l *Language) Stem(word string) string {
	if l.stemmer == nil {
		return word
	}
	return l.stemmer.Stem(word)
}

func (l *Language) SplitSentences(text string) []string {
	if l.splitter == nil {
		return nil
	}
	return l.splitter.Split(text)
}

// SnowballStemmer adapts the snowball package to the Stemmer interface.
type SnowballStemmer struct {
	language string
}

func NewSnowballStemmer(language string) *SnowballStemmer {
	return &SnowballStemmer{language: language}
}

func (s *SnowballStemmer) Stem(word string) string {
	stemmed, err := snowball.Stem(word, s.language, true)
	if err != nil {
		return word
	}
	return stemmed
}
