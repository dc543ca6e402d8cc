package models

import "strings"

// Flashcard is a single question/answer pair. Answer is always the original sentence.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// DedupKey identifies a card case-insensitively on both faces.
func (f Flashcard) DedupKey() [2]string {
	return [2]string{strings.ToLower(f.Question), strings.ToLower(f.Answer)}
}

// CardSet is an ordered, deduplicated list of flashcards.
type CardSet []Flashcard

func (s CardSet) Questions() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Question
	}
	return out
}

func (s CardSet) Answers() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Answer
	}
	return out
}
