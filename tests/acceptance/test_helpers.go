package acceptance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kpauljoseph/notesflash/pkg/models"
	"github.com/kpauljoseph/notesflash/pkg/utils"
)

// ExpectedCards pins the cards generated from one fixture so that ranking
// changes show up as test failures.
type ExpectedCards struct {
	Filename string   `json:"filename"`
	Hashes   []string `json:"hashes"`
}

// CardStore reads and, with UPDATE_TEST_DATA=true, rewrites the golden file.
type CardStore struct {
	path        string
	updateCards bool
	cards       map[string]ExpectedCards
}

func NewCardStore(testDataPath string) *CardStore {
	return &CardStore{
		path:        filepath.Join(testDataPath, "expected_cards.json"),
		updateCards: os.Getenv("UPDATE_TEST_DATA") == "true",
		cards:       make(map[string]ExpectedCards),
	}
}

func (s *CardStore) Load() error {
	if s.updateCards {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read golden cards: %w", err)
	}

	var list []ExpectedCards
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to parse golden cards: %w", err)
	}
	for _, c := range list {
		s.cards[c.Filename] = c
	}
	return nil
}

func (s *CardStore) Save() error {
	if !s.updateCards {
		return nil
	}

	list := make([]ExpectedCards, 0, len(s.cards))
	for _, c := range s.cards {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Filename < list[j].Filename
	})

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal golden cards: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden cards: %w", err)
	}
	return nil
}

func (s *CardStore) Record(filename string, cards []models.Flashcard) {
	if !s.updateCards {
		return
	}
	s.cards[filename] = ExpectedCards{Filename: filename, Hashes: Hashes(cards)}
}

func (s *CardStore) Get(filename string) (ExpectedCards, bool) {
	c, ok := s.cards[filename]
	return c, ok
}

func (s *CardStore) IsUpdateMode() bool {
	return s.updateCards
}

func Hashes(cards []models.Flashcard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = utils.CardHash(c.Question, c.Answer)
	}
	return out
}
