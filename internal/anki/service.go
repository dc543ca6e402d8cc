package anki

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kpauljoseph/notesflash/pkg/logger"
	"github.com/kpauljoseph/notesflash/pkg/models"
	"github.com/kpauljoseph/notesflash/pkg/utils"
)

const (
	DefaultAnkiConnectURL = "http://localhost:8765"
	NotesFlashModelName   = "NotesFlash"
	NotesFlashTag         = "notesflash"
	MaxRetries            = 3
	RetryDelay            = 500 * time.Millisecond
	RequestTimeout        = 10 * time.Second
)

type Service struct {
	ankiConnectURL string
	client         *http.Client
	retryDelay     time.Duration
	logger         *logger.Logger
}

type Option func(*Service)

func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) {
		s.retryDelay = d
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

type AnkiConnectRequest struct {
	Action  string      `json:"action"`
	Version int         `json:"version"`
	Params  interface{} `json:"params"`
}

type Note struct {
	DeckName  string                 `json:"deckName"`
	ModelName string                 `json:"modelName"`
	Fields    map[string]string      `json:"fields"`
	Options   map[string]interface{} `json:"options"`
	Tags      []string               `json:"tags"`
}

// PushReport counts what happened to each card of a push.
type PushReport struct {
	Added   int
	Skipped int
	Failed  int
}

func NewService(url string, log *logger.Logger, opts ...Option) *Service {
	if url == "" {
		url = DefaultAnkiConnectURL
	}
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		ankiConnectURL: url,
		client:         &http.Client{Timeout: RequestTimeout},
		retryDelay:     RetryDelay,
		logger:         log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ensureModelExists() error {
	request := AnkiConnectRequest{
		Action:  "modelNames",
		Version: AnkiConnectVersion,
		Params:  map[string]interface{}{},
	}

	result, err := s.sendRequest(request)
	if err != nil {
		return fmt.Errorf("failed to get models: %w", err)
	}

	var modelNames []string
	if err := json.Unmarshal(result, &modelNames); err != nil {
		return fmt.Errorf("failed to parse model names: %w", err)
	}

	for _, name := range modelNames {
		if name == NotesFlashModelName {
			s.logger.Debug("NotesFlash model already exists")
			return nil
		}
	}

	createRequest := AnkiConnectRequest{
		Action:  "createModel",
		Version: AnkiConnectVersion,
		Params: map[string]interface{}{
			"modelName":     NotesFlashModelName,
			"inOrderFields": []string{"Front", "Back", "Hash"},
			"css": `.card {
                font-family: arial;
                font-size: 20px;
                text-align: left;
                color: black;
                background-color: white;
            }
            .hash { display: none; }`,
			"cardTemplates": []map[string]interface{}{
				{
					"Name": "Cloze Card",
					"Front": `{{Front}}
                        <div class="hash">{{Hash}}</div>`,
					"Back": `{{FrontSide}}
                        <hr id="answer">
                        {{Back}}`,
				},
			},
		},
	}

	if _, err := s.sendRequest(createRequest); err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	s.logger.Info("Created NotesFlash model")
	return nil
}

func (s *Service) CheckConnection() error {
	request := AnkiConnectRequest{
		Action:  "version",
		Version: AnkiConnectVersion,
		Params:  map[string]interface{}{},
	}

	if _, err := s.sendRequest(request); err != nil {
		s.logger.Warn("Error sending request to Anki: %v", err)
		return fmt.Errorf("could not connect to Anki at %s. Please ensure:\n"+
			"1. Anki is running https://apps.ankiweb.net/#download\n"+
			"2. AnkiConnect add-on is installed (code: 2055492159) https://ankiweb.net/shared/info/2055492159\n"+
			"3. Anki has been restarted after installing AnkiConnect", s.ankiConnectURL)
	}

	return nil
}

func (s *Service) CreateDeck(deckName string) error {
	s.logger.Info("Creating deck: %s", deckName)
	request := AnkiConnectRequest{
		Action:  "createDeck",
		Version: AnkiConnectVersion,
		Params: map[string]string{
			"deck": deckName,
		},
	}

	_, err := s.sendRequest(request)
	return err
}

func (s *Service) findExistingNoteByHash(hash string) (int64, error) {
	request := AnkiConnectRequest{
		Action:  "findNotes",
		Version: AnkiConnectVersion,
		Params: map[string]interface{}{
			"query": fmt.Sprintf("Hash:%s", hash),
		},
	}

	result, err := s.sendRequest(request)
	if err != nil {
		return 0, fmt.Errorf("failed to search notes: %w", err)
	}

	var noteIds []int64
	if err := json.Unmarshal(result, &noteIds); err != nil {
		return 0, fmt.Errorf("failed to parse note IDs: %w", err)
	}

	if len(noteIds) > 0 {
		return noteIds[0], nil
	}
	return 0, nil
}

// addFlashcard reports whether a note was created. Cards whose hash is already
// stored are skipped without error.
func (s *Service) addFlashcard(deckName string, card models.Flashcard) (bool, error) {
	contentHash := utils.CardHash(card.Question, card.Answer)
	s.logger.Trace("Processing flashcard %s for deck %s", contentHash, deckName)

	existingNoteId, err := s.findExistingNoteByHash(contentHash)
	if err != nil {
		s.logger.Warn("failed to check for existing note: %v", err)
	} else if existingNoteId != 0 {
		s.logger.Debug("Skipping duplicate flashcard with hash: %s", contentHash)
		return false, nil
	}

	note := Note{
		DeckName:  deckName,
		ModelName: NotesFlashModelName,
		Fields: map[string]string{
			"Front": card.Question,
			"Back":  card.Answer,
			"Hash":  contentHash,
		},
		Options: map[string]interface{}{
			"allowDuplicate": false,
		},
		Tags: []string{NotesFlashTag, deckTag(deckName)},
	}

	request := AnkiConnectRequest{
		Action:  "addNote",
		Version: AnkiConnectVersion,
		Params: map[string]interface{}{
			"note": note,
		},
	}

	if _, err := s.sendRequest(request); err != nil {
		return false, fmt.Errorf("failed to add note: %w", err)
	}

	s.logger.Debug("Added flashcard with hash: %s", contentHash)
	return true, nil
}

// AddAllFlashcards creates the deck and pushes every card into it.
func (s *Service) AddAllFlashcards(deckName string, cards []models.Flashcard) (PushReport, error) {
	var report PushReport

	if err := s.ensureModelExists(); err != nil {
		return report, fmt.Errorf("failed to ensure model exists: %w", err)
	}
	if err := s.CreateDeck(deckName); err != nil {
		return report, fmt.Errorf("failed to create deck: %w", err)
	}

	for _, card := range cards {
		added, err := s.addFlashcard(deckName, card)
		switch {
		case err != nil:
			s.logger.Debug("Error adding flashcard: %v", err)
			report.Failed++
		case added:
			report.Added++
		default:
			report.Skipped++
		}
	}

	if report.Failed > 0 {
		return report, fmt.Errorf("failed to add %d out of %d flashcards", report.Failed, len(cards))
	}

	s.logger.Info("Added %d flashcards to %s (%d duplicates skipped)", report.Added, deckName, report.Skipped)
	return report, nil
}

func (s *Service) sendRequest(req AnkiConnectRequest) (json.RawMessage, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Debug("Retrying %s (attempt %d/%d)...", req.Action, attempt+1, MaxRetries)
			time.Sleep(s.retryDelay)
		}

		result, err := s.post(reqBody)
		if err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}

	return nil, fmt.Errorf("after %d attempts: %w", MaxRetries, lastErr)
}

func (s *Service) post(reqBody []byte) (json.RawMessage, error) {
	resp, err := s.client.Post(s.ankiConnectURL, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Error  *string         `json:"error"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("anki error: %s", *result.Error)
	}
	return result.Result, nil
}

func deckTag(deckName string) string {
	return strings.ReplaceAll(strings.TrimSpace(deckName), " ", "_")
}
