package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/kpauljoseph/notesflash/internal/config"
	"github.com/kpauljoseph/notesflash/internal/layout"
	"github.com/kpauljoseph/notesflash/internal/nlp"
	"github.com/kpauljoseph/notesflash/internal/notes"
	"github.com/kpauljoseph/notesflash/internal/pdf"
	"github.com/kpauljoseph/notesflash/pkg/models"
	"github.com/kpauljoseph/notesflash/pkg/utils"
	"github.com/kpauljoseph/notesflash/pkg/version"
)

type summaryRequest struct {
	Text             string `json:"text"`
	SummarySentences int    `json:"summary_sentences"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type flashcardsRequest struct {
	Text     string `json:"text"`
	NumCards int    `json:"num_cards"`
}

type cardJSON struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Hash     string `json:"hash,omitempty"`
}

type flashcardsResponse struct {
	Flashcards []cardJSON `json:"flashcards"`
}

type exportRequest struct {
	Flashcards []models.Flashcard  `json:"flashcards"`
	Layout     config.LayoutConfig `json:"layout"`
}

type extractResponse struct {
	Name       string `json:"name,omitempty"`
	Text       string `json:"text"`
	Preview    string `json:"preview"`
	Characters int    `json:"characters"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Current())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SummarySentences == 0 {
		req.SummarySentences = config.DefaultSummarySentences
	}
	gen := config.GenerationConfig{SummarySentences: req.SummarySentences, Cards: config.DefaultCards}
	if err := gen.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	summary := s.summarizer.Summarize(req.Text, req.SummarySentences)
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	var req flashcardsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.NumCards == 0 {
		req.NumCards = config.DefaultCards
	}
	gen := config.GenerationConfig{SummarySentences: config.DefaultSummarySentences, Cards: req.NumCards}
	if err := gen.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cards := s.generator.Generate(req.Text, req.NumCards)
	resp := flashcardsResponse{Flashcards: make([]cardJSON, 0, len(cards))}
	for _, c := range cards {
		resp.Flashcards = append(resp.Flashcards, cardJSON{
			Question: c.Question,
			Answer:   c.Answer,
			Hash:     utils.CardHash(c.Question, c.Answer),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Flashcards) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("no flashcards to export"))
		return
	}

	req.Layout.ApplyDefaults()
	if err := req.Layout.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	exporter, err := pdf.NewExporter(req.Layout.Options(), s.logger)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(&buf, req.Flashcards); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", utils.DefaultExportName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("failed to stream export: %v", err)
	}
}

// handleExtract accepts a multipart "file" upload or, failing that, a "text"
// form field. An upload with no extractable text also falls back to the field.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse upload: %w", err))
		return
	}

	resp := extractResponse{}
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
			return
		}
		text, err := s.loader.Load(r.Context(), header.Filename, data)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		resp.Name = header.Filename
		resp.Text = text
		if text == "" {
			s.logger.Debug("Upload %s yielded no text, using the text field", header.Filename)
			resp.Text = nlp.Sanitize(r.FormValue("text"))
		}
	case errors.Is(err, http.ErrMissingFile):
		resp.Text = nlp.Sanitize(r.FormValue("text"))
	default:
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp.Preview = notes.Preview(resp.Text, PreviewLimit)
	resp.Characters = utf8.RuneCountInString(resp.Text)
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Errorf("expected application/json, got %s", ct))
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, layout.ErrInvalidGrid),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, notes.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
