// Package server exposes generation and export over a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kpauljoseph/notesflash/internal/flashcards"
	"github.com/kpauljoseph/notesflash/internal/nlp"
	"github.com/kpauljoseph/notesflash/internal/notes"
	"github.com/kpauljoseph/notesflash/pkg/logger"
)

const (
	MaxUploadBytes  = 32 << 20
	MaxJSONBytes    = 4 << 20
	PreviewLimit    = 1500
	ShutdownTimeout = 10 * time.Second
)

type Server struct {
	addr       string
	generator  *flashcards.Generator
	summarizer *nlp.Summarizer
	loader     *notes.Loader
	router     *chi.Mux
	logger     *logger.Logger
}

// New wires the API. lang is shared read-only across requests.
func New(addr string, lang *nlp.Language, loader *notes.Loader, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{
		addr:       addr,
		generator:  flashcards.NewGenerator(lang, log),
		summarizer: nlp.NewSummarizer(lang),
		loader:     loader,
		logger:     log,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api", func(r chi.Router) {
		r.Post("/summary", s.handleSummary)
		r.Post("/flashcards", s.handleFlashcards)
		r.Post("/export", s.handleExport)
		r.Post("/extract", s.handleExtract)
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("NotesFlash API listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}
