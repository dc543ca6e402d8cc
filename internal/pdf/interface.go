package pdf

import (
	"context"
	"io"

	"github.com/kpauljoseph/notesflash/pkg/models"
)

// TextExtractor pulls plain text out of PDF notes.
type TextExtractor interface {
	ExtractFile(ctx context.Context, pdfPath string) (string, error)
	ExtractBytes(ctx context.Context, name string, data []byte) (string, error)
}

// CardExporter writes a duplex flashcard document.
type CardExporter interface {
	Export(w io.Writer, cards []models.Flashcard) error
	ExportFile(path string, cards []models.Flashcard) error
}

var (
	_ TextExtractor = (*Extractor)(nil)
	_ CardExporter  = (*Exporter)(nil)
)
