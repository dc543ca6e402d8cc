package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/kpauljoseph/notesflash/pkg/logger"
)

// Extractor reads the text layer of PDF notes with MuPDF.
type Extractor struct {
	logger *logger.Logger
}

func NewExtractor(log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Discard()
	}
	return &Extractor{logger: log}
}

func (e *Extractor) ExtractFile(ctx context.Context, pdfPath string) (string, error) {
	e.logger.Debug("Extracting text from PDF: %s", pdfPath)

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	return e.extract(ctx, doc, pdfPath)
}

func (e *Extractor) ExtractBytes(ctx context.Context, name string, data []byte) (string, error) {
	e.logger.Debug("Extracting text from uploaded PDF: %s (%d bytes)", name, len(data))

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	return e.extract(ctx, doc, name)
}

// extract joins page texts with newlines. Pages whose text layer cannot be
// read are skipped rather than failing the whole document.
func (e *Extractor) extract(ctx context.Context, doc *fitz.Document, name string) (string, error) {
	var pages []string

	//Page numbers are zero indexed in the fitz package.
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		text, err := doc.Text(pageNum)
		if err != nil {
			e.logger.Warn("couldn't extract text from page %d of %s: %v", pageNum+1, name, err)
			continue
		}
		pages = append(pages, text)
	}

	e.logger.Debug("Extracted %d of %d pages from %s", len(pages), doc.NumPage(), name)
	return strings.Join(pages, "\n"), nil
}
