// Package notes turns uploaded or on-disk study notes into a sanitized Document.
package notes

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/kpauljoseph/notesflash/internal/nlp"
	"github.com/kpauljoseph/notesflash/internal/pdf"
	"github.com/kpauljoseph/notesflash/pkg/logger"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported notes format")

// Detect picks the format from the file extension.
func Detect(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

type Loader struct {
	pdf    pdf.TextExtractor
	policy *bluemonday.Policy
	logger *logger.Logger
}

func NewLoader(extractor pdf.TextExtractor, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	return &Loader{
		pdf:    extractor,
		policy: policy,
		logger: log,
	}
}

func (l *Loader) LoadFile(ctx context.Context, path string) (string, error) {
	format, err := Detect(path)
	if err != nil {
		return "", err
	}
	if format == FormatPDF {
		raw, err := l.pdf.ExtractFile(ctx, path)
		if err != nil {
			return "", err
		}
		return nlp.Sanitize(raw), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read notes: %w", err)
	}
	return l.decode(format, data), nil
}

// Load handles in-memory uploads; name only selects the format.
func (l *Loader) Load(ctx context.Context, name string, data []byte) (string, error) {
	format, err := Detect(name)
	if err != nil {
		return "", err
	}
	if format == FormatPDF {
		raw, err := l.pdf.ExtractBytes(ctx, name, data)
		if err != nil {
			return "", err
		}
		return nlp.Sanitize(raw), nil
	}
	return l.decode(format, data), nil
}

func (l *Loader) decode(format Format, data []byte) string {
	// Invalid UTF-8 is dropped, not fatal.
	text := strings.ToValidUTF8(string(data), "")
	if format == FormatHTML {
		text = html.UnescapeString(l.policy.Sanitize(text))
	}
	l.logger.Trace("Decoded %d bytes of %s notes", len(data), format)
	return nlp.Sanitize(text)
}

// Preview truncates a document for display.
func Preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
