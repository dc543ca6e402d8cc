package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/kpauljoseph/notesflash/internal/layout"
	"github.com/kpauljoseph/notesflash/pkg/logger"
	"github.com/kpauljoseph/notesflash/pkg/models"
	"github.com/kpauljoseph/notesflash/pkg/utils"
	"github.com/kpauljoseph/notesflash/pkg/version"
)

const (
	ptToMM      = 25.4 / 72
	cellInsetPt = 6.0
	leadingRate = 1.2
	fontFamily  = "Helvetica"
	ellipsis    = "..."
)

// ErrSinkUnavailable means the rendered document could not be written out.
var ErrSinkUnavailable = errors.New("output sink unavailable")

var A4 = models.PageSize{Width: utils.A4WidthMM, Height: utils.A4HeightMM}

// Options are the caller-facing layout knobs. Lengths are millimetres, font
// sizes are points.
type Options struct {
	Cols             int
	Rows             int
	MarginMM         float64
	GutterMM         float64
	DrawBorders      bool
	QuestionFontSize float64
	AnswerFontSize   float64
}

func DefaultOptions() Options {
	return Options{
		Cols:             2,
		Rows:             4,
		MarginMM:         12,
		GutterMM:         6,
		DrawBorders:      true,
		QuestionFontSize: 12,
		AnswerFontSize:   12,
	}
}

func (o Options) Grid() layout.Grid {
	return layout.Grid{Cols: o.Cols, Rows: o.Rows, Margin: o.MarginMM, Gutter: o.GutterMM}
}

// Exporter renders cards as an A4 duplex PDF: for every sheet a question page
// followed by an answer page with horizontally mirrored slots.
type Exporter struct {
	opts   Options
	logger *logger.Logger
}

func NewExporter(opts Options, log *logger.Logger) (*Exporter, error) {
	if err := opts.Grid().Validate(A4); err != nil {
		return nil, err
	}
	if opts.QuestionFontSize <= 0 || opts.AnswerFontSize <= 0 {
		return nil, fmt.Errorf("%w: font sizes must be positive", layout.ErrInvalidGrid)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Exporter{opts: opts, logger: log}, nil
}

func (e *Exporter) Options() Options {
	return e.opts
}

// Export renders the whole document in memory before touching w, so a failed
// render never leaves a partial document behind.
func (e *Exporter) Export(w io.Writer, cards []models.Flashcard) error {
	data, err := e.Render(cards)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	return nil
}

// ExportFile writes next to path and renames into place once the document is
// complete. The temporary file is removed on every failure path.
func (e *Exporter) ExportFile(path string, cards []models.Flashcard) (err error) {
	data, err := e.Render(cards)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".notesflash-*.pdf")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	closed := false
	defer func() {
		if !closed {
			tmp.Close()
		}
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}

	e.logger.Info("Exported %d flashcards to %s", len(cards), path)
	return nil
}

// Render produces the PDF bytes.
func (e *Exporter) Render(cards []models.Flashcard) ([]byte, error) {
	sheets, err := layout.Paginate(cards, e.opts.Grid(), A4)
	if err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreator(version.GetVersionInfo(), true)
	doc.SetTitle("Flashcards", true)
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetLineWidth(0.2)
	translate := doc.UnicodeTranslatorFromDescriptor("")

	if len(sheets) == 0 {
		// Still a valid document.
		doc.AddPage()
	}

	for _, sheet := range sheets {
		e.logger.Debug("Rendering sheet %d with %d cards", sheet.Number, len(sheet.Cards))

		doc.AddPage()
		for i, card := range sheet.Cards {
			e.drawCard(doc, translate, sheet.Front[i], card.Question, e.opts.QuestionFontSize)
		}

		doc.AddPage()
		for i, card := range sheet.Cards {
			e.drawCard(doc, translate, sheet.Back[i], card.Answer, e.opts.AnswerFontSize)
		}
	}

	if doc.Err() {
		return nil, fmt.Errorf("failed to render flashcards: %w", doc.Error())
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render flashcards: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) drawCard(doc *fpdf.Fpdf, translate func(string) string, slot models.Slot, text string, fontSize float64) {
	// fpdf measures from the top-left corner.
	top := A4.Height - slot.Y - slot.Height

	if e.opts.DrawBorders {
		doc.Rect(slot.X, top, slot.Width, slot.Height, "D")
	}

	inset := cellInsetPt * ptToMM
	innerW := slot.Width - 2*inset
	innerH := slot.Height - 2*inset
	lineH := fontSize * leadingRate * ptToMM
	if innerW <= 0 || innerH < lineH {
		e.logger.Debug("Slot %d on %s page too small for text, skipping", slot.Index, slot.Side)
		return
	}

	if n := unencodable(text); n > 0 {
		e.logger.Debug("Slot %d on %s page has %d characters outside cp1252, the core font prints them as dots", slot.Index, slot.Side, n)
	}

	doc.SetFont(fontFamily, "", fontSize)
	lines := wrapText(doc, translate(text), innerW)

	maxLines := int(innerH / lineH)
	if len(lines) > maxLines {
		e.logger.Debug("Text overflows slot %d on %s page, clipping %d lines", slot.Index, slot.Side, len(lines)-maxLines)
		lines = lines[:maxLines]
		lines[maxLines-1] = fitWithEllipsis(doc, lines[maxLines-1], innerW)
	}

	for i, line := range lines {
		doc.SetXY(slot.X+inset, top+inset+float64(i)*lineH)
		doc.CellFormat(innerW, lineH, line, "", 0, "L", false, 0, "")
	}
}

// wrapText greedily fills lines no wider than width. Text must already be in
// the single-byte core font encoding. Words wider than a line are broken.
// unencodable counts the runes the core fonts cannot show.
func unencodable(text string) int {
	n := 0
	for _, r := range text {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			n++
		}
	}
	return n
}

func wrapText(doc *fpdf.Fpdf, text string, width float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var line string
		for _, word := range strings.Fields(paragraph) {
			for doc.GetStringWidth(word) > width {
				cut := fitPrefix(doc, word, width)
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			if word == "" {
				continue
			}
			switch {
			case line == "":
				line = word
			case doc.GetStringWidth(line+" "+word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// fitPrefix returns how many leading bytes of s fit in width, at least one.
func fitPrefix(doc *fpdf.Fpdf, s string, width float64) int {
	n := 1
	for n < len(s) && doc.GetStringWidth(s[:n+1]) <= width {
		n++
	}
	return n
}

func fitWithEllipsis(doc *fpdf.Fpdf, line string, width float64) string {
	for line != "" && doc.GetStringWidth(line+ellipsis) > width {
		line = line[:len(line)-1]
	}
	return strings.TrimRight(line, " ") + ellipsis
}
