// Package layout computes the card grid of a duplex sheet.
//
// Slots use a bottom-left page origin with Y growing upward. Front slots are
// row-major with row 0 at the top. The back page uses the same rows, each with
// its column order reversed, so that a long-edge flip lands every answer
// behind its question.
package layout

import (
	"errors"
	"fmt"

	"github.com/kpauljoseph/notesflash/pkg/models"
)

var ErrInvalidGrid = errors.New("invalid grid")

// Grid describes the card matrix. Margin and Gutter share the page's length unit.
type Grid struct {
	Cols   int
	Rows   int
	Margin float64
	Gutter float64
}

func (g Grid) PerSheet() int {
	return g.Cols * g.Rows
}

// CellSize returns the width and height of one card slot.
func (g Grid) CellSize(page models.PageSize) (float64, float64) {
	usableW := page.Width - 2*g.Margin
	usableH := page.Height - 2*g.Margin
	cellW := (usableW - float64(g.Cols-1)*g.Gutter) / float64(g.Cols)
	cellH := (usableH - float64(g.Rows-1)*g.Gutter) / float64(g.Rows)
	return cellW, cellH
}

func (g Grid) Validate(page models.PageSize) error {
	if g.Cols < 1 || g.Rows < 1 {
		return fmt.Errorf("%w: need at least one column and row, got %dx%d", ErrInvalidGrid, g.Cols, g.Rows)
	}
	if g.Margin < 0 || g.Gutter < 0 {
		return fmt.Errorf("%w: margin and gutter must not be negative", ErrInvalidGrid)
	}
	if page.Width <= 0 || page.Height <= 0 {
		return fmt.Errorf("%w: page size %.2fx%.2f", ErrInvalidGrid, page.Width, page.Height)
	}
	cellW, cellH := g.CellSize(page)
	if cellW <= 0 || cellH <= 0 {
		return fmt.Errorf("%w: %dx%d cells do not fit (cell %.2fx%.2f)", ErrInvalidGrid, g.Cols, g.Rows, cellW, cellH)
	}
	return nil
}

// FrontSlots lays out the question page.
func FrontSlots(g Grid, page models.PageSize) ([]models.Slot, error) {
	if err := g.Validate(page); err != nil {
		return nil, err
	}
	cellW, cellH := g.CellSize(page)

	slots := make([]models.Slot, 0, g.PerSheet())
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			slots = append(slots, models.Slot{
				Index:  r*g.Cols + c,
				Side:   models.Front,
				X:      g.Margin + float64(c)*(cellW+g.Gutter),
				Y:      page.Height - g.Margin - float64(r+1)*cellH - float64(r)*g.Gutter,
				Width:  cellW,
				Height: cellH,
			})
		}
	}
	return slots, nil
}

// MirrorForBack reverses each row's run of cols slots and keeps the row order.
// Slots keep their Index, so back[i].Index is the physical position that holds
// the answer to the card printed at front position i. A trailing partial row
// is reversed on its own. Applying it twice returns the input order.
func MirrorForBack(front []models.Slot, cols, rows int) []models.Slot {
	if cols < 1 {
		return append([]models.Slot(nil), front...)
	}
	mirrored := make([]models.Slot, 0, len(front))
	for r := 0; r < rows && r*cols < len(front); r++ {
		end := (r + 1) * cols
		if end > len(front) {
			end = len(front)
		}
		for i := end - 1; i >= r*cols; i-- {
			mirrored = append(mirrored, front[i])
		}
	}
	return mirrored
}

// BackSlots lays out the answer page in card order.
func BackSlots(g Grid, page models.PageSize) ([]models.Slot, error) {
	front, err := FrontSlots(g, page)
	if err != nil {
		return nil, err
	}
	back := MirrorForBack(front, g.Cols, g.Rows)
	for i := range back {
		back[i].Side = models.Back
	}
	return back, nil
}

// Paginate chunks cards into sheets. Card i of a sheet is printed in Front[i]
// and answered in Back[i]; a short last sheet leaves the same trailing
// positions empty on both faces.
func Paginate(cards []models.Flashcard, g Grid, page models.PageSize) ([]models.Sheet, error) {
	front, err := FrontSlots(g, page)
	if err != nil {
		return nil, err
	}
	back, err := BackSlots(g, page)
	if err != nil {
		return nil, err
	}

	perSheet := g.PerSheet()
	var sheets []models.Sheet
	for start := 0; start < len(cards); start += perSheet {
		end := start + perSheet
		if end > len(cards) {
			end = len(cards)
		}
		n := end - start
		sheets = append(sheets, models.Sheet{
			Number: len(sheets) + 1,
			Cards:  cards[start:end],
			Front:  front[:n],
			Back:   back[:n],
		})
	}
	return sheets, nil
}
