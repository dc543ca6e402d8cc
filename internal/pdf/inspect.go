package pdf

import (
	"fmt"
	"io"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	A4PtWidth  = 595.28
	A4PtHeight = 841.89

	DimensionTolerance = 1.0
)

// Report summarises an exported flashcard document.
type Report struct {
	Pages  int
	Sheets int
	Dims   []types.Dim
	AllA4  bool
}

func Inspect(rs io.ReadSeeker) (*Report, error) {
	dims, err := api.PageDims(rs, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	return newReport(dims), nil
}

func InspectFile(path string) (*Report, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	return newReport(dims), nil
}

func newReport(dims []types.Dim) *Report {
	r := &Report{Pages: len(dims), Sheets: len(dims) / 2, Dims: dims, AllA4: len(dims) > 0}
	for _, d := range dims {
		if !MatchesA4(d.Width, d.Height) {
			r.AllA4 = false
		}
	}
	return r
}

func MatchesA4(width, height float64) bool {
	return math.Abs(width-A4PtWidth) <= DimensionTolerance && math.Abs(height-A4PtHeight) <= DimensionTolerance
}
