package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// debug_pdf renders each sheet of an exported deck so the duplex alignment can
// be checked on screen. The answer page is flipped horizontally, which is how
// it appears when holding the printed sheet up to the light.
func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: debug_pdf flashcards.pdf output-dir")
		os.Exit(1)
	}

	pdfPath := os.Args[1]
	outDir := os.Args[2]

	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Printf("Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		fmt.Printf("Error opening PDF: %v\n", err)
		os.Exit(1)
	}
	defer doc.Close()

	fmt.Printf("\nBasic Properties:\n")
	fmt.Printf("Pages: %d\n", doc.NumPage())
	if doc.NumPage()%2 != 0 {
		fmt.Println("Warning: odd page count, last sheet has no answer page")
	}

	for pageNum := 0; pageNum+1 < doc.NumPage(); pageNum += 2 {
		sheet := pageNum/2 + 1
		fmt.Printf("\nSheet %d:\n", sheet)

		front, err := doc.Image(pageNum)
		if err != nil {
			fmt.Printf("Error rendering question page: %v\n", err)
			continue
		}
		back, err := doc.Image(pageNum + 1)
		if err != nil {
			fmt.Printf("Error rendering answer page: %v\n", err)
			continue
		}

		frontBounds, _ := doc.Bound(pageNum)
		backBounds, _ := doc.Bound(pageNum + 1)
		fmt.Printf("Question page: %d x %d\n", frontBounds.Dx(), frontBounds.Dy())
		fmt.Printf("Answer page:   %d x %d\n", backBounds.Dx(), backBounds.Dy())
		if frontBounds != backBounds {
			fmt.Println("Warning: faces differ in size and will not line up")
		}

		text, _ := doc.Text(pageNum)
		fmt.Printf("\nQuestion text:\n%s\n", text)

		frontPath := filepath.Join(outDir, fmt.Sprintf("sheet%d_front.png", sheet))
		backPath := filepath.Join(outDir, fmt.Sprintf("sheet%d_back_seen_through.png", sheet))
		if err := savePNG(frontPath, front); err != nil {
			fmt.Printf("Error saving %s: %v\n", frontPath, err)
			continue
		}
		if err := savePNG(backPath, flipHorizontal(back)); err != nil {
			fmt.Printf("Error saving %s: %v\n", backPath, err)
			continue
		}

		fmt.Printf("\nSaved page images to:\n")
		fmt.Printf("Front: %s\n", frontPath)
		fmt.Printf("Back:  %s\n", backPath)
	}
}

func flipHorizontal(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx()/2; x++ {
			left := dst.RGBAAt(x, y)
			right := dst.RGBAAt(b.Dx()-1-x, y)
			dst.SetRGBA(x, y, right)
			dst.SetRGBA(b.Dx()-1-x, y, left)
		}
	}
	return dst
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
