package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kpauljoseph/notesflash/internal/pdf"
)

func main() {
	pdfPath := flag.String("file", "", "Path to an exported flashcard PDF")
	flag.Parse()

	if *pdfPath == "" {
		fmt.Println("Please provide a PDF file path using -file flag")
		os.Exit(1)
	}

	fmt.Printf("Analyzing PDF: %s\n", *pdfPath)

	report, err := pdf.InspectFile(*pdfPath)
	if err != nil {
		fmt.Printf("Error getting page dimensions: %v\n", err)
		os.Exit(1)
	}

	for i, dim := range report.Dims {
		face := "questions"
		if i%2 == 1 {
			face = "answers"
		}
		fmt.Printf("\nPage %d (%s):\n", i+1, face)
		fmt.Printf("Dimensions (Width x Height): %.3f x %.3f points, A4: %v\n",
			dim.Width, dim.Height, pdf.MatchesA4(dim.Width, dim.Height))
	}

	fmt.Printf("\nPages: %d, duplex sheets: %d, all A4: %v\n", report.Pages, report.Sheets, report.AllA4)
	if report.Pages%2 != 0 {
		fmt.Println("Warning: odd page count, the document will not print as duplex sheets")
		os.Exit(2)
	}
}
