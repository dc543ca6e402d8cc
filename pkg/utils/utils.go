package utils

import (
	"os"
	"path/filepath"
)

const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0

	DefaultExportName = "flashcards_duplex_A4.pdf"
)

func GetDefaultOutputPath() string {
	tmpDir, err := os.MkdirTemp("", "notesflash-output-*")
	if err != nil {
		// If we can't create a temp directory, fall back to local directory
		return DefaultExportName
	}
	return filepath.Join(tmpDir, DefaultExportName)
}
