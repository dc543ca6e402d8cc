package anki

import (
	"path/filepath"
	"strings"
)

const AnkiConnectVersion = 6

// GetDeckNameFromPath maps a notes file to a nested deck:
// "biology/cells.md" with prefix "Study" becomes "Study::biology::cells".
func GetDeckNameFromPath(rootPrefix string, relativePath string) string {
	dirPath := filepath.Dir(relativePath)
	if dirPath == "." {
		dirPath = ""
	}

	fileName := strings.TrimSuffix(filepath.Base(relativePath), filepath.Ext(relativePath))

	var parts []string
	if rootPrefix != "" {
		parts = append(parts, rootPrefix)
	}
	if dirPath != "" {
		parts = append(parts, strings.Split(dirPath, string(filepath.Separator))...)
	}
	parts = append(parts, fileName)

	return strings.Join(parts, "::")
}
