package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/kpauljoseph/notesflash/internal/notes"
	"github.com/kpauljoseph/notesflash/pkg/logger"
)

// NoteFile is a notes document found during a batch scan.
type NoteFile struct {
	AbsolutePath string
	RelativePath string
	Format       notes.Format
}

type DirectoryScanner struct {
	logger *logger.Logger
}

func New(log *logger.Logger) *DirectoryScanner {
	if log == nil {
		log = logger.Discard()
	}
	return &DirectoryScanner{logger: log}
}

// FindNotes walks dir and returns every file with a supported notes format,
// sorted by relative path.
func (s *DirectoryScanner) FindNotes(ctx context.Context, dir string) ([]NoteFile, error) {
	var found []NoteFile

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if d.IsDir() {
			s.logger.Debug("Scanning directory: %s", path)
			return nil
		}

		format, err := notes.Detect(path)
		if err != nil {
			s.logger.Trace("Skipping %s: %v", path, err)
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			relPath = path
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}

		found = append(found, NoteFile{
			AbsolutePath: absPath,
			RelativePath: relPath,
			Format:       format,
		})
		s.logger.Debug("Found notes (%d): %s", len(found), relPath)
		return nil
	})

	if err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("no note files found in %s or its subdirectories", dir)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].RelativePath < found[j].RelativePath
	})
	return found, nil
}
