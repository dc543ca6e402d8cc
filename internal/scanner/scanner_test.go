package scanner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/notesflash/internal/notes"
	"github.com/kpauljoseph/notesflash/internal/scanner"
	"github.com/kpauljoseph/notesflash/pkg/logger"
)

var _ = Describe("Scanner", func() {
	var (
		testDir    string
		testLogger *logger.Logger
		ctx        context.Context
	)

	BeforeEach(func() {
		var err error
		testDir, err = os.MkdirTemp("", "scanner-test-*")
		Expect(err).NotTo(HaveOccurred())

		testLogger = logger.New(
			logger.WithOutput(GinkgoWriter),
			logger.WithPrefix("[test] "),
			logger.WithLevel(logger.LevelTrace),
		)
		ctx = context.Background()
	})

	AfterEach(func() {
		os.RemoveAll(testDir)
	})

	Context("when scanning an empty directory", func() {
		It("should return an error", func() {
			s := scanner.New(testLogger)
			_, err := s.FindNotes(ctx, testDir)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no note files found"))
		})
	})

	Context("when scanning a directory with mixed files", func() {
		BeforeEach(func() {
			for i := 1; i <= 3; i++ {
				err := os.WriteFile(
					filepath.Join(testDir, fmt.Sprintf("lecture%d.pdf", i)),
					[]byte("dummy pdf content"),
					0644,
				)
				Expect(err).NotTo(HaveOccurred())
			}

			for _, name := range []string{"summary.md", "reading.txt", "slides.pptx", "photo.png"} {
				err := os.WriteFile(filepath.Join(testDir, name), []byte("content"), 0644)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("should find only supported notes", func() {
			s := scanner.New(testLogger)
			found, err := s.FindNotes(ctx, testDir)

			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(5))

			var names []string
			for _, f := range found {
				names = append(names, f.RelativePath)
				Expect(filepath.IsAbs(f.AbsolutePath)).To(BeTrue())
			}
			Expect(names).To(Equal([]string{
				"lecture1.pdf", "lecture2.pdf", "lecture3.pdf", "reading.txt", "summary.md",
			}))
		})

		It("should record the detected format", func() {
			s := scanner.New(testLogger)
			found, err := s.FindNotes(ctx, testDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(found[0].Format).To(Equal(notes.FormatPDF))
			Expect(found[4].Format).To(Equal(notes.FormatMarkdown))
		})
	})

	Context("when scanning nested directories", func() {
		BeforeEach(func() {
			nestedDir := filepath.Join(testDir, "nested")
			err := os.MkdirAll(nestedDir, 0755)
			Expect(err).NotTo(HaveOccurred())

			files := []string{
				filepath.Join(testDir, "root.pdf"),
				filepath.Join(nestedDir, "nested.html"),
			}

			for _, file := range files {
				err := os.WriteFile(file, []byte("dummy content"), 0644)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("should find notes in all subdirectories", func() {
			s := scanner.New(testLogger)
			found, err := s.FindNotes(ctx, testDir)

			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(2))

			var filenames []string
			for _, f := range found {
				filenames = append(filenames, filepath.Base(f.AbsolutePath))
			}
			Expect(filenames).To(ConsistOf("root.pdf", "nested.html"))
			Expect(found[0].RelativePath).To(Equal(filepath.Join("nested", "nested.html")))
		})
	})

	Context("when context is cancelled", func() {
		It("should stop scanning", func() {
			deepDir := filepath.Join(testDir, "deep", "deeper", "deepest")
			err := os.MkdirAll(deepDir, 0755)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			s := scanner.New(testLogger)
			_, err = s.FindNotes(ctx, testDir)

			Expect(err).To(Equal(context.Canceled))
		})
	})
})
