package pdf_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/notesflash/internal/layout"
	"github.com/kpauljoseph/notesflash/internal/pdf"
	"github.com/kpauljoseph/notesflash/pkg/logger"
	"github.com/kpauljoseph/notesflash/pkg/models"
)

func pdfTestLogger() *logger.Logger {
	log := logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[pdf-test] "),
		logger.WithFlags(0),
	)
	log.SetVerbose(true)
	log.SetLevel(logger.LevelTrace)
	return log
}

func sampleCards(n int) []models.Flashcard {
	out := make([]models.Flashcard, n)
	for i := range out {
		out[i] = models.Flashcard{
			Question: fmt.Sprintf("Question number %d about ____ cells", i+1),
			Answer:   fmt.Sprintf("Answer number %d about plant cells", i+1),
		}
	}
	return out
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("stream closed") }

var _ = Describe("PDF Exporter", func() {
	var (
		exporter   *pdf.Exporter
		outputDir  string
		testLogger *logger.Logger
	)

	BeforeEach(func() {
		var err error
		outputDir, err = os.MkdirTemp("", "notesflash-export-*")
		Expect(err).NotTo(HaveOccurred())

		testLogger = pdfTestLogger()
		exporter, err = pdf.NewExporter(pdf.DefaultOptions(), testLogger)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(outputDir)
	})

	Context("page structure", func() {
		DescribeTable("writes a question and an answer page per sheet",
			func(cardCount, expectedPages int) {
				var buf bytes.Buffer
				Expect(exporter.Export(&buf, sampleCards(cardCount))).To(Succeed())

				report, err := pdf.Inspect(bytes.NewReader(buf.Bytes()))
				Expect(err).NotTo(HaveOccurred())
				Expect(report.Pages).To(Equal(expectedPages))
				Expect(report.AllA4).To(BeTrue())
			},
			Entry("one card", 1, 2),
			Entry("exactly one sheet", 8, 2),
			Entry("partial second sheet", 9, 4),
			Entry("three sheets", 24, 6),
		)

		It("should still produce a valid document without cards", func() {
			var buf bytes.Buffer
			Expect(exporter.Export(&buf, nil)).To(Succeed())
			Expect(buf.Bytes()).To(HavePrefix("%PDF-"))

			report, err := pdf.Inspect(bytes.NewReader(buf.Bytes()))
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Pages).To(Equal(1))
		})
	})

	Context("text placement", func() {
		It("should print questions on the front page and answers on the back page", func() {
			path := filepath.Join(outputDir, "cards.pdf")
			Expect(exporter.ExportFile(path, sampleCards(2))).To(Succeed())

			extractor := pdf.NewExtractor(testLogger)
			text, err := extractor.ExtractFile(context.Background(), path)
			Expect(err).NotTo(HaveOccurred())

			pages := strings.SplitN(text, "Answer number 1", 2)
			Expect(pages).To(HaveLen(2))
			Expect(pages[0]).To(ContainSubstring("Question number 1"))
			Expect(pages[0]).To(ContainSubstring("Question number 2"))
			Expect(pages[0]).NotTo(ContainSubstring("Answer number"))
		})

		It("should clip text that does not fit instead of failing", func() {
			opts := pdf.DefaultOptions()
			opts.Cols, opts.Rows = 4, 6
			opts.QuestionFontSize = 20
			dense, err := pdf.NewExporter(opts, testLogger)
			Expect(err).NotTo(HaveOccurred())

			long := strings.Repeat("photosynthesis ", 200) + strings.Repeat("x", 500)
			var buf bytes.Buffer
			Expect(dense.Export(&buf, []models.Flashcard{{Question: long, Answer: long}})).To(Succeed())
		})

		It("should accept non-ascii text", func() {
			var buf bytes.Buffer
			cards := []models.Flashcard{{Question: "Le ____ est chaud — très chaud.", Answer: "Le café est chaud — très chaud."}}
			Expect(exporter.Export(&buf, cards)).To(Succeed())
		})

		It("should log characters the core fonts cannot show", func() {
			var out bytes.Buffer
			log := logger.New(logger.WithOutput(&out), logger.WithFlags(0), logger.WithVerbose(true))
			exp, err := pdf.NewExporter(pdf.DefaultOptions(), log)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			cards := []models.Flashcard{{Question: "Le café est chaud.", Answer: "Zellkern heißt 細胞核."}}
			Expect(exp.Export(&buf, cards)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("has 3 characters outside cp1252"))
			Expect(strings.Count(out.String(), "outside cp1252")).To(Equal(1))
		})
	})

	Context("sinks", func() {
		It("should surface an unusable writer", func() {
			err := exporter.Export(brokenWriter{}, sampleCards(3))
			Expect(err).To(MatchError(pdf.ErrSinkUnavailable))
		})

		It("should fail cleanly when the destination directory is missing", func() {
			path := filepath.Join(outputDir, "missing", "cards.pdf")
			err := exporter.ExportFile(path, sampleCards(3))
			Expect(err).To(MatchError(pdf.ErrSinkUnavailable))
			Expect(path).NotTo(BeAnExistingFile())
		})

		It("should leave no temporary files behind", func() {
			path := filepath.Join(outputDir, "cards.pdf")
			Expect(exporter.ExportFile(path, sampleCards(5))).To(Succeed())
			Expect(path).To(BeAnExistingFile())

			entries, err := os.ReadDir(outputDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))

			report, err := pdf.InspectFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Sheets).To(Equal(1))
		})
	})

	Context("options", func() {
		DescribeTable("rejects unusable layouts",
			func(mutate func(*pdf.Options)) {
				opts := pdf.DefaultOptions()
				mutate(&opts)
				_, err := pdf.NewExporter(opts, testLogger)
				Expect(err).To(MatchError(layout.ErrInvalidGrid))
			},
			Entry("zero columns", func(o *pdf.Options) { o.Cols = 0 }),
			Entry("huge margin", func(o *pdf.Options) { o.MarginMM = 200 }),
			Entry("zero font", func(o *pdf.Options) { o.AnswerFontSize = 0 }),
		)

		It("should map options onto the grid", func() {
			g := pdf.DefaultOptions().Grid()
			Expect(g).To(Equal(layout.Grid{Cols: 2, Rows: 4, Margin: 12, Gutter: 6}))
		})
	})
})

var _ = Describe("PDF Extractor", func() {
	It("should stop when the context is cancelled", func() {
		dir, err := os.MkdirTemp("", "notesflash-extract-*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		exporter, err := pdf.NewExporter(pdf.DefaultOptions(), nil)
		Expect(err).NotTo(HaveOccurred())
		path := filepath.Join(dir, "cards.pdf")
		Expect(exporter.ExportFile(path, sampleCards(1))).To(Succeed())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = pdf.NewExtractor(nil).ExtractFile(ctx, path)
		Expect(err).To(Equal(context.Canceled))
	})

	It("should reject bytes that are not a PDF", func() {
		_, err := pdf.NewExtractor(nil).ExtractBytes(context.Background(), "notes.pdf", []byte("not a pdf"))
		Expect(err).To(HaveOccurred())
	})

	It("should read uploaded bytes", func() {
		exporter, err := pdf.NewExporter(pdf.DefaultOptions(), nil)
		Expect(err).NotTo(HaveOccurred())
		data, err := exporter.Render(sampleCards(1))
		Expect(err).NotTo(HaveOccurred())

		text, err := pdf.NewExtractor(nil).ExtractBytes(context.Background(), "cards.pdf", data)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("Answer number 1"))
	})
})

var _ = Describe("A4 matching", func() {
	DescribeTable("MatchesA4",
		func(width, height float64, shouldMatch bool) {
			Expect(pdf.MatchesA4(width, height)).To(Equal(shouldMatch))
		},
		Entry("exact", pdf.A4PtWidth, pdf.A4PtHeight, true),
		Entry("within tolerance", 595.0, 842.0, true),
		Entry("landscape", pdf.A4PtHeight, pdf.A4PtWidth, false),
		Entry("letter", 612.0, 792.0, false),
	)
})
