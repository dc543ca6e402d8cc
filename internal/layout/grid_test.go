package layout_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/notesflash/internal/layout"
	"github.com/kpauljoseph/notesflash/pkg/models"
	"github.com/kpauljoseph/notesflash/pkg/utils"
)

const eps = 1e-9

var a4 = models.PageSize{Width: utils.A4WidthMM, Height: utils.A4HeightMM}

func cards(n int) []models.Flashcard {
	out := make([]models.Flashcard, n)
	for i := range out {
		out[i] = models.Flashcard{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)}
	}
	return out
}

func geometry(slots []models.Slot) [][4]float64 {
	out := make([][4]float64, len(slots))
	for i, s := range slots {
		out[i] = [4]float64{s.X, s.Y, s.Width, s.Height}
	}
	return out
}

var _ = Describe("Page layout", func() {
	Context("front slots", func() {
		It("should compute the 2x2 grid on a 100x200 page", func() {
			g := layout.Grid{Cols: 2, Rows: 2, Margin: 10, Gutter: 10}
			slots, err := layout.FrontSlots(g, models.PageSize{Width: 100, Height: 200})
			Expect(err).NotTo(HaveOccurred())

			// usable 80x180, cell 35x85
			Expect(geometry(slots)).To(Equal([][4]float64{
				{10, 105, 35, 85},
				{55, 105, 35, 85},
				{10, 10, 35, 85},
				{55, 10, 35, 85},
			}))
			for i, s := range slots {
				Expect(s.Index).To(Equal(i))
				Expect(s.Side).To(Equal(models.Front))
			}
		})

		DescribeTable("stay inside the page and never overlap",
			func(cols, rows int, margin, gutter float64) {
				g := layout.Grid{Cols: cols, Rows: rows, Margin: margin, Gutter: gutter}
				slots, err := layout.FrontSlots(g, a4)
				Expect(err).NotTo(HaveOccurred())
				Expect(slots).To(HaveLen(cols * rows))

				for i, s := range slots {
					Expect(s.X).To(BeNumerically(">=", margin-eps))
					Expect(s.Y).To(BeNumerically(">=", margin-eps))
					Expect(s.Right()).To(BeNumerically("<=", a4.Width-margin+eps))
					Expect(s.Top()).To(BeNumerically("<=", a4.Height-margin+eps))

					shrunk := models.Slot{X: s.X + eps, Y: s.Y + eps, Width: s.Width - 2*eps, Height: s.Height - 2*eps}
					for j, o := range slots {
						if i != j {
							Expect(shrunk.Overlaps(o)).To(BeFalse(), "slot %d overlaps slot %d", i, j)
						}
					}
				}
			},
			Entry("default 2x4", 2, 4, 12.0, 6.0),
			Entry("single card", 1, 1, 12.0, 6.0),
			Entry("dense 4x6", 4, 6, 6.0, 2.0),
			Entry("no gutter", 3, 3, 10.0, 0.0),
			Entry("no margin", 2, 2, 0.0, 5.0),
		)

		It("should put row 0 at the top", func() {
			slots, err := layout.FrontSlots(layout.Grid{Cols: 1, Rows: 3, Margin: 12, Gutter: 6}, a4)
			Expect(err).NotTo(HaveOccurred())
			Expect(slots[0].Y).To(BeNumerically(">", slots[1].Y))
			Expect(slots[1].Y).To(BeNumerically(">", slots[2].Y))
			Expect(slots[0].Top()).To(BeNumerically("~", a4.Height-12, eps))
		})

		It("should be deterministic", func() {
			g := layout.Grid{Cols: 3, Rows: 5, Margin: 12, Gutter: 6}
			first, err := layout.FrontSlots(g, a4)
			Expect(err).NotTo(HaveOccurred())
			second, err := layout.FrontSlots(g, a4)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		DescribeTable("reject unusable grids",
			func(g layout.Grid, page models.PageSize) {
				_, err := layout.FrontSlots(g, page)
				Expect(errors.Is(err, layout.ErrInvalidGrid)).To(BeTrue())
			},
			Entry("zero columns", layout.Grid{Cols: 0, Rows: 2}, a4),
			Entry("negative rows", layout.Grid{Cols: 2, Rows: -1}, a4),
			Entry("negative margin", layout.Grid{Cols: 2, Rows: 2, Margin: -1}, a4),
			Entry("negative gutter", layout.Grid{Cols: 2, Rows: 2, Gutter: -1}, a4),
			Entry("margins eat the page", layout.Grid{Cols: 1, Rows: 1, Margin: 105}, a4),
			Entry("gutters eat the page", layout.Grid{Cols: 4, Rows: 1, Margin: 10, Gutter: 70}, a4),
			Entry("empty page", layout.Grid{Cols: 1, Rows: 1}, models.PageSize{}),
		)
	})

	Context("mirroring for the back page", func() {
		var front []models.Slot

		BeforeEach(func() {
			var err error
			front, err = layout.FrontSlots(layout.Grid{Cols: 3, Rows: 2, Margin: 12, Gutter: 6}, a4)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reverse each row and keep the row order", func() {
			back := layout.MirrorForBack(front, 3, 2)
			indexes := make([]int, len(back))
			for i, s := range back {
				indexes[i] = s.Index
			}
			Expect(indexes).To(Equal([]int{2, 1, 0, 5, 4, 3}))
			Expect(back[0].Y).To(Equal(front[0].Y))
			Expect(back[3].Y).To(Equal(front[3].Y))
		})

		It("should be an involution", func() {
			Expect(layout.MirrorForBack(layout.MirrorForBack(front, 3, 2), 3, 2)).To(Equal(front))
		})

		DescribeTable("always returns cols*rows slots",
			func(cols, rows int) {
				slots, err := layout.FrontSlots(layout.Grid{Cols: cols, Rows: rows, Margin: 6, Gutter: 2}, a4)
				Expect(err).NotTo(HaveOccurred())
				Expect(layout.MirrorForBack(slots, cols, rows)).To(HaveLen(cols * rows))
			},
			Entry("1x1", 1, 1),
			Entry("1x6", 1, 6),
			Entry("4x1", 4, 1),
			Entry("4x6", 4, 6),
		)

		It("should leave a single column unchanged", func() {
			single, err := layout.FrontSlots(layout.Grid{Cols: 1, Rows: 4, Margin: 6, Gutter: 2}, a4)
			Expect(err).NotTo(HaveOccurred())
			Expect(layout.MirrorForBack(single, 1, 4)).To(Equal(single))
		})

		It("should stamp back slots with the back side", func() {
			back, err := layout.BackSlots(layout.Grid{Cols: 2, Rows: 1, Margin: 6, Gutter: 2}, a4)
			Expect(err).NotTo(HaveOccurred())
			Expect(back[0].Side).To(Equal(models.Back))
			Expect(back[0].Index).To(Equal(1))
		})
	})

	Context("pagination", func() {
		It("should register a partial 2x2 sheet on both faces", func() {
			g := layout.Grid{Cols: 2, Rows: 2, Margin: 12, Gutter: 6}
			sheets, err := layout.Paginate(cards(3), g, a4)
			Expect(err).NotTo(HaveOccurred())
			Expect(sheets).To(HaveLen(1))

			sheet := sheets[0]
			Expect(sheet.Cards).To(HaveLen(3))
			Expect(sheet.Front).To(HaveLen(3))
			Expect(sheet.Back).To(HaveLen(3))

			frontIdx := []int{sheet.Front[0].Index, sheet.Front[1].Index, sheet.Front[2].Index}
			Expect(frontIdx).To(Equal([]int{0, 1, 2}))

			// a0 answers the row-0-left question from the row-0-right position.
			Expect(sheet.Back[0].Index).To(Equal(1))
			Expect(sheet.Back[1].Index).To(Equal(0))
			Expect(sheet.Back[2].Index).To(Equal(3))

			// Position 2 is left empty on the back, matching empty position 3 on the front.
			fronts, err := layout.FrontSlots(g, a4)
			Expect(err).NotTo(HaveOccurred())
			Expect(sheet.Back[0].X).To(Equal(fronts[1].X))
			Expect(sheet.Back[2].X).To(Equal(fronts[3].X))
		})

		It("should chunk cards into full sheets", func() {
			g := layout.Grid{Cols: 2, Rows: 4, Margin: 12, Gutter: 6}
			sheets, err := layout.Paginate(cards(17), g, a4)
			Expect(err).NotTo(HaveOccurred())
			Expect(sheets).To(HaveLen(3))
			Expect(sheets[0].Cards).To(HaveLen(8))
			Expect(sheets[1].Cards[0].Question).To(Equal("q8"))
			Expect(sheets[2].Cards).To(HaveLen(1))
			Expect(sheets[2].Number).To(Equal(3))
		})

		It("should produce no sheets for no cards", func() {
			sheets, err := layout.Paginate(nil, layout.Grid{Cols: 2, Rows: 2}, a4)
			Expect(err).NotTo(HaveOccurred())
			Expect(sheets).To(BeEmpty())
		})

		It("should surface grid errors", func() {
			_, err := layout.Paginate(cards(2), layout.Grid{}, a4)
			Expect(err).To(MatchError(layout.ErrInvalidGrid))
		})
	})
})
