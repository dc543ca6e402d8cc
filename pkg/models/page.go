package models

type Side int

const (
	Front Side = iota
	Back
)

func (s Side) String() string {
	if s == Back {
		return "back"
	}
	return "front"
}

// PageSize is expressed in the same length unit as the grid margins and gutter.
type PageSize struct {
	Width  float64
	Height float64
}

// Slot is a card rectangle on one page side. The origin is the bottom-left corner
// of the page and Y grows upward.
type Slot struct {
	Index  int
	Side   Side
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (s Slot) Right() float64 { return s.X + s.Width }
func (s Slot) Top() float64   { return s.Y + s.Height }

// Overlaps reports whether two slots share any interior area.
func (s Slot) Overlaps(o Slot) bool {
	return s.X < o.Right() && o.X < s.Right() && s.Y < o.Top() && o.Y < s.Top()
}

// Sheet is one physical printed sheet: a question page and an answer page.
// Cards[i] is drawn in Front[i] and its answer in Back[i].
type Sheet struct {
	Number int
	Cards  []Flashcard
	Front  []Slot
	Back   []Slot
}
