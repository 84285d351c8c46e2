package render

// A4 in points.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
)

// Command is one drawing instruction. Coordinates are in points with the
// origin at the bottom-left of the page; the encoder translates to whatever
// the backend expects.
type Command interface {
	isCommand()
}

type SetFont struct {
	Family string
	Style  string
	Size   float64
}

// Text draws a string with its baseline at Y.
type Text struct {
	X float64
	Y float64
	S string
}

// Rect is anchored at its bottom-left corner. Gray is 0 (black) to 1 (white)
// and only applies when Fill is set.
type Rect struct {
	X    float64
	Y    float64
	W    float64
	H    float64
	Gray float64
	Fill bool
}

type Line struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

func (SetFont) isCommand() {}
func (Text) isCommand()    {}
func (Rect) isCommand()    {}
func (Line) isCommand()    {}
