package tensor

import "fmt"

// Box is an axis-aligned integer rectangle with inclusive bounds. It marks
// the valid region of a downsampled feature map: loss is evaluated only
// inside the box.
type Box struct {
	Up    int
	Down  int
	Left  int
	Right int
}

// Height returns the number of rows covered by the box.
// Bounds are inclusive, so a box with Up == Down covers one row.
func (b Box) Height() int {
	return b.Down - b.Up + 1
}

// Width returns the number of columns covered by the box.
func (b Box) Width() int {
	return b.Right - b.Left + 1
}

// Check validates the box against a feature map of the given spatial extent.
func (b Box) Check(height, width int) error {
	if b.Up > b.Down {
		return fmt.Errorf("box up %d > down %d", b.Up, b.Down)
	}
	if b.Left > b.Right {
		return fmt.Errorf("box left %d > right %d", b.Left, b.Right)
	}
	if b.Up < 0 || b.Down >= height {
		return fmt.Errorf("box rows [%d, %d] outside feature height %d", b.Up, b.Down, height)
	}
	if b.Left < 0 || b.Right >= width {
		return fmt.Errorf("box cols [%d, %d] outside feature width %d", b.Left, b.Right, width)
	}
	return nil
}
