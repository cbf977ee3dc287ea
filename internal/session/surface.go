package session

import "github.com/verte-zerg/kanadraw/internal/raster"

// Surface places a square canvas of Size pixels on a terminal grid.
// Left and Top are the screen cell of the canvas's top-left corner.
type Surface struct {
	Left, Top  int
	Cols, Rows int
	Size       int
}

// Contains reports whether the screen cell (x, y) lies on the canvas.
func (s Surface) Contains(x, y int) bool {
	return x >= s.Left && x < s.Left+s.Cols && y >= s.Top && y < s.Top+s.Rows
}

// ToCanvas converts a screen cell into the canvas pixel at its centre.
// ok is false when the cell is off the canvas.
func (s Surface) ToCanvas(x, y int) (raster.Point, bool) {
	if s.Cols <= 0 || s.Rows <= 0 || !s.Contains(x, y) {
		return raster.Point{}, false
	}
	sx := float64(s.Size) / float64(s.Cols)
	sy := float64(s.Size) / float64(s.Rows)
	return raster.Point{
		X: (float64(x-s.Left) + 0.5) * sx,
		Y: (float64(y-s.Top) + 0.5) * sy,
	}, true
}
