package calendar

// Rect is a cell's bounding box in renderer units (pixels, terminal columns...)
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

type OverlayKind string

const (
	OverlaySelected OverlayKind = "selected"
	OverlayToday    OverlayKind = "today"
)

// Overlay is the date-number badge layered above a highlighted cell.
// Renderers draw overlays after all cell content so they stay on top, and
// recompute Bounds whenever the cell size changes.
type Overlay struct {
	Date   string
	Day    int
	Kind   OverlayKind
	Bounds Rect
}

// CellBounds returns the bounding box of the cell for date in a grid of
// cellWidth x cellHeight cells
func (g Grid) CellBounds(date string, cellWidth, cellHeight int) (Rect, bool) {
	c, ok := g.Cell(date)
	if !ok {
		return Rect{}, false
	}
	return boundsOf(c, cellWidth, cellHeight), true
}

// SelectedBounds returns the bounding box of the selected cell, if it is in this grid
func (g Grid) SelectedBounds(cellWidth, cellHeight int) (Rect, bool) {
	for _, c := range g.Cells {
		if c.IsSelected {
			return boundsOf(c, cellWidth, cellHeight), true
		}
	}
	return Rect{}, false
}

// Overlays returns one overlay per selected or today cell; a cell that is both
// gets a single selected overlay
func (g Grid) Overlays(cellWidth, cellHeight int) []Overlay {
	var overlays []Overlay
	for _, c := range g.Cells {
		var kind OverlayKind
		switch {
		case c.IsSelected:
			kind = OverlaySelected
		case c.IsToday:
			kind = OverlayToday
		default:
			continue
		}
		overlays = append(overlays, Overlay{
			Date:   c.Date,
			Day:    c.Day,
			Kind:   kind,
			Bounds: boundsOf(c, cellWidth, cellHeight),
		})
	}
	return overlays
}

func boundsOf(c Cell, cellWidth, cellHeight int) Rect {
	return Rect{
		X:      c.Col * cellWidth,
		Y:      c.Row * cellHeight,
		Width:  cellWidth,
		Height: cellHeight,
	}
}
