package visible

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout reports a layout whose fields cannot describe a valid
// placement (negative origin or spacing, non-positive explicit tile size).
var ErrInvalidLayout = errors.New("invalid layout")

// Position selects where stamps are placed: one of five single anchors, or
// a repeating grid.
type Position string

const (
	TopLeft     Position = "topleft"
	TopRight    Position = "topright"
	Center      Position = "center"
	BottomLeft  Position = "bottomleft"
	BottomRight Position = "bottomright"
	Grid        Position = "grid"
)

// ParsePosition validates a position string.
func ParsePosition(s string) (Position, error) {
	switch p := Position(s); p {
	case TopLeft, TopRight, Center, BottomLeft, BottomRight, Grid:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown position %q", ErrInvalidLayout, s)
}

// anchorPadding is the fixed margin, in pixels, between a single-anchor
// stamp and the canvas edge.
const anchorPadding = 20

// GridLayout describes the repeating-grid placement. Zero Rows or Cols means
// "derive from the available space"; zero TileWidth or TileHeight means "use
// the measured text size".
type GridLayout struct {
	OriginX, OriginY      int
	Rows, Cols            int
	SpaceX, SpaceY        int
	TileWidth, TileHeight int
}

func (l GridLayout) validate() error {
	if l.OriginX < 0 || l.OriginY < 0 {
		return fmt.Errorf("%w: negative origin (%d,%d)", ErrInvalidLayout, l.OriginX, l.OriginY)
	}
	if l.SpaceX < 0 || l.SpaceY < 0 {
		return fmt.Errorf("%w: negative spacing (%d,%d)", ErrInvalidLayout, l.SpaceX, l.SpaceY)
	}
	if l.Rows < 0 || l.Cols < 0 {
		return fmt.Errorf("%w: negative rows/cols (%d,%d)", ErrInvalidLayout, l.Rows, l.Cols)
	}
	if l.TileWidth < 0 || l.TileHeight < 0 {
		return fmt.Errorf("%w: negative tile size (%d,%d)", ErrInvalidLayout, l.TileWidth, l.TileHeight)
	}
	return nil
}

// A Tile is one placement candidate for a stamp: a resolved top-left
// coordinate plus the stamp cell size used for grid stepping.
type Tile struct {
	X, Y int
	W, H int
}

// anchorTile resolves a single-anchor position to a tile for a stamp of the
// measured size.
func anchorTile(pos Position, canvasW, canvasH, stampW, stampH int) Tile {
	var x, y int
	switch pos {
	case TopLeft:
		x, y = anchorPadding, anchorPadding
	case TopRight:
		x, y = canvasW-stampW-anchorPadding, anchorPadding
	case Center:
		x, y = (canvasW-stampW)/2, (canvasH-stampH)/2
	case BottomLeft:
		x, y = anchorPadding, canvasH-stampH-anchorPadding
	default: // BottomRight
		x, y = canvasW-stampW-anchorPadding, canvasH-stampH-anchorPadding
	}
	return Tile{X: x, Y: y, W: stampW, H: stampH}
}

// planGrid enumerates the grid tiles for the given layout on a canvas of the
// given size. Rows and cols of zero are derived so the derived grid never
// overflows the canvas; explicitly requested counts may produce tiles past
// the margin, which are silently dropped. Only tiles whose full bounding box
// lies inside the canvas are returned.
func planGrid(l GridLayout, canvasW, canvasH, textW, textH int) []Tile {
	tileW := l.TileWidth
	if tileW == 0 {
		tileW = textW
	}
	tileH := l.TileHeight
	if tileH == 0 {
		tileH = textH
	}

	rows, cols := l.Rows, l.Cols
	if cols == 0 {
		cols = 1
		if step := tileW + l.SpaceX; step > 0 {
			cols = max(1, (canvasW-l.OriginX)/step)
		}
	}
	if rows == 0 {
		rows = 1
		if step := tileH + l.SpaceY; step > 0 {
			rows = max(1, (canvasH-l.OriginY)/step)
		}
	}

	var tiles []Tile
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := l.OriginX + c*(tileW+l.SpaceX)
			y := l.OriginY + r*(tileH+l.SpaceY)
			if x+tileW <= canvasW && y+tileH <= canvasH {
				tiles = append(tiles, Tile{X: x, Y: y, W: tileW, H: tileH})
			}
		}
	}
	return tiles
}
