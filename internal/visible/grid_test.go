package visible

import (
	"errors"
	"testing"
)

func TestParsePosition(t *testing.T) {
	for _, s := range []string{"topleft", "topright", "center", "bottomleft", "bottomright", "grid"} {
		if _, err := ParsePosition(s); err != nil {
			t.Errorf("ParsePosition(%q): %v", s, err)
		}
	}
	if _, err := ParsePosition("middle"); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("err = %v, want ErrInvalidLayout", err)
	}
}

func TestPlanGridAutoDerive(t *testing.T) {
	l := GridLayout{OriginX: 20, OriginY: 20, SpaceX: 50, SpaceY: 50}
	tiles := planGrid(l, 500, 500, 100, 40)

	// cols = floor(480/150) = 3, rows = floor(480/90) = 5
	if len(tiles) != 15 {
		t.Fatalf("emitted %d tiles, want 15", len(tiles))
	}
	for _, tile := range tiles {
		if tile.X+tile.W > 500 || tile.Y+tile.H > 500 {
			t.Errorf("tile %+v exceeds canvas", tile)
		}
	}
}

func TestPlanGridDropPolicy(t *testing.T) {
	l := GridLayout{OriginX: 20, OriginY: 20, Rows: 1, Cols: 10, SpaceX: 50, SpaceY: 50}
	tiles := planGrid(l, 500, 500, 100, 40)

	if len(tiles) >= 10 {
		t.Fatalf("emitted %d tiles, want fewer than requested 10", len(tiles))
	}
	if len(tiles) == 0 {
		t.Fatal("all tiles dropped")
	}
	for _, tile := range tiles {
		if tile.X+tile.W > 500 {
			t.Errorf("tile %+v crosses the right edge", tile)
		}
	}
}

func TestPlanGridTileOverride(t *testing.T) {
	l := GridLayout{Rows: 1, Cols: 1, TileWidth: 64, TileHeight: 32}
	tiles := planGrid(l, 200, 200, 100, 40)
	if len(tiles) != 1 {
		t.Fatalf("emitted %d tiles, want 1", len(tiles))
	}
	if tiles[0].W != 64 || tiles[0].H != 32 {
		t.Errorf("tile size %dx%d, want explicit override 64x32", tiles[0].W, tiles[0].H)
	}
}

func TestPlanGridOversizedText(t *testing.T) {
	// Text wider than the canvas: nothing can be placed.
	l := GridLayout{SpaceX: 10, SpaceY: 10}
	if tiles := planGrid(l, 100, 100, 300, 40); len(tiles) != 0 {
		t.Errorf("emitted %d tiles for oversized text, want 0", len(tiles))
	}
}

func TestAnchorTiles(t *testing.T) {
	const canvasW, canvasH = 400, 300
	const stampW, stampH = 100, 40

	cases := []struct {
		pos  Position
		x, y int
	}{
		{TopLeft, 20, 20},
		{TopRight, 400 - 100 - 20, 20},
		{Center, 150, 130},
		{BottomLeft, 20, 300 - 40 - 20},
		{BottomRight, 400 - 100 - 20, 300 - 40 - 20},
	}
	for _, c := range cases {
		tile := anchorTile(c.pos, canvasW, canvasH, stampW, stampH)
		if tile.X != c.x || tile.Y != c.y {
			t.Errorf("%s: tile at (%d,%d), want (%d,%d)", c.pos, tile.X, tile.Y, c.x, c.y)
		}
	}
}

func TestGridLayoutValidate(t *testing.T) {
	bad := []GridLayout{
		{OriginX: -1},
		{OriginY: -5},
		{SpaceX: -1},
		{Rows: -1},
		{TileWidth: -3},
	}
	for _, l := range bad {
		if err := l.validate(); !errors.Is(err, ErrInvalidLayout) {
			t.Errorf("validate(%+v) = %v, want ErrInvalidLayout", l, err)
		}
	}
	if err := (GridLayout{}).validate(); err != nil {
		t.Errorf("zero layout should validate, got %v", err)
	}
}
