package model

import (
	"fmt"
	"path"
	"strings"
)

// Coord locates one tile inside a tiled cube pyramid.
type Coord struct {
	// Face is the cube face the tile belongs to.
	Face Face `json:"face"`
	// Zoom is the pyramid level.
	Zoom int `json:"zoom"`
	// Row is the zero-based tile row inside the face.
	Row int `json:"row"`
	// Col is the zero-based tile column inside the row.
	Col int `json:"col"`
}

// String renders the coordinate as face/zoom/row/col.
func (c Coord) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", int(c.Face), c.Zoom, c.Row, c.Col)
}

// Tile is the raw bytes of one fetched image plus where it came from.
type Tile struct {
	// Coord is set for pyramid tiles.
	Coord Coord `json:"coord"`

	// Symbol is the face symbol ('f', '3', ...) for six-face tiles, zero otherwise.
	Symbol byte `json:"symbol,omitempty"`

	// URL is the address the tile was fetched from.
	URL string `json:"url"`

	// Data is the raw image payload.
	Data []byte `json:"-"`

	// MIMEType is the media type of Data.
	MIMEType string `json:"mime_type"`
}

// Name returns the file name the tile is stored under.
// Pyramid tiles are named {face}_{zoom}_{row}_{col}.{ext}, six-face tiles {symbol}.{ext}.
func (t *Tile) Name() string {
	ext := t.Extension()
	if t.Symbol != 0 {
		return fmt.Sprintf("%c.%s", t.Symbol, ext)
	}
	return fmt.Sprintf("%d_%d_%d_%d.%s", int(t.Coord.Face), t.Coord.Zoom, t.Coord.Row, t.Coord.Col, ext)
}

// Extension returns the file extension of the tile without the dot.
// The MIME type wins over the URL; jpg is the fallback.
func (t *Tile) Extension() string {
	switch t.MIMEType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	}
	p := t.URL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if ext := strings.TrimPrefix(path.Ext(p), "."); ext != "" && !strings.Contains(ext, "/") {
		return strings.ToLower(ext)
	}
	return "jpg"
}

// Size returns the payload length in bytes.
func (t *Tile) Size() int {
	return len(t.Data)
}

// TileGrid holds the tiles of one face in row-major order.
// Rows may differ in length. Row 0 and column 0 exist whenever the grid is not empty.
type TileGrid struct {
	Face Face      `json:"face"`
	Rows [][]*Tile `json:"rows"`
}

// NewSingleTileGrid wraps a whole-face image as a 1x1 grid.
func NewSingleTileGrid(face Face, tile *Tile) *TileGrid {
	return &TileGrid{Face: face, Rows: [][]*Tile{{tile}}}
}

// RowCount returns the number of rows.
func (g *TileGrid) RowCount() int {
	if g == nil {
		return 0
	}
	return len(g.Rows)
}

// ColCounts returns the length of every row.
func (g *TileGrid) ColCounts() []int {
	if g == nil {
		return nil
	}
	counts := make([]int, len(g.Rows))
	for i, row := range g.Rows {
		counts[i] = len(row)
	}
	return counts
}

// TileCount returns the number of tiles in the grid.
func (g *TileGrid) TileCount() int {
	n := 0
	for _, c := range g.ColCounts() {
		n += c
	}
	return n
}

// At returns the tile at (row, col) or nil when it is out of range.
func (g *TileGrid) At(row, col int) *Tile {
	if g == nil || row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return nil
	}
	return g.Rows[row][col]
}

// Tiles returns every tile in row-major order.
func (g *TileGrid) Tiles() []*Tile {
	if g == nil {
		return nil
	}
	tiles := make([]*Tile, 0, g.TileCount())
	for _, row := range g.Rows {
		tiles = append(tiles, row...)
	}
	return tiles
}

// Bytes returns the sum of all payload sizes in the grid.
func (g *TileGrid) Bytes() int64 {
	var total int64
	for _, t := range g.Tiles() {
		total += int64(t.Size())
	}
	return total
}

// CubeMode tells how a CubeSet was acquired.
type CubeMode int

const (
	// CubeModePyramid is a tiled zoom pyramid.
	CubeModePyramid CubeMode = iota
	// CubeModeSixFace is six whole-face images.
	CubeModeSixFace
)

// String returns the mode name.
func (m CubeMode) String() string {
	if m == CubeModeSixFace {
		return "six-face"
	}
	return "pyramid"
}

// CubeSet holds exactly six face grids, indexed in stitcher order
// (back, right, front, left, top, bottom).
type CubeSet struct {
	Mode  CubeMode             `json:"mode"`
	Zoom  int                  `json:"zoom"`
	Faces [FaceCount]*TileGrid `json:"faces"`
}

// Face returns the grid of face f.
func (c *CubeSet) Face(f Face) *TileGrid {
	if !f.Valid() {
		return nil
	}
	return c.Faces[f]
}

// Complete reports whether every face has at least one tile.
func (c *CubeSet) Complete() bool {
	for _, g := range c.Faces {
		if g.TileCount() == 0 {
			return false
		}
	}
	return true
}

// IsSingleTile reports whether every face is a single whole-face image,
// in which case no multistitch pass is needed.
func (c *CubeSet) IsSingleTile() bool {
	for _, g := range c.Faces {
		if g.TileCount() != 1 {
			return false
		}
	}
	return true
}

// TileCount returns the number of tiles across all faces.
func (c *CubeSet) TileCount() int {
	n := 0
	for _, g := range c.Faces {
		n += g.TileCount()
	}
	return n
}

// Tiles returns every tile, face by face in stitcher order, row-major within a face.
func (c *CubeSet) Tiles() []*Tile {
	tiles := make([]*Tile, 0, c.TileCount())
	for _, g := range c.Faces {
		tiles = append(tiles, g.Tiles()...)
	}
	return tiles
}

// Bytes returns the sum of all payload sizes.
func (c *CubeSet) Bytes() int64 {
	var total int64
	for _, g := range c.Faces {
		total += g.Bytes()
	}
	return total
}
