package stitch

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/nao1215/cubegrab/internal/model"
)

// Compositor draws the tiles of every face into one image per face.
type Compositor struct {
	quality int
}

// CompositorOption configures a Compositor.
type CompositorOption func(*Compositor)

// WithQuality sets the JPEG quality of composed faces.
func WithQuality(q int) CompositorOption {
	return func(c *Compositor) {
		if q > 0 && q <= 100 {
			c.quality = q
		}
	}
}

// NewCompositor creates a Compositor.
func NewCompositor(opts ...CompositorOption) *Compositor {
	c := &Compositor{quality: defaultQuality}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Multistitch returns a six-face cube whose faces are the composed grids.
// Tiles are laid out row-major; a row's height is that of its first tile.
// A face that does not come out square is scaled to a square.
func (c *Compositor) Multistitch(ctx context.Context, cube *model.CubeSet) (*model.CubeSet, error) {
	out := &model.CubeSet{Mode: model.CubeModeSixFace, Zoom: cube.Zoom}
	for _, f := range model.AllFaces() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := c.composeFace(cube.Face(f))
		if err != nil {
			return nil, fmt.Errorf("face %s: %w", f, err)
		}
		data, err := encodeJPEG(img, c.quality)
		if err != nil {
			return nil, fmt.Errorf("face %s: %w", f, err)
		}
		out.Faces[f] = model.NewSingleTileGrid(f, &model.Tile{
			Symbol:   f.Letter(),
			URL:      fmt.Sprintf("composed:%s", f),
			Data:     data,
			MIMEType: "image/jpeg",
		})
	}
	return out, nil
}

func (c *Compositor) composeFace(grid *model.TileGrid) (image.Image, error) {
	if grid.TileCount() == 0 {
		return nil, ErrEmptyFace
	}

	decoded := make([][]image.Image, grid.RowCount())
	width, height := 0, 0
	for r, row := range grid.Rows {
		rowWidth := 0
		for _, t := range row {
			img, err := decodeTile(t)
			if err != nil {
				return nil, err
			}
			decoded[r] = append(decoded[r], img)
			rowWidth += img.Bounds().Dx()
		}
		width = max(width, rowWidth)
		height += decoded[r][0].Bounds().Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	y := 0
	for _, row := range decoded {
		x := 0
		for _, img := range row {
			b := img.Bounds()
			draw.Draw(canvas, image.Rect(x, y, x+b.Dx(), y+b.Dy()), img, b.Min, draw.Src)
			x += b.Dx()
		}
		y += row[0].Bounds().Dy()
	}

	if width == height {
		return canvas, nil
	}
	side := max(width, height)
	square := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.BiLinear.Scale(square, square.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return square, nil
}
