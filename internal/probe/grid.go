package probe

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/cubegrab/internal/model"
	"github.com/nao1215/cubegrab/internal/schema"
	"github.com/nao1215/cubegrab/internal/tileinfo"
)

// Download scans all six faces at zoom and returns the complete cube.
// Face index i of the schema lands in CubeSet slot i.
// Any fatal error cancels the remaining fetches and no cube is returned.
func (p *Prober) Download(ctx context.Context, s *schema.Schema, zoom int) (*model.CubeSet, error) {
	cube := &model.CubeSet{Mode: model.CubeModePyramid, Zoom: zoom}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.faceWorkers)

	for _, face := range model.AllFaces() {
		g.Go(func() error {
			grid, err := p.downloadFace(gctx, s, zoom, face)
			if err != nil {
				return err
			}
			// Each goroutine owns its own slot.
			cube.Faces[face] = grid
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cube, nil
}

// downloadFace grows rows until a row has no column 0.
func (p *Prober) downloadFace(ctx context.Context, s *schema.Schema, zoom int, face model.Face) (*model.TileGrid, error) {
	grid := &model.TileGrid{Face: face}

	for row := 0; ; row++ {
		if row >= p.maxExtent {
			return nil, fmt.Errorf("%w: face %s has %d rows or more", ErrGridTooLarge, face, p.maxExtent)
		}

		tiles, err := p.downloadRow(ctx, s, model.Coord{Face: face, Zoom: zoom, Row: row})
		if err != nil {
			return nil, err
		}
		if len(tiles) == 0 {
			break
		}
		grid.Rows = append(grid.Rows, tiles)
	}

	if grid.RowCount() == 0 {
		return nil, fmt.Errorf("%w: face %s at zoom %d", ErrNoTilesFound, face, zoom)
	}

	p.logger.Debug("face complete",
		"face", face.String(),
		"rows", grid.RowCount(),
		"tiles", grid.TileCount(),
	)
	return grid, nil
}

// downloadRow fetches column 0 alone, then the rest of the row in windows.
// An empty result means the row does not exist.
func (p *Prober) downloadRow(ctx context.Context, s *schema.Schema, start model.Coord) ([]*model.Tile, error) {
	first, err := p.fetchTile(ctx, s, start)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}

	tiles := []*model.Tile{first}
	for col := 1; ; {
		if col >= p.maxExtent {
			return nil, fmt.Errorf("%w: face %s row %d has %d columns or more",
				ErrGridTooLarge, start.Face, start.Row, p.maxExtent)
		}

		n := min(p.columnWindow, p.maxExtent-col)
		window := make([]*model.Tile, n)

		g, gctx := errgroup.WithContext(ctx)
		for i := range n {
			c := start
			c.Col = col + i
			g.Go(func() error {
				tile, err := p.fetchTile(gctx, s, c)
				window[i] = tile
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, tile := range window {
			if tile == nil {
				tiles = append(tiles, window[:i]...)
				p.logger.Debug("row ended",
					"face", start.Face.String(),
					"row", start.Row,
					"cols", len(tiles),
				)
				return tiles, nil
			}
		}
		tiles = append(tiles, window...)
		col += n
	}
}

// fetchTile returns nil without error when the tile is absent.
func (p *Prober) fetchTile(ctx context.Context, s *schema.Schema, c model.Coord) (*model.Tile, error) {
	url := s.Render(int(c.Face), c.Zoom, c.Row, c.Col)
	resp, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tile %s: %w", c, err)
	}
	if !resp.Found() {
		return nil, nil //nolint:nilnil // absence is not an error
	}

	tile := &model.Tile{
		Coord:    c,
		URL:      url,
		Data:     resp.Body,
		MIMEType: tileinfo.MIMEType(resp.ContentType, resp.Body),
	}
	if p.onTile != nil {
		p.onTile(tile)
	}
	return tile, nil
}
