package sixface

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/cubegrab/internal/fetch"
	"github.com/nao1215/cubegrab/internal/model"
	"github.com/nao1215/cubegrab/internal/tileinfo"
)

// symbolIndex returns the index of the face symbol in raw: the byte right
// before the extension of the path, ignoring query and fragment.
func symbolIndex(raw string) (int, error) {
	end := len(raw)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		end = i
	}
	ext := path.Ext(raw[:end])
	pos := end - len(ext) - 1
	if ext == "" || pos < 0 || raw[pos] == '/' {
		return 0, fmt.Errorf("%w: %s", ErrNotFaceURL, raw)
	}
	return pos, nil
}

// DeriveURL returns seed with its face symbol replaced by symbol.
func DeriveURL(seed string, symbol byte) (string, error) {
	pos, err := symbolIndex(seed)
	if err != nil {
		return "", err
	}
	return seed[:pos] + string(symbol) + seed[pos+1:], nil
}

// Downloader fetches the six faces of a panorama concurrently.
type Downloader struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
	onTile  func(*model.Tile)
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithTileHook registers fn to be called for every downloaded face.
// fn is called from several goroutines at once.
func WithTileHook(fn func(*model.Tile)) Option {
	return func(d *Downloader) {
		d.onTile = fn
	}
}

// New creates a Downloader that fetches through f.
func New(f fetch.Fetcher, opts ...Option) *Downloader {
	d := &Downloader{fetcher: f}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Download fetches every face named by naming, starting from seed.
// The seed's own symbol must belong to the naming scheme.
func (d *Downloader) Download(ctx context.Context, seed string, naming model.FaceNaming) (*model.CubeSet, error) {
	symbols := naming.Symbols()

	pos, err := symbolIndex(seed)
	if err != nil {
		return nil, err
	}
	if !strings.ContainsRune(symbols, rune(seed[pos])) {
		return nil, fmt.Errorf("%w: %q is not one of %q in %s", ErrNotFaceURL, seed[pos], symbols, seed)
	}

	cube := &model.CubeSet{Mode: model.CubeModeSixFace}
	g, gctx := errgroup.WithContext(ctx)

	for i := range len(symbols) {
		symbol := symbols[i]
		face, _ := model.FaceForSymbol(symbol) //nolint:errcheck // both symbol sets map to all six faces
		url := seed[:pos] + string(symbol) + seed[pos+1:]

		g.Go(func() error {
			resp, err := d.fetcher.Fetch(gctx, url)
			if err != nil {
				return fmt.Errorf("failed to fetch face %s: %w", face, err)
			}
			if !resp.Found() {
				return fmt.Errorf("%w: %s (%s) answered status %d", ErrFaceMissing, face, url, resp.StatusCode)
			}

			tile := &model.Tile{
				Symbol:   symbol,
				URL:      url,
				Data:     resp.Body,
				MIMEType: tileinfo.MIMEType(resp.ContentType, resp.Body),
			}
			if d.onTile != nil {
				d.onTile(tile)
			}
			cube.Faces[face] = model.NewSingleTileGrid(face, tile)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.logger.Debug("six faces downloaded", "seed", seed, "naming", naming.String())
	return cube, nil
}
