package probe

import (
	"log/slog"

	"github.com/nao1215/cubegrab/internal/fetch"
	"github.com/nao1215/cubegrab/internal/model"
)

const (
	defaultFaceWorkers  = model.FaceCount
	defaultColumnWindow = 4
	defaultMaxExtent    = 1024
	defaultMaxZoom      = 32
)

// Prober discovers zoom levels and tile grids through a Fetcher.
// A Prober holds no per-acquisition state and may be shared.
type Prober struct {
	fetcher      fetch.Fetcher
	faceWorkers  int
	columnWindow int
	maxExtent    int
	maxZoom      int
	logger       *slog.Logger
	onTile       func(*model.Tile)
}

// Option configures a Prober.
type Option func(*Prober)

// WithFaceWorkers sets how many faces are scanned at the same time.
func WithFaceWorkers(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.faceWorkers = n
		}
	}
}

// WithColumnWindow sets how many columns of a row are fetched at the same time.
// 1 makes the scan strictly sequential.
func WithColumnWindow(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.columnWindow = n
		}
	}
}

// WithMaxExtent caps the number of rows and columns of a face.
func WithMaxExtent(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.maxExtent = n
		}
	}
}

// WithMaxZoom caps the zoom level probing may reach.
func WithMaxZoom(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.maxZoom = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// WithTileHook registers fn to be called for every downloaded tile.
// fn is called from several goroutines at once.
func WithTileHook(fn func(*model.Tile)) Option {
	return func(p *Prober) {
		p.onTile = fn
	}
}

// New creates a Prober that fetches through f.
func New(f fetch.Fetcher, opts ...Option) *Prober {
	p := &Prober{
		fetcher:      f,
		faceWorkers:  defaultFaceWorkers,
		columnWindow: defaultColumnWindow,
		maxExtent:    defaultMaxExtent,
		maxZoom:      defaultMaxZoom,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}
