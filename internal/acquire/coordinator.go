package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/cubegrab/internal/classify"
	"github.com/nao1215/cubegrab/internal/fetch"
	"github.com/nao1215/cubegrab/internal/model"
	"github.com/nao1215/cubegrab/internal/probe"
	"github.com/nao1215/cubegrab/internal/schema"
	"github.com/nao1215/cubegrab/internal/sixface"
	"github.com/nao1215/cubegrab/internal/tileinfo"
)

// Multistitcher composes tiled faces into single whole-face images.
type Multistitcher interface {
	Multistitch(ctx context.Context, cube *model.CubeSet) (*model.CubeSet, error)
}

// Projector turns six whole faces into an equirectangular image.
type Projector interface {
	CubemapToEquirectangular(ctx context.Context, cube *model.CubeSet, rot model.Rotation) (*model.Artifact, error)
}

// Store persists files and reports of conversions.
type Store interface {
	SaveFile(ctx context.Context, conversionID, name string, data []byte, mimeType string) (*model.FileRecord, error)
	SaveReport(ctx context.Context, report *model.AcquisitionReport) error
}

// Coordinator runs acquisitions. It is safe for concurrent use.
type Coordinator struct {
	fetcher       fetch.Fetcher
	projector     Projector
	multistitcher Multistitcher
	store         Store
	logger        *slog.Logger
	probeOpts     []probe.Option
	onTile        func(*model.Tile)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMultistitcher sets the composer used for tiled cubes.
func WithMultistitcher(m Multistitcher) Option {
	return func(c *Coordinator) {
		c.multistitcher = m
	}
}

// WithStore enables persistence of tiles, results and reports.
func WithStore(s Store) Option {
	return func(c *Coordinator) {
		c.store = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithProbeOptions passes options to the pyramid prober.
func WithProbeOptions(opts ...probe.Option) Option {
	return func(c *Coordinator) {
		c.probeOpts = append(c.probeOpts, opts...)
	}
}

// WithTileHook registers fn to be called for every downloaded tile.
func WithTileHook(fn func(*model.Tile)) Option {
	return func(c *Coordinator) {
		c.onTile = fn
	}
}

// New creates a Coordinator fetching through f and projecting with p.
func New(f fetch.Fetcher, p Projector, opts ...Option) *Coordinator {
	c := &Coordinator{fetcher: f, projector: p}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// acquisition is what one Acquire run learned on the way to its cube.
type acquisition struct {
	match  classify.Match
	schema *schema.Schema
	zoom   int
	seed   *model.TileInfo
	cube   *model.CubeSet
	probes int64
}

// Acquire classifies url and downloads its complete cube.
// No partial cube is ever returned.
func (c *Coordinator) Acquire(ctx context.Context, url string) (*model.CubeSet, error) {
	a, err := c.acquire(ctx, url)
	if err != nil {
		return nil, err
	}
	return a.cube, nil
}

func (c *Coordinator) acquire(ctx context.Context, url string) (*acquisition, error) {
	m, err := classify.Resolve(url)
	if err != nil {
		return &acquisition{match: m}, err
	}

	counter := fetch.NewCounter(c.fetcher)
	a := &acquisition{match: m}

	switch m.Strategy {
	case classify.StrategyPyramid:
		err = c.acquirePyramid(ctx, counter, url, a)
	case classify.StrategySixFace:
		err = c.acquireSixFace(ctx, counter, url, a)
	default:
		err = fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	a.probes = counter.Count()
	if err != nil {
		return a, err
	}

	c.logger.Info("acquisition complete",
		"url", url,
		"strategy", m.Strategy.String(),
		"tiles", a.cube.TileCount(),
		"probes", a.probes,
	)
	return a, nil
}

func (c *Coordinator) acquirePyramid(ctx context.Context, f fetch.Fetcher, url string, a *acquisition) error {
	s, seed, err := schema.Normalize(ctx, f, url)
	if err != nil {
		return err
	}
	a.schema = s
	a.seed = tileinfo.Inspect(seed.ContentType, seed.Body)

	opts := append([]probe.Option{probe.WithLogger(c.logger), probe.WithTileHook(c.onTile)}, c.probeOpts...)
	prober := probe.New(f, opts...)

	zoom, err := prober.MaxZoom(ctx, s)
	if err != nil {
		return err
	}
	a.zoom = zoom
	c.logger.Debug("max zoom found", "zoom", zoom, "template", s.Template())

	cube, err := prober.Download(ctx, s, zoom)
	if err != nil {
		return err
	}
	a.cube = cube
	return nil
}

func (c *Coordinator) acquireSixFace(ctx context.Context, f fetch.Fetcher, url string, a *acquisition) error {
	d := sixface.New(f, sixface.WithLogger(c.logger), sixface.WithTileHook(c.onTile))
	cube, err := d.Download(ctx, url, a.match.Naming)
	if err != nil {
		return err
	}
	a.cube = cube
	for _, t := range cube.Tiles() {
		if t.URL == url {
			a.seed = tileinfo.Inspect(t.MIMEType, t.Data)
			break
		}
	}
	return nil
}

// Result is the outcome of processing one conversion.
type Result struct {
	// Report is always set, also when processing failed.
	Report *model.AcquisitionReport
	// Artifact is the panorama, nil on failure.
	Artifact *model.Artifact
	// File is the stored panorama, nil without a store.
	File *model.FileRecord
}

// Process acquires the conversion's cube, persists its tiles, stitches it
// and persists the panorama. The report is stored whether or not processing
// succeeded.
func (c *Coordinator) Process(ctx context.Context, conv *model.Conversion) (*Result, error) {
	report := &model.AcquisitionReport{
		ConversionID: conv.ID,
		URL:          conv.URL,
		StartedAt:    time.Now().UTC(),
	}
	res := &Result{Report: report}

	err := c.process(ctx, conv, res)
	report.Duration = model.Duration(time.Since(report.StartedAt))
	if err != nil {
		report.Error = err.Error()
		c.logger.Warn("conversion failed", "url", conv.URL, "error", err)
	}

	if c.store != nil {
		if saveErr := c.store.SaveReport(context.WithoutCancel(ctx), report); saveErr != nil {
			c.logger.Warn("failed to save report", "conversion", conv.ID, "error", saveErr)
		}
	}
	return res, err
}

func (c *Coordinator) process(ctx context.Context, conv *model.Conversion, res *Result) error {
	report := res.Report

	rot, err := conv.Rotation()
	if err != nil {
		return err
	}
	report.Rotation = rot

	a, err := c.acquire(ctx, conv.URL)
	if a != nil {
		fillReport(report, a)
	}
	if err != nil {
		return err
	}

	if c.store != nil {
		for _, t := range a.cube.Tiles() {
			if _, err := c.store.SaveFile(ctx, conv.ID, t.Name(), t.Data, t.MIMEType); err != nil {
				return fmt.Errorf("failed to store tile %s: %w", t.Name(), err)
			}
		}
	}

	faces := a.cube
	if !faces.IsSingleTile() {
		if c.multistitcher == nil {
			return fmt.Errorf("%w: tiled cube and no multistitcher configured", ErrStitchFailure)
		}
		faces, err = c.multistitcher.Multistitch(ctx, a.cube)
		if err != nil {
			return fmt.Errorf("%w: multistitch: %w", ErrStitchFailure, err)
		}
	}

	art, err := c.projector.CubemapToEquirectangular(ctx, faces, rot)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStitchFailure, err)
	}
	res.Artifact = art

	if c.store != nil {
		rec, err := c.store.SaveFile(ctx, conv.ID, art.Name, art.Data, art.MIMEType)
		if err != nil {
			return fmt.Errorf("failed to store result: %w", err)
		}
		res.File = rec
		report.Result = rec
	}
	return nil
}

func fillReport(r *model.AcquisitionReport, a *acquisition) {
	r.Strategy = a.match.Strategy.String()
	r.Confidence = a.match.Confidence.String()
	if a.match.Strategy == classify.StrategySixFace {
		r.Naming = a.match.Naming.String()
	}
	if a.schema != nil {
		r.Template = a.schema.Template()
	}
	r.MaxZoom = a.zoom
	r.Probes = a.probes
	r.SeedTile = a.seed
	if a.cube != nil {
		r.SetFaces(a.cube)
	}
}
