package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/cubegrab/internal/model"
	"github.com/nao1215/cubegrab/internal/store"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "cubegrab"

	// DefaultTimeout bounds a single tile request attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is how often a transient failure is retried.
	DefaultRetries = 3

	// DefaultBackoff is the first retry delay; it doubles up to DefaultMaxBackoff.
	DefaultBackoff    = 500 * time.Millisecond
	DefaultMaxBackoff = 10 * time.Second

	// DefaultFaceWorkers lets all six faces probe at once.
	DefaultFaceWorkers = model.FaceCount

	// DefaultColumnWindow is the number of columns probed concurrently per row.
	DefaultColumnWindow = 4

	// DefaultMaxExtent caps rows and columns per face.
	DefaultMaxExtent = 1024

	// DefaultMaxZoom caps zoom probing.
	DefaultMaxZoom = 32

	// DefaultMaxTileSize limits a single tile body.
	DefaultMaxTileSize = 32 << 20 // 32MiB

	// DefaultQuality is the JPEG quality of stitched images.
	DefaultQuality = 90

	// DefaultBatchSize is the number of URLs acquired concurrently.
	DefaultBatchSize = 4

	// DefaultStoreBackend is the persistence backend.
	DefaultStoreBackend = store.BackendSQLite

	// DefaultUserAgent identifies cubegrab in HTTP requests.
	DefaultUserAgent = "cubegrab/1.0 (+https://github.com/nao1215/cubegrab)"

	// DefaultTorStartupTimeout bounds the embedded Tor bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds all options of a cubegrab run. It is built from CLI flags
// and the optional config file, then passed down explicitly.
type Config struct {
	// URLs are the tile URLs to acquire.
	URLs []string

	// Timeout bounds each request attempt.
	Timeout time.Duration

	// Retries is the number of retries after a transient failure.
	Retries int

	// Backoff and MaxBackoff control the delay between retries.
	Backoff    time.Duration
	MaxBackoff time.Duration

	// FaceWorkers is the number of faces probed concurrently.
	FaceWorkers int

	// ColumnWindow is the number of columns fetched concurrently within a row.
	ColumnWindow int

	// MaxExtent caps the rows and columns of a face.
	MaxExtent int

	// MaxZoom caps zoom probing.
	MaxZoom int

	// MaxTileSize is the largest tile body accepted, in bytes.
	MaxTileSize int64

	// UserAgent is sent with every request unless a host entry overrides it.
	UserAgent string

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes requests through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// Rotation is yaw,pitch,roll in degrees. Empty means no rotation.
	Rotation []float64

	// Quality is the JPEG quality of stitched output.
	Quality int

	// Width of the equirectangular output; 0 derives it from the face size.
	Width int

	// StitchCommand runs an external projector instead of the built-in one.
	StitchCommand []string

	// BatchSize is the number of URLs acquired concurrently.
	BatchSize int

	// Output is the result file (one URL) or directory (several URLs).
	Output string

	// StoreBackend is "sqlite" or "bbolt".
	StoreBackend string

	// DBDir is the store directory.
	DBDir string

	// SaveToDB persists tiles, results and reports.
	SaveToDB bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the report format. Plain text
	// is used when neither is set.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string

	// File is the loaded config file. Never nil after NewConfig.
	File *File
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		Retries:           DefaultRetries,
		Backoff:           DefaultBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		FaceWorkers:       DefaultFaceWorkers,
		ColumnWindow:      DefaultColumnWindow,
		MaxExtent:         DefaultMaxExtent,
		MaxZoom:           DefaultMaxZoom,
		MaxTileSize:       DefaultMaxTileSize,
		UserAgent:         DefaultUserAgent,
		TorStartupTimeout: DefaultTorStartupTimeout,
		Quality:           DefaultQuality,
		BatchSize:         DefaultBatchSize,
		StoreBackend:      DefaultStoreBackend,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
		File:              NewFile(),
	}
}

// XDGDataDir returns the XDG data directory for cubegrab.
// On Linux: ~/.local/share/cubegrab
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for cubegrab.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// RotationValue returns the configured rotation and whether one was set.
func (c *Config) RotationValue() (model.Rotation, bool) {
	if len(c.Rotation) != 3 {
		return model.Rotation{}, false
	}
	return model.Rotation{c.Rotation[0], c.Rotation[1], c.Rotation[2]}, true
}

// ApplyFile copies stitch settings from the config file into fields the
// command line left at their defaults.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f
	if len(c.StitchCommand) == 0 && len(f.Stitch.Command) > 0 {
		c.StitchCommand = f.Stitch.Command
	}
	if c.Quality == DefaultQuality && f.Stitch.Quality > 0 {
		c.Quality = f.Stitch.Quality
	}
	if c.Width == 0 && f.Stitch.Width > 0 {
		c.Width = f.Stitch.Width
	}
}

// Validate returns the first invalid setting found.
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return ErrNoURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Retries < 0 {
		return ErrInvalidRetries
	}
	if c.Backoff <= 0 || c.MaxBackoff < c.Backoff {
		return ErrInvalidBackoff
	}
	if c.FaceWorkers <= 0 || c.ColumnWindow <= 0 {
		return ErrInvalidWorkers
	}
	if c.MaxExtent <= 0 || c.MaxZoom <= 0 {
		return ErrInvalidLimit
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxTileSize <= 0 {
		return ErrInvalidMaxTileSize
	}
	if c.Quality < 1 || c.Quality > 100 {
		return ErrInvalidQuality
	}
	if len(c.Rotation) != 0 && len(c.Rotation) != 3 {
		return ErrInvalidRotation
	}
	if c.StoreBackend != store.BackendSQLite && c.StoreBackend != store.BackendBolt {
		return ErrUnknownStore
	}
	if c.ProxyAddress != "" && c.UseTor {
		return ErrConflictingProxy
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
