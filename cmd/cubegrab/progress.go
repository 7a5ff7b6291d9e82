package main

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/nao1215/cubegrab/internal/model"
)

// tileProgress shows a spinner with the number of downloaded tiles. The
// total is unknown until probing ends, so no percentage is shown.
type tileProgress struct {
	bar   *progressbar.ProgressBar
	tiles atomic.Int64
	bytes atomic.Int64
}

// newTileProgress returns nil unless w is a terminal and verbose logging
// is off; debug lines would tear the bar apart.
func newTileProgress(w io.Writer, verbose bool) *tileProgress {
	if verbose || !isTerminal(w) {
		return nil
	}
	return &tileProgress{
		bar: progressbar.NewOptions64(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("downloading tiles"),
			progressbar.OptionSetItsString("tiles"),
			progressbar.OptionShowIts(),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// tile is the acquisition tile hook. It is called from many goroutines.
func (p *tileProgress) tile(t *model.Tile) {
	if p == nil {
		return
	}
	p.tiles.Add(1)
	p.bytes.Add(int64(len(t.Data)))
	_ = p.bar.Add(1) //nolint:errcheck // progress output is best effort
}

// finish clears the bar and returns the totals.
func (p *tileProgress) finish() (tiles, bytes int64) {
	if p == nil {
		return 0, 0
	}
	_ = p.bar.Finish() //nolint:errcheck // progress output is best effort
	return p.tiles.Load(), p.bytes.Load()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
