package probe

import (
	"context"
	"fmt"

	"github.com/nao1215/cubegrab/internal/schema"
)

// MaxZoom returns the highest zoom level at which tile (0, 0, 0) exists.
//
// Levels are probed one by one starting above 0, and the first absent level
// ends the search. Level 0 is assumed to exist. Probing stops at the zoom
// cap even if higher levels are still available.
func (p *Prober) MaxZoom(ctx context.Context, s *schema.Schema) (int, error) {
	level := 0
	for {
		if level >= p.maxZoom {
			p.logger.Warn("zoom cap reached", "cap", p.maxZoom, "template", s.Template())
			return level, nil
		}

		next := level + 1
		resp, err := p.fetcher.Fetch(ctx, s.Render(0, next, 0, 0))
		if err != nil {
			return 0, fmt.Errorf("failed to probe zoom level %d: %w", next, err)
		}
		if !resp.Found() {
			p.logger.Debug("zoom level unavailable", "zoom", next, "status", resp.StatusCode)
			return level, nil
		}

		p.logger.Debug("zoom level available", "zoom", next)
		level = next
	}
}
