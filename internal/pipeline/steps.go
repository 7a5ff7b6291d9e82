package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/cubegrab/internal/acquire"
	"github.com/nao1215/cubegrab/internal/report"
)

// OutputStep writes the panorama of a successful conversion to disk.
type OutputStep struct {
	path string
	dir  bool
}

// NewFileOutputStep writes the panorama to path. Use it for a single conversion.
func NewFileOutputStep(path string) *OutputStep {
	return &OutputStep{path: path}
}

// NewDirOutputStep writes each panorama into dir, named after its conversion.
func NewDirOutputStep(dir string) *OutputStep {
	return &OutputStep{path: dir, dir: true}
}

// Name returns the step name.
func (s *OutputStep) Name() string {
	return "output"
}

// Path returns where the panorama of res is written.
func (s *OutputStep) Path(res *acquire.Result) string {
	if !s.dir {
		return s.path
	}
	return filepath.Join(s.path, res.Report.ConversionID+"-"+res.Artifact.Name)
}

// Do writes the artifact. Failed conversions have none and are skipped.
func (s *OutputStep) Do(_ context.Context, res *acquire.Result) error {
	if res.Artifact == nil {
		return nil
	}

	path := s.Path(res)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, res.Artifact.Data, 0o600); err != nil {
		return fmt.Errorf("failed to write panorama: %w", err)
	}
	return nil
}

// ReportStep renders the report of every conversion, failed ones included.
// Writes are serialized so concurrent conversions do not interleave.
type ReportStep struct {
	mu     sync.Mutex
	writer report.Writer
}

// NewReportStep creates a step rendering reports with w.
func NewReportStep(w report.Writer) *ReportStep {
	return &ReportStep{writer: w}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do writes the report.
func (s *ReportStep) Do(_ context.Context, res *acquire.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.writer.Write(res.Report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// FuncStep adapts a function to a Step.
type FuncStep struct {
	name string
	fn   func(ctx context.Context, res *acquire.Result) error
}

// NewFuncStep creates a step named name that calls fn.
func NewFuncStep(name string, fn func(ctx context.Context, res *acquire.Result) error) *FuncStep {
	return &FuncStep{name: name, fn: fn}
}

// Name returns the step name.
func (s *FuncStep) Name() string {
	return s.name
}

// Do calls the function.
func (s *FuncStep) Do(ctx context.Context, res *acquire.Result) error {
	return s.fn(ctx, res)
}
