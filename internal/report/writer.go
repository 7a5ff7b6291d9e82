package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/cubegrab/internal/model"
)

// Writer writes an acquisition report in one format.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.AcquisitionReport) (int, error)
}

// MultiWriter writes to multiple Writers, e.g. terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all Writers and stops at the first error.
func (m *MultiWriter) Write(report *model.AcquisitionReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var titleCaser = cases.Title(language.English)

// faceTitle turns "front" into "Front".
func faceTitle(face string) string {
	return titleCaser.String(face)
}

// status returns a one-word outcome.
func status(r *model.AcquisitionReport) string {
	if r.Succeeded() {
		return "complete"
	}
	return "failed"
}

// formatBytes renders n with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// columns renders per-row column counts, collapsing a uniform grid to "RxC".
func columns(s model.FaceSummary) string {
	if s.Rows == 0 {
		return "-"
	}
	uniform := true
	for _, c := range s.ColCounts {
		if c != s.ColCounts[0] {
			uniform = false
			break
		}
	}
	if uniform {
		return fmt.Sprintf("%dx%d", s.Rows, s.ColCounts[0])
	}
	parts := make([]string, len(s.ColCounts))
	for i, c := range s.ColCounts {
		parts[i] = fmt.Sprint(c)
	}
	return fmt.Sprintf("%d rows [%s]", s.Rows, strings.Join(parts, " "))
}
