package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/cubegrab/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs plain text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds the seed tile EXIF tags.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in plain text.
func (w *SimpleWriter) Write(report *model.AcquisitionReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeDiscovery(&sb, report)
	w.writeFaces(&sb, report)
	w.writeSeed(&sb, report)
	w.writeResult(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, r *model.AcquisitionReport) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                       CUBEGRAB ACQUISITION REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "URL:        %s\n", r.URL)
	fmt.Fprintf(sb, "Conversion: %s\n", r.ConversionID)
	fmt.Fprintf(sb, "Started:    %s\n", r.StartedAt.Format(time.DateTime+" MST"))
	fmt.Fprintf(sb, "Duration:   %s\n", time.Duration(r.Duration).Round(time.Millisecond))
	if r.Succeeded() {
		sb.WriteString("Status:     Complete\n")
	} else {
		fmt.Fprintf(sb, "Status:     ERROR - %s\n", r.Error)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDiscovery(sb *strings.Builder, r *model.AcquisitionReport) {
	section(sb, "DISCOVERY")

	fmt.Fprintf(sb, "  Strategy:   %s\n", r.Strategy)
	fmt.Fprintf(sb, "  Confidence: %s\n", r.Confidence)
	if r.Naming != "" {
		fmt.Fprintf(sb, "  Naming:     %s\n", r.Naming)
	}
	if r.Template != "" {
		fmt.Fprintf(sb, "  Template:   %s\n", r.Template)
		fmt.Fprintf(sb, "  Max zoom:   %d\n", r.MaxZoom)
	}
	fmt.Fprintf(sb, "  Probes:     %d\n", r.Probes)
	fmt.Fprintf(sb, "  Tiles:      %d (%s)\n", r.Tiles, formatBytes(r.Bytes))
	if !r.Rotation.IsZero() {
		fmt.Fprintf(sb, "  Rotation:   %s\n", r.Rotation)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFaces(sb *strings.Builder, r *model.AcquisitionReport) {
	if len(r.Faces) == 0 {
		return
	}
	section(sb, "FACES")
	for _, f := range r.Faces {
		fmt.Fprintf(sb, "  %-7s %-20s %d tiles\n", faceTitle(f.Face), columns(f), f.Tiles)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSeed(sb *strings.Builder, r *model.AcquisitionReport) {
	if r.SeedTile == nil {
		return
	}
	section(sb, "SEED TILE")
	fmt.Fprintf(sb, "  Type: %s\n", r.SeedTile.MIMEType)
	if r.SeedTile.Width > 0 {
		fmt.Fprintf(sb, "  Size: %dx%d\n", r.SeedTile.Width, r.SeedTile.Height)
	}
	if w.verbose && len(r.SeedTile.Exif) > 0 {
		tags := make([]string, 0, len(r.SeedTile.Exif))
		for tag := range r.SeedTile.Exif {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			fmt.Fprintf(sb, "  %s: %s\n", tag, r.SeedTile.Exif[tag])
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeResult(sb *strings.Builder, r *model.AcquisitionReport) {
	if r.Result != nil {
		section(sb, "RESULT")
		fmt.Fprintf(sb, "  [+] %s (%s, %s)\n", r.Result.Name, r.Result.MIMEType, formatBytes(r.Result.Size))
		fmt.Fprintf(sb, "      sha3-256 %s\n\n", r.Result.Digest)
	}
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
