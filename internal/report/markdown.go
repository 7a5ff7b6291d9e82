package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/cubegrab/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AcquisitionReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeFaces(md, report)
	w.writeResult(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *model.AcquisitionReport) {
	md.H1("Cubemap Acquisition Report")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + r.URL + "`"},
		{"Conversion", "`" + r.ConversionID + "`"},
		{"Started", r.StartedAt.Format(time.DateTime + " MST")},
		{"Duration", time.Duration(r.Duration).Round(time.Millisecond).String()},
		{"Strategy", r.Strategy},
		{"Confidence", r.Confidence},
	}
	if r.Naming != "" {
		rows = append(rows, []string{"Face naming", r.Naming})
	}
	if r.Template != "" {
		rows = append(rows,
			[]string{"Template", "`" + r.Template + "`"},
			[]string{"Max zoom", strconv.Itoa(r.MaxZoom)},
		)
	}
	rows = append(rows,
		[]string{"Tiles", strconv.Itoa(r.Tiles)},
		[]string{"Downloaded", formatBytes(r.Bytes)},
		[]string{"Probes", strconv.FormatInt(r.Probes, 10)},
	)
	if !r.Rotation.IsZero() {
		rows = append(rows, []string{"Rotation", r.Rotation.String()})
	}

	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	if r.Succeeded() {
		md.Tip("Acquisition complete.")
	} else {
		md.Cautionf("Acquisition failed: %s", r.Error)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFaces(md *markdown.Markdown, r *model.AcquisitionReport) {
	if len(r.Faces) == 0 {
		return
	}

	md.H2("Faces")
	md.PlainText("")

	rows := make([][]string, len(r.Faces))
	for i, f := range r.Faces {
		rows[i] = []string{faceTitle(f.Face), columns(f), strconv.Itoa(f.Tiles)}
	}
	md.Table(markdown.TableSet{Header: []string{"Face", "Grid", "Tiles"}, Rows: rows})
	md.PlainText("")

	if r.Tiles > len(r.Faces) {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Tiles per face"),
			piechart.WithShowData(true),
		)
		for _, f := range r.Faces {
			if f.Tiles > 0 {
				chart.LabelAndIntValue(faceTitle(f.Face), uint64(f.Tiles))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeResult(md *markdown.Markdown, r *model.AcquisitionReport) {
	if r.SeedTile != nil {
		md.H2("Seed Tile")
		md.PlainText("")
		items := []string{"Type: " + r.SeedTile.MIMEType}
		if r.SeedTile.Width > 0 {
			items = append(items, "Size: "+strconv.Itoa(r.SeedTile.Width)+"x"+strconv.Itoa(r.SeedTile.Height))
		}
		for tag, value := range r.SeedTile.Exif {
			items = append(items, tag+": "+value)
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if r.Result != nil {
		md.H2("Result")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Type", "Size", "SHA3-256"},
			Rows: [][]string{{
				r.Result.Name,
				r.Result.MIMEType,
				formatBytes(r.Result.Size),
				"`" + r.Result.Digest + "`",
			}},
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [cubegrab](https://github.com/nao1215/cubegrab)*")
}
