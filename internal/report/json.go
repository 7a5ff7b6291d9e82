package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/cubegrab/internal/model"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one report as a JSON object.
func (w *JSONWriter) Write(report *model.AcquisitionReport) (int, error) {
	return w.writeJSON(report)
}

// WriteAll outputs reports as one JSON array.
func (w *JSONWriter) WriteAll(reports []*model.AcquisitionReport) (int, error) {
	if reports == nil {
		reports = []*model.AcquisitionReport{}
	}
	return w.writeJSON(reports)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent != "" {
		data, err = json.MarshalIndent(v, "", w.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
