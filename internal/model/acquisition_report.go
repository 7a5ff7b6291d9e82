package model

import "time"

// FaceSummary describes the extent discovered for one face.
type FaceSummary struct {
	Face      string `json:"face"`
	Rows      int    `json:"rows"`
	ColCounts []int  `json:"col_counts"`
	Tiles     int    `json:"tiles"`
}

// TileInfo describes the seed tile of an acquisition.
type TileInfo struct {
	MIMEType string            `json:"mime_type"`
	Width    int               `json:"width,omitempty"`
	Height   int               `json:"height,omitempty"`
	Exif     map[string]string `json:"exif,omitempty"`
}

// AcquisitionReport is the summary recorded for every processed conversion.
type AcquisitionReport struct {
	// === Request ===

	ConversionID string    `json:"conversion_id"`
	URL          string    `json:"url"`
	StartedAt    time.Time `json:"started_at"`
	Duration     Duration  `json:"duration"`

	// === Classification ===

	Strategy   string `json:"strategy"`
	Confidence string `json:"confidence"`
	Naming     string `json:"naming,omitempty"`

	// === Discovery ===

	// Template is the normalized URL schema (pyramid only).
	Template string        `json:"template,omitempty"`
	MaxZoom  int           `json:"max_zoom"`
	Faces    []FaceSummary `json:"faces,omitempty"`

	// === Transfer ===

	Tiles int   `json:"tiles"`
	Bytes int64 `json:"bytes"`

	// Probes counts every logical fetch issued, including absent ones. Retries are not counted.
	Probes int64 `json:"probes"`

	SeedTile *TileInfo `json:"seed_tile,omitempty"`

	// === Outcome ===

	Rotation Rotation    `json:"rotation"`
	Result   *FileRecord `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Succeeded reports whether the conversion produced a result without error.
func (r *AcquisitionReport) Succeeded() bool {
	return r.Error == ""
}

// SetFaces fills Faces from a cube set.
func (r *AcquisitionReport) SetFaces(cube *CubeSet) {
	r.Faces = r.Faces[:0]
	for _, f := range AllFaces() {
		g := cube.Face(f)
		r.Faces = append(r.Faces, FaceSummary{
			Face:      f.String(),
			Rows:      g.RowCount(),
			ColCounts: g.ColCounts(),
			Tiles:     g.TileCount(),
		})
	}
	r.Tiles = cube.TileCount()
	r.Bytes = cube.Bytes()
}

// Duration is a time.Duration that marshals to JSON as a string like "1.5s".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// String returns the duration formatted by time.Duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}
