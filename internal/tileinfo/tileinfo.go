package tileinfo

import (
	"bytes"
	"image"
	"mime"
	"net/http"
	"strings"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	exif "github.com/dsoprea/go-exif/v3"
	_ "golang.org/x/image/webp"

	"github.com/nao1215/cubegrab/internal/model"
)

// exifTags are the EXIF tags copied into TileInfo.
var exifTags = map[string]struct{}{
	"Make":             {},
	"Model":            {},
	"Software":         {},
	"DateTimeOriginal": {},
	"Artist":           {},
	"Copyright":        {},
	"GPSLatitude":      {},
	"GPSLatitudeRef":   {},
	"GPSLongitude":     {},
	"GPSLongitudeRef":  {},
	"GPSAltitude":      {},
}

// MIMEType returns the media type of a tile. An image Content-Type header
// wins; otherwise the bytes are sniffed.
func MIMEType(contentType string, data []byte) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mt, "image/") {
			return mt
		}
	}
	sniffed := http.DetectContentType(data)
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mt
	}
	return sniffed
}

// Inspect describes a tile. Missing dimensions or EXIF data are left empty;
// Inspect never fails.
func Inspect(contentType string, data []byte) *model.TileInfo {
	info := &model.TileInfo{MIMEType: MIMEType(contentType, data)}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		info.Width = cfg.Width
		info.Height = cfg.Height
	}

	info.Exif = Exif(data)
	return info
}

// Exif returns the selected EXIF tags found in data, or nil.
func Exif(data []byte) map[string]string {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil || raw == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return nil
	}

	var tags map[string]string
	for _, entry := range entries {
		if _, ok := exifTags[entry.TagName]; !ok {
			continue
		}
		if tags == nil {
			tags = make(map[string]string)
		}
		tags[entry.TagName] = entry.Formatted
	}
	return tags
}
