package tileinfo

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestMIMEType(t *testing.T) {
	t.Parallel()

	pngData := encodePNG(t, 2, 2)

	tests := []struct {
		name        string
		contentType string
		data        []byte
		want        string
	}{
		{name: "image header wins", contentType: "image/jpeg; charset=binary", data: pngData, want: "image/jpeg"},
		{name: "non image header is sniffed", contentType: "application/octet-stream", data: pngData, want: "image/png"},
		{name: "missing header is sniffed", contentType: "", data: encodeJPEG(t, 2, 2), want: "image/jpeg"},
		{name: "text stays text", contentType: "", data: []byte("not an image"), want: "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MIMEType(tt.contentType, tt.data); got != tt.want {
				t.Errorf("MIMEType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	t.Run("dimensions of a png", func(t *testing.T) {
		t.Parallel()

		info := Inspect("image/png", encodePNG(t, 7, 3))
		if info.Width != 7 || info.Height != 3 {
			t.Errorf("got %dx%d, want 7x3", info.Width, info.Height)
		}
		if info.MIMEType != "image/png" {
			t.Errorf("MIMEType = %q", info.MIMEType)
		}
		if info.Exif != nil {
			t.Errorf("expected no EXIF, got %v", info.Exif)
		}
	})

	t.Run("garbage does not fail", func(t *testing.T) {
		t.Parallel()

		info := Inspect("", []byte{0x00, 0x01, 0x02})
		if info.Width != 0 || info.Height != 0 {
			t.Errorf("expected zero dimensions, got %dx%d", info.Width, info.Height)
		}
	})
}
