package stitch

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders for tiles.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/nao1215/cubegrab/internal/model"
)

const defaultQuality = 90

func decodeTile(t *model.Tile) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(t.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t.URL, err)
	}
	return img, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// faceImages decodes the single image of every face in stitcher order.
func faceImages(cube *model.CubeSet) ([model.FaceCount]image.Image, error) {
	var imgs [model.FaceCount]image.Image
	if !cube.IsSingleTile() {
		return imgs, ErrNotStitched
	}
	for _, f := range model.AllFaces() {
		img, err := decodeTile(cube.Face(f).At(0, 0))
		if err != nil {
			return imgs, fmt.Errorf("face %s: %w", f, err)
		}
		imgs[f] = img
	}
	return imgs, nil
}
