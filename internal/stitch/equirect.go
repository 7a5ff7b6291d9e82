package stitch

import (
	"context"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/cubegrab/internal/model"
)

// Equirect projects six whole faces into an equirectangular panorama with
// nearest-neighbour sampling. The output is 4x the face width by 2x.
type Equirect struct {
	quality int
	width   int
}

// EquirectOption configures an Equirect projector.
type EquirectOption func(*Equirect)

// WithEquirectQuality sets the JPEG quality of the panorama.
func WithEquirectQuality(q int) EquirectOption {
	return func(e *Equirect) {
		if q > 0 && q <= 100 {
			e.quality = q
		}
	}
}

// WithWidth fixes the panorama width; the height is half of it.
func WithWidth(w int) EquirectOption {
	return func(e *Equirect) {
		if w > 1 {
			e.width = w &^ 1
		}
	}
}

// NewEquirect creates an in-process projector.
func NewEquirect(opts ...EquirectOption) *Equirect {
	e := &Equirect{quality: defaultQuality}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CubemapToEquirectangular implements the projector contract.
func (e *Equirect) CubemapToEquirectangular(ctx context.Context, cube *model.CubeSet, rot model.Rotation) (*model.Artifact, error) {
	faces, err := faceImages(cube)
	if err != nil {
		return nil, err
	}

	width := e.width
	if width == 0 {
		width = 4 * faces[model.FaceFront].Bounds().Dx()
	}
	height := width / 2
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	m := rotationMatrix(rot)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := range height {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lat := math.Pi/2 - (float64(y)+0.5)/float64(height)*math.Pi
			for x := range width {
				lon := (float64(x)+0.5)/float64(width)*2*math.Pi - math.Pi
				d := m.apply(vec3{
					math.Cos(lat) * math.Sin(lon),
					math.Sin(lat),
					math.Cos(lat) * math.Cos(lon),
				})
				face, u, v := cubeLookup(d)
				img := faces[face]
				b := img.Bounds()
				px := b.Min.X + clamp(int(u*float64(b.Dx())), b.Dx()-1)
				py := b.Min.Y + clamp(int(v*float64(b.Dy())), b.Dy()-1)
				out.Set(x, y, img.At(px, py))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data, err := encodeJPEG(out, e.quality)
	if err != nil {
		return nil, err
	}
	return &model.Artifact{Name: "equirectangular.jpg", Data: data, MIMEType: "image/jpeg"}, nil
}

type vec3 [3]float64

type mat3 [3][3]float64

func (m mat3) apply(v vec3) vec3 {
	var r vec3
	for i := range 3 {
		r[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return r
}

func (m mat3) mul(o mat3) mat3 {
	var r mat3
	for i := range 3 {
		for j := range 3 {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return r
}

// rotationMatrix applies yaw about the vertical axis, then pitch, then roll.
func rotationMatrix(rot model.Rotation) mat3 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	sy, cy := math.Sincos(rad(rot.Yaw()))
	sp, cp := math.Sincos(rad(rot.Pitch()))
	sr, cr := math.Sincos(rad(rot.Roll()))

	yaw := mat3{{cy, 0, sy}, {0, 1, 0}, {-sy, 0, cy}}
	pitch := mat3{{1, 0, 0}, {0, cp, -sp}, {0, sp, cp}}
	roll := mat3{{cr, -sr, 0}, {sr, cr, 0}, {0, 0, 1}}
	return roll.mul(pitch).mul(yaw)
}

// cubeLookup maps a view direction (x right, y up, z forward) to a face and
// texture coordinates in [0,1), u to the right and v downwards.
func cubeLookup(d vec3) (model.Face, float64, float64) {
	x, y, z := d[0], d[1], d[2]
	ax, ay, az := math.Abs(x), math.Abs(y), math.Abs(z)

	var face model.Face
	var u, v float64
	switch {
	case az >= ax && az >= ay && z > 0:
		face, u, v = model.FaceFront, x/az, -y/az
	case az >= ax && az >= ay:
		face, u, v = model.FaceBack, -x/az, -y/az
	case ax >= ay && x > 0:
		face, u, v = model.FaceRight, -z/ax, -y/ax
	case ax >= ay:
		face, u, v = model.FaceLeft, z/ax, -y/ax
	case y > 0:
		face, u, v = model.FaceTop, x/ay, z/ay
	default:
		face, u, v = model.FaceBottom, x/ay, -z/ay
	}
	return face, (u + 1) / 2, (v + 1) / 2
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
