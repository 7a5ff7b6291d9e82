package sixface

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/cubegrab/internal/fetch"
	"github.com/nao1215/cubegrab/internal/model"
)

func TestDeriveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		seed   string
		symbol byte
		want   string
	}{
		{name: "letter", seed: "http://x/pano_f.jpg", symbol: 'r', want: "http://x/pano_r.jpg"},
		{name: "digit", seed: "http://x/pano/0.jpg", symbol: '5', want: "http://x/pano/5.jpg"},
		{name: "query is kept", seed: "http://x/a/tile_u.jpg?sig=f.jpg", symbol: 'd', want: "http://x/a/tile_d.jpg?sig=f.jpg"},
		{name: "other extension", seed: "http://x/cube_l.png", symbol: 'b', want: "http://x/cube_b.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DeriveURL(tt.seed, tt.symbol)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DeriveURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Derived URLs differ from the seed only at the symbol position.
func TestDeriveURL_OnlySymbolChanges(t *testing.T) {
	t.Parallel()

	seed := "http://example.com/tours/tile_f.jpg"
	pos := strings.LastIndex(seed, "f.jpg")
	for _, symbol := range []byte("rblud") {
		got, err := DeriveURL(seed, symbol)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(seed) {
			t.Fatalf("length changed: %q", got)
		}
		for i := range seed {
			if i == pos {
				if got[i] != symbol {
					t.Errorf("symbol position has %q, want %q", got[i], symbol)
				}
				continue
			}
			if got[i] != seed[i] {
				t.Errorf("%q differs from seed at %d", got, i)
			}
		}
	}
}

func TestDeriveURL_Errors(t *testing.T) {
	t.Parallel()

	for _, seed := range []string{"http://x/pano", "http://x/.jpg", ""} {
		if _, err := DeriveURL(seed, 'f'); !errors.Is(err, ErrNotFaceURL) {
			t.Errorf("DeriveURL(%q) error = %v, want ErrNotFaceURL", seed, err)
		}
	}
}

func newFaceServer(t *testing.T, missing string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if missing != "" && strings.HasSuffix(r.URL.Path, missing) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestDownloader_Download(t *testing.T) {
	t.Parallel()

	t.Run("letters land in their faces without probing", func(t *testing.T) {
		t.Parallel()

		server, hits := newFaceServer(t, "")
		cube, err := New(fetch.NewHTTPFetcher(server.Client())).
			Download(context.Background(), server.URL+"/pano_f.jpg", model.FaceNamingLetters)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hits.Load() != 6 {
			t.Errorf("expected 6 requests, got %d", hits.Load())
		}
		if !cube.IsSingleTile() || cube.Mode != model.CubeModeSixFace {
			t.Fatalf("expected six single tiles, got %+v", cube)
		}

		want := map[model.Face]string{
			model.FaceBack:   "/pano_b.jpg",
			model.FaceRight:  "/pano_r.jpg",
			model.FaceFront:  "/pano_f.jpg",
			model.FaceLeft:   "/pano_l.jpg",
			model.FaceTop:    "/pano_u.jpg",
			model.FaceBottom: "/pano_d.jpg",
		}
		for face, path := range want {
			tile := cube.Face(face).At(0, 0)
			if string(tile.Data) != path {
				t.Errorf("face %s has %q, want %q", face, tile.Data, path)
			}
			if tile.Name() != string(face.Letter())+".jpg" {
				t.Errorf("face %s tile name %q", face, tile.Name())
			}
		}
	})

	t.Run("digits land positionally", func(t *testing.T) {
		t.Parallel()

		server, _ := newFaceServer(t, "")
		cube, err := New(fetch.NewHTTPFetcher(server.Client())).
			Download(context.Background(), server.URL+"/pano/3.jpg", model.FaceNamingDigits)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, face := range model.AllFaces() {
			tile := cube.Face(face).At(0, 0)
			if tile.Symbol != byte('0'+i) {
				t.Errorf("slot %d has symbol %q", i, tile.Symbol)
			}
		}
	})

	t.Run("missing face fails fast", func(t *testing.T) {
		t.Parallel()

		server, _ := newFaceServer(t, "_u.jpg")
		cube, err := New(fetch.NewHTTPFetcher(server.Client())).
			Download(context.Background(), server.URL+"/pano_f.jpg", model.FaceNamingLetters)
		if !errors.Is(err, ErrFaceMissing) {
			t.Fatalf("expected ErrFaceMissing, got %v", err)
		}
		if cube != nil {
			t.Error("expected no cube")
		}
	})

	t.Run("seed symbol outside naming is rejected", func(t *testing.T) {
		t.Parallel()

		f := fetch.NewCounter(fetch.FetcherFunc(func(context.Context, string) (*fetch.Response, error) {
			t.Error("no fetch expected")
			return nil, errors.New("unexpected")
		}))
		_, err := New(f).Download(context.Background(), "http://x/pano_f.jpg", model.FaceNamingDigits)
		if !errors.Is(err, ErrNotFaceURL) {
			t.Fatalf("expected ErrNotFaceURL, got %v", err)
		}
		if f.Count() != 0 {
			t.Errorf("expected no fetches, got %d", f.Count())
		}
	})
}
