package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/cubegrab/internal/acquire"
	"github.com/nao1215/cubegrab/internal/config"
	"github.com/nao1215/cubegrab/internal/model"
)

// panoServer serves a tile pyramid under /pano{face}/{zoom}/{row}_{col}.jpg
// whose highest level is maxZoom with rows x cols tiles per face, and a
// six-face panorama under /six_{letter}.jpg. Every image is an 8x8 PNG.
type panoServer struct {
	*httptest.Server

	mu       sync.Mutex
	referers map[string]int
}

func newPanoServer(t *testing.T, maxZoom, rows, cols int) *panoServer {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode tile: %v", err)
	}
	tile := buf.Bytes()

	ps := &panoServer{referers: make(map[string]int)}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.referers[r.Header.Get("Referer")]++
		ps.mu.Unlock()

		serve := func() {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(tile)
		}

		var letter string
		if _, err := fmt.Sscanf(r.URL.Path, "/six_%1s.jpg", &letter); err == nil && strings.Contains("frblud", letter) {
			serve()
			return
		}

		var face, zoom, row, col int
		if _, err := fmt.Sscanf(r.URL.Path, "/pano%d/%d/%d_%d.jpg", &face, &zoom, &row, &col); err != nil {
			http.NotFound(w, r)
			return
		}
		found := zoom == maxZoom && row < rows && col < cols
		if zoom < maxZoom {
			found = row == 0 && col == 0
		}
		if !found {
			http.NotFound(w, r)
			return
		}
		serve()
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *panoServer) referer(value string) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.referers[value]
}

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cubegrab.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func runRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewGrabCmd(t *testing.T) {
	t.Parallel()

	cmd := NewGrabCmd()
	if cmd.Use != "grab <tile-url>..." {
		t.Errorf("unexpected use %q", cmd.Use)
	}

	for _, name := range []string{
		"timeout", "retries", "backoff", "proxy", "tor", "tor-timeout", "user-agent",
		"workers", "window", "max-extent", "max-zoom", "batch",
		"rotation", "quality", "width", "stitch-command", "output",
		"store", "db-dir", "no-db", "config", "json", "markdown", "report-file",
	} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag --%s", name)
		}
	}

	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("expected an error without URLs")
	}
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags are applied", func(t *testing.T) {
		t.Parallel()

		cmd := NewGrabCmd()
		cfgPath := writeConfig(t, "stitch:\n  quality: 70\n  width: 512\n")
		if err := cmd.ParseFlags([]string{
			"--config", cfgPath,
			"--retries", "5",
			"--window", "2",
			"--rotation", "90,10,0",
			"--store", "bbolt",
			"--no-db",
			"--json",
		}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"http://x/pano0/1/0_0.jpg"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Retries != 5 || cfg.ColumnWindow != 2 {
			t.Errorf("retries/window = %d/%d", cfg.Retries, cfg.ColumnWindow)
		}
		rot, ok := cfg.RotationValue()
		if !ok || rot != (model.Rotation{90, 10, 0}) {
			t.Errorf("rotation = %v, %v", rot, ok)
		}
		if cfg.StoreBackend != "bbolt" || cfg.SaveToDB {
			t.Errorf("store = %q, saveToDB = %v", cfg.StoreBackend, cfg.SaveToDB)
		}
		if !cfg.JSONReport {
			t.Error("expected JSON report")
		}
		if cfg.Quality != 70 || cfg.Width != 512 {
			t.Errorf("stitch settings from file not applied: quality=%d width=%d", cfg.Quality, cfg.Width)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})

	t.Run("explicit quality wins over the file", func(t *testing.T) {
		t.Parallel()

		cmd := NewGrabCmd()
		cfgPath := writeConfig(t, "stitch:\n  quality: 70\n")
		if err := cmd.ParseFlags([]string{"--config", cfgPath, "--quality", "90"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildConfig(cmd, []string{"http://x/pano_f.jpg"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Quality != 90 {
			t.Errorf("quality = %d, want 90", cfg.Quality)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewGrabCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		_, err := buildConfig(cmd, []string{"http://x/pano_f.jpg"})
		if err == nil || !strings.Contains(err.Error(), missing) {
			t.Errorf("expected not found error naming %s, got %v", missing, err)
		}
	})
}

func TestGrab_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad rotation", []string{"--rotation", "1,2"}, "rotation"},
		{"proxy and tor", []string{"--proxy", "127.0.0.1:9050", "--tor"}, "proxy"},
		{"json and markdown", []string{"--json", "--markdown"}, "report"},
		{"unknown store", []string{"--store", "redis"}, "store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"grab", "--no-db", "--config", writeConfig(t, "")}, tt.args...)
			args = append(args, "http://x/pano_f.jpg")
			_, _, err := runRoot(t, args...)
			if err == nil {
				t.Fatal("expected a configuration error")
			}
			if !strings.Contains(err.Error(), "configuration error") || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGrab_EndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("pyramid panorama to file", func(t *testing.T) {
		t.Parallel()

		ps := newPanoServer(t, 1, 2, 2)
		out := filepath.Join(t.TempDir(), "pano.jpg")
		cfgPath := writeConfig(t, "defaults:\n  referer: \"http://viewer.test/\"\n")

		stdout, stderr, err := runRoot(t, "grab",
			"--no-db", "--config", cfgPath, "--retries", "0", "--json",
			"-o", out, ps.URL+"/pano0/1/0_0.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
		}

		f, err := os.Open(out) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("panorama not written: %v", err)
		}
		defer f.Close()
		img, err := jpeg.Decode(f)
		if err != nil {
			t.Fatalf("panorama is not a JPEG: %v", err)
		}
		// Faces are 2x2 tiles of 8px.
		if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
			t.Errorf("panorama size = %dx%d, want 64x32", b.Dx(), b.Dy())
		}

		var rep model.AcquisitionReport
		if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
			t.Fatalf("report is not JSON: %v\n%s", err, stdout)
		}
		if rep.Strategy != "pyramid" || rep.MaxZoom != 1 || rep.Tiles != 24 {
			t.Errorf("strategy=%q maxZoom=%d tiles=%d", rep.Strategy, rep.MaxZoom, rep.Tiles)
		}
		if !rep.Succeeded() {
			t.Errorf("report has error %q", rep.Error)
		}
		if ps.referer("http://viewer.test/") == 0 {
			t.Error("configured referer was not sent")
		}
	})

	t.Run("six-face panorama is stored and listed", func(t *testing.T) {
		t.Parallel()

		ps := newPanoServer(t, 0, 0, 0)
		outDir := t.TempDir()
		dbDir := t.TempDir()
		url := ps.URL + "/six_f.jpg"

		_, stderr, err := runRoot(t, "grab",
			"--store", "bbolt", "--db-dir", dbDir, "--config", writeConfig(t, ""),
			"--rotation", "45,0,0", "-o", outDir+string(os.PathSeparator), url)
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
		}

		entries, err := os.ReadDir(outDir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "equirectangular.jpg") {
			t.Errorf("unexpected output files: %v", entries)
		}

		stdout, _, err := runRoot(t, "history", "--store", "bbolt", "--db-dir", dbDir, "--json", url)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		var reports []model.AcquisitionReport
		if err := json.Unmarshal([]byte(stdout), &reports); err != nil {
			t.Fatalf("history is not JSON: %v\n%s", err, stdout)
		}
		if len(reports) != 1 {
			t.Fatalf("expected 1 report, got %d", len(reports))
		}
		if reports[0].Strategy != "six-face" || reports[0].Tiles != model.FaceCount {
			t.Errorf("strategy=%q tiles=%d", reports[0].Strategy, reports[0].Tiles)
		}
		if reports[0].Rotation != (model.Rotation{45, 0, 0}) {
			t.Errorf("rotation = %v", reports[0].Rotation)
		}
		if reports[0].Result == nil {
			t.Error("expected the stored panorama in the report")
		}
	})

	t.Run("failed url fails the command", func(t *testing.T) {
		t.Parallel()

		ps := newPanoServer(t, 1, 1, 1)
		_, stderr, err := runRoot(t, "grab",
			"--no-db", "--config", writeConfig(t, ""), "--retries", "0",
			"-o", t.TempDir(), ps.URL+"/pano0/1/0_0.jpg", ps.URL+"/missing/9/0_0.jpg")
		if err == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(err.Error(), "1 of 2") {
			t.Errorf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr, "missing/9/0_0.jpg") {
			t.Errorf("failure not reported on stderr: %s", stderr)
		}
	})
}

func okResult() *acquire.Result {
	return &acquire.Result{
		Report:   &model.AcquisitionReport{ConversionID: "conv", URL: "http://x/pano_f.jpg"},
		Artifact: &model.Artifact{Name: "equirectangular.jpg", Data: []byte("pano"), MIMEType: "image/jpeg"},
	}
}

func TestNewOutputStep(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res := okResult()

	tests := []struct {
		name   string
		output string
		urls   int
		want   string
	}{
		{"file for one url", filepath.Join(dir, "pano.jpg"), 1, filepath.Join(dir, "pano.jpg")},
		{"existing directory", dir, 1, filepath.Join(dir, "conv-equirectangular.jpg")},
		{"directory for many", filepath.Join(dir, "out"), 2, filepath.Join(dir, "out", "conv-equirectangular.jpg")},
		{"current directory by default", "", 1, "conv-equirectangular.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.NewConfig()
			cfg.Output = tt.output
			cfg.URLs = make([]string, tt.urls)
			if got := newOutputStep(cfg).Path(res); got != tt.want {
				t.Errorf("path = %q, want %q", got, tt.want)
			}
		})
	}
}
