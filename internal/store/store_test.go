package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/cubegrab/internal/model"
)

// openStores returns one store of every backend in fresh directories.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	stores := make(map[string]Store)
	for _, backend := range []string{BackendSQLite, BackendBolt} {
		s, err := Open(backend, t.TempDir())
		if err != nil {
			t.Fatalf("failed to open %s store: %v", backend, err)
		}
		t.Cleanup(func() { _ = s.Close() })
		stores[backend] = s
	}
	return stores
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("sqlite creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(BackendSQLite, dir)
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dir, SQLiteFileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
	})

	t.Run("bbolt creates database file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := Open(BackendBolt, dir)
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dir, BoltFileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
	})

	t.Run("sqlite without create fails on missing database", func(t *testing.T) {
		t.Parallel()

		_, err := OpenSQLite(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Parallel()

		if _, err := Open("postgres", t.TempDir()); !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("expected ErrUnknownBackend, got %v", err)
		}
	})
}

func TestStore_Files(t *testing.T) {
	t.Parallel()

	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			tile, err := s.SaveFile(ctx, "conv-1", "0_1_0_0.jpg", []byte("tile-a"), "image/jpeg")
			if err != nil {
				t.Fatalf("SaveFile() error = %v", err)
			}
			if tile.Digest != Digest([]byte("tile-a")) || tile.Size != 6 || tile.ID == 0 {
				t.Errorf("unexpected record: %+v", tile)
			}

			if _, err := s.SaveFile(ctx, "conv-1", "equirectangular.jpg", []byte("pano"), "image/jpeg"); err != nil {
				t.Fatal(err)
			}
			// Same bytes in another conversion share the blob.
			if _, err := s.SaveFile(ctx, "conv-2", "0_1_0_0.jpg", []byte("tile-a"), "image/jpeg"); err != nil {
				t.Fatal(err)
			}

			files, err := s.Files(ctx, "conv-1")
			if err != nil {
				t.Fatal(err)
			}
			if len(files) != 2 || files[0].Name != "0_1_0_0.jpg" || files[1].Name != "equirectangular.jpg" {
				t.Fatalf("Files() = %+v", files)
			}

			data, err := s.FileData(ctx, files[1].Digest)
			if err != nil || string(data) != "pano" {
				t.Errorf("FileData() = %q, %v", data, err)
			}

			if _, err := s.FileData(ctx, Digest([]byte("missing"))); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_SaveFileReplacesName(t *testing.T) {
	t.Parallel()

	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			first, err := s.SaveFile(ctx, "conv", "f.jpg", []byte("old"), "image/jpeg")
			if err != nil {
				t.Fatal(err)
			}
			second, err := s.SaveFile(ctx, "conv", "f.jpg", []byte("newer"), "image/png")
			if err != nil {
				t.Fatal(err)
			}
			if first.ID != second.ID {
				t.Errorf("IDs differ: %d vs %d", first.ID, second.ID)
			}

			files, err := s.Files(ctx, "conv")
			if err != nil {
				t.Fatal(err)
			}
			if len(files) != 1 || files[0].Size != 5 || files[0].MIMEType != "image/png" {
				t.Errorf("Files() = %+v", files)
			}
		})
	}
}

func TestStore_Reports(t *testing.T) {
	t.Parallel()

	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			reports := []*model.AcquisitionReport{
				{ConversionID: "a", URL: "http://x/pano_f.jpg", Strategy: "six-face", Tiles: 6},
				{ConversionID: "b", URL: "http://x/p0/1/0_0.jpg", Strategy: "pyramid", Error: "boom"},
				{ConversionID: "c", URL: "http://x/pano_f.jpg", Strategy: "six-face", Tiles: 6},
			}
			for _, r := range reports {
				if err := s.SaveReport(ctx, r); err != nil {
					t.Fatal(err)
				}
			}

			all, err := s.Reports(ctx, "", 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 3 || all[0].ConversionID != "c" || all[2].ConversionID != "a" {
				t.Errorf("Reports() order = %v", ids(all))
			}

			byURL, err := s.Reports(ctx, "http://x/pano_f.jpg", 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(byURL) != 2 {
				t.Errorf("Reports(url) = %v", ids(byURL))
			}

			limited, err := s.Reports(ctx, "", 1)
			if err != nil {
				t.Fatal(err)
			}
			if len(limited) != 1 || limited[0].ConversionID != "c" {
				t.Errorf("Reports(limit) = %v", ids(limited))
			}
		})
	}
}

func ids(reports []*model.AcquisitionReport) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ConversionID
	}
	return out
}

func TestDigest(t *testing.T) {
	t.Parallel()

	// SHA3-256 of the empty input.
	want := "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got := Digest(nil); got != want {
		t.Errorf("Digest(nil) = %s, want %s", got, want)
	}
}
