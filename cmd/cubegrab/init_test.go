package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/cubegrab/internal/config"
)

func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()
	if cmd.Use != "init" {
		t.Errorf("expected use 'init', got %q", cmd.Use)
	}

	output := cmd.Flags().Lookup("output")
	if output == nil {
		t.Fatal("expected output flag")
	}
	if output.Shorthand != "o" || output.DefValue != config.DefaultConfigFile {
		t.Errorf("unexpected output flag: -%s default %q", output.Shorthand, output.DefValue)
	}

	force := cmd.Flags().Lookup("force")
	if force == nil {
		t.Fatal("expected force flag")
	}
	if force.Shorthand != "f" || force.DefValue != "false" {
		t.Errorf("unexpected force flag: -%s default %q", force.Shorthand, force.DefValue)
	}
}

func runInit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewInitCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", ".cubegrab")
		out, err := runInit(t, "-o", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, path) {
			t.Errorf("expected output to name %s, got %q", path, out)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected config file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("expected mode 0600, got %o", perm)
		}

		cf, err := config.LoadConfigFile(path)
		if err != nil {
			t.Fatalf("template does not load: %v", err)
		}
		if cf.Stitch.Quality != config.DefaultQuality {
			t.Errorf("expected template quality %d, got %d", config.DefaultQuality, cf.Stitch.Quality)
		}
		if len(cf.Hosts) != 0 || len(cf.Stitch.Command) != 0 {
			t.Error("expected examples in the template to be commented out")
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".cubegrab")
		if err := os.WriteFile(path, []byte("existing"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := runInit(t, "-o", path); err == nil {
			t.Fatal("expected an error for an existing file")
		}
		data, err := os.ReadFile(path) //nolint:gosec // test file
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "existing" {
			t.Error("existing file was modified")
		}
	})

	t.Run("force overwrites", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".cubegrab")
		if err := os.WriteFile(path, []byte("existing"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := runInit(t, "-o", path, "-f"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(path) //nolint:gosec // test file
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "cubegrab configuration file") {
			t.Error("expected template content")
		}
	})
}
