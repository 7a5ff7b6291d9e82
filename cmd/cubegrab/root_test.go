package main

import (
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "cubegrab" {
			t.Errorf("expected use 'cubegrab', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{"grab": false, "classify": false, "history": false, "init": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected subcommand %q", name)
			}
		}
	})
}

func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
		t.Fatal(err)
	}
	grab, _, err := root.Find([]string{"grab"})
	if err != nil {
		t.Fatal(err)
	}
	if !getVerboseFlag(grab) {
		t.Error("expected verbose to be inherited from the root command")
	}
	if getVerboseFlag(NewGrabCmd()) {
		t.Error("expected verbose to be false on a detached command")
	}
}
