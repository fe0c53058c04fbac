package project

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/lock"
)

func TestLoadConfigMissingProject(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	if !errors.Is(err, errors.ErrProjectNotFound) {
		t.Errorf("err = %v, want ErrProjectNotFound", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		MaxArchive:        25,
		PreferredSuffixes: [][]string{{"pdf", "epub"}, {"txt"}},
	}
	if err := WriteConfig(dir, cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, lock.ConfigFileName), []byte(""), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxArchive != DefaultMaxArchive {
		t.Errorf("MaxArchive = %d, want default %d", cfg.MaxArchive, DefaultMaxArchive)
	}
}

func TestInitCreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "deep", "project")
	if err := Init(root, DefaultProjectConfig(), InitOptions{}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, lock.ConfigFileName)); err != nil {
		t.Errorf("config file should exist: %v", err)
	}
}

func TestInitRefusesExistingProject(t *testing.T) {
	root := t.TempDir()
	if err := Init(root, DefaultProjectConfig(), InitOptions{}); err != nil {
		t.Fatalf("first Init: %v", err)
	}

	err := Init(root, DefaultProjectConfig(), InitOptions{})
	if !errors.Is(err, errors.ErrProjectExists) {
		t.Errorf("second Init = %v, want ErrProjectExists", err)
	}

	if err := Init(root, Config{MaxArchive: 5}, InitOptions{Force: true}); err != nil {
		t.Fatalf("forced Init: %v", err)
	}
	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxArchive != 5 {
		t.Errorf("forced Init should rewrite the config, MaxArchive = %d", cfg.MaxArchive)
	}
}

func TestInitClearRemovesLeftovers(t *testing.T) {
	root := t.TempDir()
	leftovers := []string{lock.RecordFileName, EntriesFileName, ArchiveFileName}
	for _, name := range leftovers {
		if err := os.WriteFile(filepath.Join(root, name), []byte("stale"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := Init(root, DefaultProjectConfig(), InitOptions{Clear: true}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, name := range leftovers {
		if _, err := os.Stat(filepath.Join(root, name)); !os.IsNotExist(err) {
			t.Errorf("%s should have been cleared", name)
		}
	}
}

func TestInitKeepsLeftoversByDefault(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, EntriesFileName)
	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := Init(root, DefaultProjectConfig(), InitOptions{}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("entries file should survive Init without Clear: %v", err)
	}
}

func TestInitRejectsNonDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Init(file, DefaultProjectConfig(), InitOptions{}); err == nil {
		t.Error("Init on a regular file should fail")
	}
}

func TestParseSuffixLayers(t *testing.T) {
	tests := []struct {
		in   string
		want [][]string
	}{
		{"", nil},
		{"pdf", [][]string{{"pdf"}}},
		{"pdf|epub,txt", [][]string{{"pdf", "epub"}, {"txt"}}},
		{" pdf | epub , txt ", [][]string{{"pdf", "epub"}, {"txt"}}},
		{",,|", nil},
	}
	for _, tt := range tests {
		if got := ParseSuffixLayers(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseSuffixLayers(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
