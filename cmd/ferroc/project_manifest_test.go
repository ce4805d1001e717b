package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "ferro.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestFindFerroTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"demo\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	path, ok, err := findFerroToml(nested)
	if err != nil {
		t.Fatalf("findFerroToml failed: %v", err)
	}
	if !ok {
		t.Fatal("manifest not found from nested directory")
	}
	if filepath.Dir(path) != root {
		t.Fatalf("found wrong manifest: %s", path)
	}
}

func TestFindFerroTomlMissing(t *testing.T) {
	_, ok, err := findFerroToml(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("reported a manifest in an empty tree")
	}
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[package]\nname = \"demo\"\n\n[build]\nsrc = \"ir\"\nout = \"gen\"\n")

	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatalf("loadProjectConfig failed: %v", err)
	}
	if cfg.Package.Name != "demo" {
		t.Fatalf("wrong package name: %q", cfg.Package.Name)
	}
	if cfg.Build.Src != "ir" || cfg.Build.Out != "gen" {
		t.Fatalf("wrong build config: %+v", cfg.Build)
	}
}

func TestLoadProjectConfigRejectsMissingPackage(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[build]\nsrc = \"ir\"\n")
	if _, err := loadProjectConfig(path); err == nil {
		t.Fatal("missing [package] accepted")
	}
}

func TestLoadProjectConfigRejectsEmptyName(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[package]\nname = \"\"\n")
	if _, err := loadProjectConfig(path); err == nil {
		t.Fatal("empty package.name accepted")
	}
}
