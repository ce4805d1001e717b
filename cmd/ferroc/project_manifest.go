package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const noFerroTomlMessage = "no ferro.toml found\nplease specify the input explicitly, e.g.:\n  ferroc lower path/to/unit.mir"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageConfig `toml:"package"`
	Build   buildConfig   `toml:"build"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type buildConfig struct {
	// Src is the directory holding serialized .mir inputs.
	Src string `toml:"src"`
	// Out receives the emitted .c units.
	Out string `toml:"out"`
}

func findFerroToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "ferro.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findFerroToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return projectConfig{}, fmt.Errorf("%s: missing [package] section", path)
	}
	if cfg.Package.Name == "" {
		return projectConfig{}, fmt.Errorf("%s: package.name must be set", path)
	}
	return cfg, nil
}

// resolveLowerInput decides what to lower. An explicit argument wins;
// otherwise the manifest's build.src directory is used, with build.out as
// the default output directory.
func resolveLowerInput(args []string) (input, outDir string, err error) {
	if len(args) == 1 {
		return args[0], "", nil
	}
	manifest, ok, err := loadProjectManifest(".")
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", errors.New(noFerroTomlMessage)
	}
	src := manifest.Config.Build.Src
	if src == "" {
		src = "mir"
	}
	out := manifest.Config.Build.Out
	if out != "" {
		out = filepath.Join(manifest.Root, out)
	}
	return filepath.Join(manifest.Root, src), out, nil
}
