// internal/catalog/catalog.go
// Package catalog defines the stimulus catalog: for every personality trait,
// the pools of HIGH and LOW exemplar videos that trials are built from.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/perceptlab/pairwise/internal/logging"
)

// Pool holds the HIGH and LOW video pools for a single trait.
type Pool struct {
	High []string `json:"high" yaml:"high"`
	Low  []string `json:"low" yaml:"low"`
}

// Catalog maps trait names to their video pools. Traits with an empty HIGH or
// LOW side are unusable and contribute zero trials.
type Catalog map[string]Pool

// Usable reports whether the trait has at least one HIGH and one LOW video.
func (c Catalog) Usable(trait string) bool {
	pool, ok := c[trait]
	return ok && len(pool.High) > 0 && len(pool.Low) > 0
}

// FolderName converts a trait name to its on-disk folder name,
// e.g. "Emotional Stability" -> "emotional_stability".
func FolderName(trait string) string {
	return strings.ReplaceAll(strings.ToLower(trait), " ", "_")
}

// VideoPath resolves a catalog video identifier to its path under the stimulus
// base directory. side is "high" or "low".
func VideoPath(base, trait, side, video string) string {
	return filepath.Join(base, FolderName(trait), side, video)
}

// ScanDir builds a catalog by scanning <base>/<trait_folder>/{high,low}/*.mp4
// for every configured trait. Traits with no videos on either side are skipped
// with a warning; the scan itself only fails when the base directory is absent.
func ScanDir(base string, traits []string) (Catalog, error) {
	if _, err := os.Stat(base); err != nil {
		return nil, fmt.Errorf("stimulus directory %q: %w", base, err)
	}

	cat := Catalog{}
	for _, trait := range traits {
		folder := FolderName(trait)
		high, err := listVideos(filepath.Join(base, folder, "high"))
		if err != nil {
			return nil, err
		}
		low, err := listVideos(filepath.Join(base, folder, "low"))
		if err != nil {
			return nil, err
		}

		if len(high) == 0 || len(low) == 0 {
			logging.LogWarn("no videos found for trait %q under %s", trait, filepath.Join(base, folder))
			continue
		}

		cat[trait] = Pool{High: high, Low: low}
		logging.LogEvent("loaded %d high + %d low videos for %s", len(high), len(low), trait)
	}
	return cat, nil
}

func listVideos(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.mp4"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

// LoadFile reads a catalog from a YAML or JSON file, chosen by extension.
// JSON catalogs are validated against the embedded schema before decoding.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read catalog file %q: %w", path, err)
	}

	var cat Catalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("could not parse catalog YAML %q: %w", path, err)
		}
	case ".json":
		if err := validateJSON(data); err != nil {
			return nil, fmt.Errorf("catalog %q: %w", path, err)
		}
		if err := json.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("could not parse catalog JSON %q: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog extension %q (want .yaml, .yml, or .json)", ext)
	}

	for trait := range cat {
		if !cat.Usable(trait) {
			logging.LogWarn("catalog trait %q has an empty high or low pool", trait)
		}
	}
	return cat, nil
}

// Validate checks that every video referenced by the catalog exists under the
// stimulus base directory. It returns the sorted list of missing paths.
func Validate(cat Catalog, base string) (bool, []string) {
	seen := map[string]bool{}
	var missing []string

	check := func(trait, side string, videos []string) {
		for _, v := range videos {
			path := VideoPath(base, trait, side, v)
			if seen[path] {
				continue
			}
			seen[path] = true
			if _, err := os.Stat(path); err != nil {
				missing = append(missing, path)
			}
		}
	}

	for trait, pool := range cat {
		check(trait, "high", pool.High)
		check(trait, "low", pool.Low)
	}

	sort.Strings(missing)
	return len(missing) == 0, missing
}
