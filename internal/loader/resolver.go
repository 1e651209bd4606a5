package loader

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver locates unit files named by imports.
//
// Resolution strategy:
//  1. An absolute path is used as is
//  2. A path relative to the directory of the importing unit
//  3. Each search path in order
//
// The .yaml extension may be omitted.
type Resolver struct {
	searchPaths []string
}

// NewResolver creates a Resolver over searchPaths.
func NewResolver(searchPaths []string) *Resolver {
	return &Resolver{searchPaths: searchPaths}
}

// SearchPaths returns the configured search paths.
func (r *Resolver) SearchPaths() []string {
	return r.searchPaths
}

// Resolve returns the absolute path of the unit imported as name from a
// unit located in fromDir.
func (r *Resolver) Resolve(name, fromDir string) (string, error) {
	for _, candidate := range withExtension(name) {
		if filepath.IsAbs(candidate) {
			if isUnitFile(candidate) {
				return candidate, nil
			}
			continue
		}
		if fromDir != "" {
			if p := filepath.Join(fromDir, candidate); isUnitFile(p) {
				return filepath.Abs(p)
			}
		}
		for _, sp := range r.searchPaths {
			if p := filepath.Join(sp, candidate); isUnitFile(p) {
				return filepath.Abs(p)
			}
		}
	}
	return "", &UnitNotFoundError{Import: name}
}

// UnitNotFoundError is returned when an import cannot be resolved.
type UnitNotFoundError struct {
	Import string
}

func (e *UnitNotFoundError) Error() string {
	return "unit not found: " + e.Import
}

func withExtension(name string) []string {
	ext := filepath.Ext(name)
	if ext == ".yaml" || ext == ".yml" {
		return []string{name}
	}
	// dotted unit names map to directories
	path := strings.ReplaceAll(name, ".", string(filepath.Separator))
	return []string{name + ".yaml", path + ".yaml", name + ".yml"}
}

func isUnitFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
