package lod

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExportSTL writes one binary STL per non-empty tier of elod into dir as
// "<element>_<tier>.stl" and returns the written paths in tier order.
func ExportSTL(dir string, elod *ElementLOD) ([]string, error) {
	if elod == nil {
		return nil, ErrNilElementLOD
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for _, t := range elod.Tiers() {
		rep := elod.Representations[t]
		if rep.IsEmpty() {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.stl", sanitize(elod.ElementID), t))
		if err := rep.Mesh.SaveSTL(path); err != nil {
			return paths, fmt.Errorf("export %s %s: %w", elod.ElementID, t, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// sanitize maps characters that are unsafe in file names to '_'.
func sanitize(id string) string {
	b := []byte(id)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
		default:
			b[i] = '_'
		}
	}
	return string(b)
}
