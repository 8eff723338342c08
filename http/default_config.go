package http

import (
	"errors"
	"os"
	"path/filepath"
)

// DefaultRoutesCandidates returns relative paths that will be checked (in order)
// when searching for a routes file.
func DefaultRoutesCandidates() []string {
	return []string{
		"routes.json",
		filepath.FromSlash("http/routes.json"),
	}
}

// FindDefaultRoutesFile searches for a routes file in a small set of
// well-known locations (CWD then executable directory).
func FindDefaultRoutesFile() (string, error) {
	candidates := DefaultRoutesCandidates()

	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		for _, rel := range candidates {
			p := rel
			if dir != "." {
				p = filepath.Join(dir, rel)
			}
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}

	return "", errors.New("routes file not found (expected routes.json or http/routes.json)")
}
