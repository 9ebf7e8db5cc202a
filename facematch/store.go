// Package facematch resolves a captured camera frame to a known person by
// comparing it against a directory of labeled reference images.
package facematch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var validExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
}

// Reference is one labeled reference image. The person id is the file name
// without its extension.
type Reference struct {
	PersonID string
	Filename string
}

// RefStore lists and reads reference images from a directory.
type RefStore struct {
	dir string
}

// NewRefStore returns a store over the given image directory.
func NewRefStore(dir string) *RefStore {
	return &RefStore{dir: dir}
}

// List returns all reference images, sorted by file name so the
// first-match-wins scan order is stable.
func (s *RefStore) List() ([]Reference, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("could not read image directory %s: %w", s.dir, err)
	}

	var refs []Reference
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !validExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		refs = append(refs, Reference{
			PersonID: strings.TrimSuffix(name, filepath.Ext(name)),
			Filename: name,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Filename < refs[j].Filename })
	return refs, nil
}

// Read returns the image bytes for a reference.
func (s *RefStore) Read(ref Reference) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, ref.Filename))
}

// Path resolves a served file name to a path inside the image directory,
// rejecting anything that would escape it.
func (s *RefStore) Path(filename string) (string, bool) {
	if filename != filepath.Base(filename) || !validExtensions[strings.ToLower(filepath.Ext(filename))] {
		return "", false
	}
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
