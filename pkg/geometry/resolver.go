package geometry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
)

// BoundsReader reads the bounding rectangle of a geometry file.
type BoundsReader interface {
	ReadBounds(path string) (orb.Bound, error)
}

// BoundsReaderFunc adapts a function to the BoundsReader interface.
type BoundsReaderFunc func(path string) (orb.Bound, error)

// ReadBounds implements BoundsReader.
func (f BoundsReaderFunc) ReadBounds(path string) (orb.Bound, error) {
	return f(path)
}

// Resolver turns a --bbox argument into a BoundingBox.
type Resolver struct {
	Reader BoundsReader
}

// NewResolver returns a Resolver backed by FileReader.
func NewResolver() *Resolver {
	return &Resolver{Reader: FileReader{}}
}

// Resolve reads arg as a geometry file when it names an existing path and as
// an "S N W E" string otherwise.
func (r *Resolver) Resolve(arg string) (BoundingBox, error) {
	path, ok := existingPath(arg)
	if !ok {
		return ParseSNWE(arg)
	}

	if r.Reader == nil {
		return BoundingBox{}, fmt.Errorf("%w: no geometry reader configured for %s", ErrInvalidBoundingBox, path)
	}

	log.Debugf("Reading bbox from geometry file %s", path)
	bound, err := r.Reader.ReadBounds(path)
	if err != nil {
		return BoundingBox{}, fmt.Errorf("%w: %s: %w", ErrInvalidBoundingBox, path, err)
	}
	return FromBound(bound), nil
}

func existingPath(arg string) (string, bool) {
	if strings.TrimSpace(arg) == "" {
		return "", false
	}
	path, err := filepath.Abs(arg)
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
