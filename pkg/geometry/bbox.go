// Package geometry resolves the --bbox argument into a bounding box, either
// from a literal "S N W E" string or from the first feature of a geometry
// file on disk.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ErrInvalidBoundingBox is returned when a bbox argument is neither four
// numbers nor a readable geometry file.
var ErrInvalidBoundingBox = errors.New("geometry: cannot understand the --bbox argument; input string was entered incorrectly or path does not exist")

// BoundingBox is a lon/lat rectangle in West, South, East, North order.
type BoundingBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// FromBound converts an orb.Bound (min corner, max corner) into a BoundingBox.
func FromBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		West:  b.Min.X(),
		South: b.Min.Y(),
		East:  b.Max.X(),
		North: b.Max.Y(),
	}
}

// Bound returns the box as an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// String formats the box as "W,S,E,N", the form the search service takes.
func (b BoundingBox) String() string {
	return strings.Join([]string{
		formatCoord(b.West),
		formatCoord(b.South),
		formatCoord(b.East),
		formatCoord(b.North),
	}, ",")
}

// TileName widens the box to whole degrees (floor west/south, ceil
// east/north) and formats it as "<W>W<S>S<E>E<N>N".
func (b BoundingBox) TileName() string {
	return fmt.Sprintf("%dW%dS%dE%dN",
		int(math.Floor(b.West)),
		int(math.Floor(b.South)),
		int(math.Ceil(b.East)),
		int(math.Ceil(b.North)),
	)
}

// ParseSNWE parses four whitespace-separated numbers given in South, North,
// West, East order.
func ParseSNWE(s string) (BoundingBox, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return BoundingBox{}, fmt.Errorf("%w: %q has %d values, want 4 (S N W E)", ErrInvalidBoundingBox, s, len(fields))
	}

	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return BoundingBox{}, fmt.Errorf("%w: %q is not a number", ErrInvalidBoundingBox, f)
		}
		v[i] = n
	}

	return BoundingBox{West: v[2], South: v[0], East: v[3], North: v[1]}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
