package product

import (
	"fmt"
	"strings"
)

// Direction is the satellite pass direction.
type Direction string

const (
	DirectionAscending  Direction = "ascending"
	DirectionDescending Direction = "descending"
)

// String returns the underlying string value.
func (d Direction) String() string {
	return string(d)
}

// Query returns the upper-case form the search service expects.
func (d Direction) Query() string {
	return strings.ToUpper(string(d))
}

// ParseDirection accepts ascending, a, descending or d in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "a":
		return DirectionAscending, nil
	case "descending", "d":
		return DirectionDescending, nil
	default:
		return "", fmt.Errorf("%w: direction %q, options: ascending, a, descending, d", ErrInvalidParameter, s)
	}
}

// OutputMode selects what happens to the filtered product list.
type OutputMode int

const (
	OutputDownload OutputMode = iota
	OutputCount
	OutputKml
	outputModeCount
)

var outputModeNames = [outputModeCount]string{
	OutputDownload: "Download",
	OutputCount:    "Count",
	OutputKml:      "Kml",
}

// OutputModes lists every mode in declaration order.
func OutputModes() []OutputMode {
	modes := make([]OutputMode, 0, outputModeCount)
	for m := OutputMode(0); m < outputModeCount; m++ {
		modes = append(modes, m)
	}
	return modes
}

// Valid reports whether m is one of the declared modes.
func (m OutputMode) Valid() bool {
	return m >= 0 && m < outputModeCount
}

// String returns the name the output endpoint expects.
func (m OutputMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
	return outputModeNames[m]
}

// ParseOutputMode matches a mode name case-insensitively.
func ParseOutputMode(s string) (OutputMode, error) {
	name := strings.TrimSpace(s)
	for _, m := range OutputModes() {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: output %q, options: Download, Count, Kml", ErrInvalidParameter, s)
}

// Params is the validated query built once from the command line.
//
// Track and BBox narrow the remote search; every other filter is applied
// locally to the search response. Pair is checked independently of the
// Start/End range and the DaysMore/DaysLess baseline bounds: a record must
// satisfy every filter that is set.
type Params struct {
	Track     string
	BBox      string
	Direction Direction

	Start *Date
	End   *Date

	// DaysMore and DaysLess are exclusive bounds on the temporal baseline.
	DaysMore *int
	DaysLess *int

	Pair *Pair

	Output  OutputMode
	WorkDir string
	Verbose bool
}

// Validate checks the invariants the rest of the pipeline relies on.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Track) == "" && strings.TrimSpace(p.BBox) == "" {
		return ErrMissingParameter
	}
	if !p.Output.Valid() {
		return fmt.Errorf("%w: output %s", ErrInvalidParameter, p.Output)
	}
	switch p.Direction {
	case "", DirectionAscending, DirectionDescending:
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidParameter, p.Direction)
	}
	if p.WorkDir == "" {
		return fmt.Errorf("%w: working directory is empty", ErrInvalidParameter)
	}
	return nil
}
