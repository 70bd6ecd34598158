package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

var errEmptyGeometry = errors.New("file contains no geometry")

// FileReader reads the bounds of the first feature in a Shapefile, GeoJSON
// or WKT file, chosen by extension.
type FileReader struct{}

// ReadBounds implements BoundsReader.
func (FileReader) ReadBounds(path string) (orb.Bound, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".shp":
		return readShapefile(path)
	case ".geojson", ".json":
		return readGeoJSON(path)
	case ".wkt":
		return readWKT(path)
	default:
		return orb.Bound{}, fmt.Errorf("unsupported geometry file type %q", ext)
	}
}

func readShapefile(path string) (orb.Bound, error) {
	r, err := shp.Open(path)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("open shapefile: %w", err)
	}
	defer r.Close()

	if !r.Next() {
		return orb.Bound{}, errEmptyGeometry
	}
	_, shape := r.Shape()
	if shape == nil {
		return orb.Bound{}, errEmptyGeometry
	}

	box := shape.BBox()
	return orb.Bound{
		Min: orb.Point{box.MinX, box.MinY},
		Max: orb.Point{box.MaxX, box.MaxY},
	}, nil
}

func readGeoJSON(path string) (orb.Bound, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return orb.Bound{}, err
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return orb.Bound{}, fmt.Errorf("decode geojson: %w", err)
	}

	var g orb.Geometry
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("decode feature collection: %w", err)
		}
		if len(fc.Features) == 0 {
			return orb.Bound{}, errEmptyGeometry
		}
		g = fc.Features[0].Geometry
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("decode feature: %w", err)
		}
		g = f.Geometry
	default:
		geom, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("decode geometry: %w", err)
		}
		g = geom.Geometry()
	}

	if g == nil {
		return orb.Bound{}, errEmptyGeometry
	}
	return g.Bound(), nil
}

func readWKT(path string) (orb.Bound, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return orb.Bound{}, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return orb.Bound{}, errEmptyGeometry
	}

	g, err := wkt.Unmarshal(text)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("decode wkt: %w", err)
	}
	return g.Bound(), nil
}
