package dispatch

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	stac "github.com/planetlabs/go-stac"

	"github.com/robert-malhotra/aria-download/pkg/downloader"
	"github.com/robert-malhotra/aria-download/pkg/product"
)

const stacVersion = "1.0.0"

// ItemCollection is the STAC ItemCollection written after a download run.
type ItemCollection struct {
	Type  string       `json:"type"`
	Items []*stac.Item `json:"features"`
	Links []*stac.Link `json:"links,omitempty"`
}

var mediaTypes = map[string]string{
	".nc":   "application/x-netcdf",
	".h5":   "application/x-hdf5",
	".kmz":  "application/vnd.google-earth.kmz",
	".tif":  "image/tiff; application=geotiff",
	".zip":  "application/zip",
	".json": "application/json",
}

// BuildManifest describes retrieved files as STAC items. Asset hrefs are
// relative to the directory holding the files.
func BuildManifest(results []downloader.Result, now time.Time) *ItemCollection {
	items := make([]*stac.Item, 0, len(results))
	for _, r := range results {
		items = append(items, manifestItem(r, now))
	}
	return &ItemCollection{Type: "FeatureCollection", Items: items}
}

func manifestItem(r downloader.Result, now time.Time) *stac.Item {
	name := filepath.Base(r.Path)
	ext := strings.ToLower(filepath.Ext(name))
	id := strings.TrimSuffix(name, filepath.Ext(name))

	props := map[string]any{
		"file:size": r.Bytes,
	}
	if pair, err := product.ParseIdentifier(name); err == nil {
		props["datetime"] = nil
		props["start_datetime"] = pair.Start.Format(time.RFC3339)
		props["end_datetime"] = pair.End.Format(time.RFC3339)
		props["aria:temporal_baseline"] = pair.Baseline()
	} else {
		props["datetime"] = now.UTC().Format(time.RFC3339)
	}

	asset := &stac.Asset{
		Href:  name,
		Title: name,
		Type:  mediaTypes[ext],
		Roles: []string{"data"},
	}

	return &stac.Item{
		Version:    stacVersion,
		Id:         id,
		Properties: props,
		Links: []*stac.Link{
			{Rel: "via", Href: r.URL},
		},
		Assets: map[string]*stac.Asset{"data": asset},
	}
}

// WriteManifest writes the STAC manifest for results to path.
func WriteManifest(path string, results []downloader.Result) error {
	data, err := json.MarshalIndent(BuildManifest(results, time.Now()), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}
