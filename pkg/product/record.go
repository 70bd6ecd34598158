package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SecondaryLayerMarker appears in the download URL of derived layers, which
// cannot be retrieved through the bulk output endpoint.
const SecondaryLayerMarker = "layer"

// Record is one product entry from the search response.
type Record struct {
	FileID      string `json:"product_file_id"`
	DownloadURL string `json:"downloadUrl"`
	SizeMB      Loose  `json:"sizeMB,omitempty"`
}

// Secondary reports whether the record is a derived layer.
func (r Record) Secondary() bool {
	return strings.Contains(r.DownloadURL, SecondaryLayerMarker)
}

// Loose holds a scalar the search service may send as a string or a number.
type Loose string

// Float returns the value as a number, reporting false when it is empty or
// not numeric.
func (l Loose) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(l)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// SizeMB returns the summed size in megabytes of the records whose id is in
// ids. Records without a numeric size count as zero.
func SizeMB(records []Record, ids []string) float64 {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var total float64
	for _, r := range records {
		if !want[r.FileID] {
			continue
		}
		if mb, ok := r.SizeMB.Float(); ok {
			total += mb
		}
	}
	return total
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Loose) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Loose(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*l = Loose(n.String())
	return nil
}
