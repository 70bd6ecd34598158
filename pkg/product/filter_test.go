package product

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func datePtr(s string) *Date {
	d := MustDate(s)
	return &d
}

func record(id string) Record {
	return Record{
		FileID:      id,
		DownloadURL: "https://grfn.asf.alaska.edu/door/download/S1-GUNW-" + id + ".nc",
	}
}

func TestFilter_EmptyResponse(t *testing.T) {
	ids, err := Filter{}.Apply(nil)
	require.ErrorIs(t, err, ErrNoProductsFound)
	assert.Nil(t, ids)
}

func TestFilter_KeepsResponseOrder(t *testing.T) {
	records := []Record{
		record("S1-GUNW-D-R-004-tops-20190301_20190201-aaaa"),
		record("S1-GUNW-D-R-004-tops-20190201_20190101-bbbb"),
		record("S1-GUNW-D-R-004-tops-20190401_20190301-cccc"),
	}

	ids, err := Filter{}.Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{records[0].FileID, records[1].FileID, records[2].FileID}, ids)
}

func TestFilter_SecondaryLayersNeverSurvive(t *testing.T) {
	secondary := record("S1-GUNW-D-R-004-tops-20190201_20190101-bbbb")
	secondary.DownloadURL = "https://grfn.asf.alaska.edu/door/download/layer/amplitude.tif"

	// A malformed id on a secondary record must not fail the run: the layer
	// check comes first.
	malformedSecondary := Record{FileID: "not-a-product", DownloadURL: "https://host/layer/x"}

	ids, err := Filter{Params: Params{
		Pair: &Pair{Start: MustDate("20190101"), End: MustDate("20190201")},
	}}.Apply([]Record{secondary, malformedSecondary})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFilter_MalformedIdentifier(t *testing.T) {
	_, err := Filter{}.Apply([]Record{
		record("S1-GUNW-D-R-004-tops-20190201_20190101-bbbb"),
		{FileID: "S1-GUNW-no-dates", DownloadURL: "https://host/file.nc"},
	})
	require.ErrorIs(t, err, ErrMalformedIdentifier)
}

func TestFilter_ExactPair(t *testing.T) {
	pair, err := ParsePair("20190101_20190201")
	require.NoError(t, err)

	records := []Record{
		record("S1-GUNW-A-R-064-tops-20190213_20190201-x"),
		record("S1-GUNW-A-R-064-tops-20190201_20190101-y"),
		record("S1-GUNW-A-R-064-tops-20190201_20190102-z"),
	}

	ids, err := Filter{Params: Params{Pair: &pair}}.Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1-GUNW-A-R-064-tops-20190201_20190101-y"}, ids)
}

func TestFilter_DateRangeIsInclusive(t *testing.T) {
	records := []Record{
		record("P-20190201_20190101"), // start on bound, end on bound
		record("P-20190202_20190101"), // end after bound
		record("P-20190201_20181231"), // start before bound
	}

	ids, err := Filter{Params: Params{
		Start: datePtr("20190101"),
		End:   datePtr("20190201"),
	}}.Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"P-20190201_20190101"}, ids)
}

func TestFilter_BaselineBoundsAreExclusive(t *testing.T) {
	// 2018-01-01 to 2019-01-01 is 365 days; 2018-01-02 to 2019-01-01 is 364.
	records := []Record{
		record("P-20190101_20180101"),
		record("P-20190101_20180102"),
	}

	ids, err := Filter{Params: Params{DaysMore: intPtr(364)}}.Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"P-20190101_20180101"}, ids)

	ids, err = Filter{Params: Params{DaysLess: intPtr(365)}}.Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"P-20190101_20180102"}, ids)

	ids, err = Filter{Params: Params{DaysMore: intPtr(364), DaysLess: intPtr(365)}}.Apply(records)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFilter_ZeroBoundIsApplied(t *testing.T) {
	ids, err := Filter{Params: Params{DaysMore: intPtr(0)}}.Apply([]Record{
		record("P-20190101_20190101"),
		record("P-20190102_20190101"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"P-20190102_20190101"}, ids)
}

func TestFilter_PairAndRangeCombine(t *testing.T) {
	pair := Pair{Start: MustDate("20190101"), End: MustDate("20190201")}

	ids, err := Filter{Params: Params{
		Pair:  &pair,
		Start: datePtr("20190105"),
	}}.Apply([]Record{record("P-20190201_20190101")})
	require.NoError(t, err)
	assert.Empty(t, ids, "a pair match outside the date range is still excluded")
}

func TestFilter_Report(t *testing.T) {
	var reported []string
	f := Filter{
		Params: Params{DaysLess: intPtr(20)},
		Report: func(id string) { reported = append(reported, id) },
	}

	ids, err := f.Apply([]Record{
		record("P-20190113_20190101"),
		record("P-20190301_20190101"),
	})
	require.NoError(t, err)
	assert.Equal(t, ids, reported)
	assert.Equal(t, []string{"P-20190113_20190101"}, reported)
}

func TestRecord_DecodeLooseFields(t *testing.T) {
	var records []Record
	err := json.Unmarshal([]byte(`[
		{"product_file_id": "a-20190201_20190101", "downloadUrl": "https://x/a.nc", "sizeMB": 51.2},
		{"product_file_id": "b-20190201_20190101", "downloadUrl": "https://x/b.nc", "sizeMB": "48.8"},
		{"product_file_id": "c-20190201_20190101", "downloadUrl": "https://x/c.nc", "sizeMB": null}
	]`), &records)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Loose("51.2"), records[0].SizeMB)
	assert.Equal(t, Loose("48.8"), records[1].SizeMB)
	assert.Equal(t, Loose(""), records[2].SizeMB)

	_, ok := records[2].SizeMB.Float()
	assert.False(t, ok)

	assert.InDelta(t, 100.0, SizeMB(records, []string{"a-20190201_20190101", "b-20190201_20190101", "c-20190201_20190101"}), 1e-9)
	assert.InDelta(t, 48.8, SizeMB(records, []string{"b-20190201_20190101"}), 1e-9)
	assert.Zero(t, SizeMB(records, nil))

	err = json.Unmarshal([]byte(`[{"sizeMB": true}]`), &records)
	require.Error(t, err)
}
