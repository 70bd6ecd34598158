package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/aria-download/pkg/client"
	"github.com/robert-malhotra/aria-download/pkg/dispatch"
	"github.com/robert-malhotra/aria-download/pkg/geometry"
	"github.com/robert-malhotra/aria-download/pkg/product"
)

type recordingDispatcher struct {
	calls int
	bbox  *geometry.BoundingBox
	ids   []string
	err   error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ product.Params, bbox *geometry.BoundingBox, ids []string) error {
	d.calls++
	d.bbox = bbox
	d.ids = ids
	return d.err
}

type stubSearcher struct {
	records []product.Record
	err     error
	url     string
}

func (s *stubSearcher) SearchURL(p product.Params, bbox *geometry.BoundingBox) string {
	return client.BuildSearchURL("https://search.test/services/search/param", p, bbox)
}

func (s *stubSearcher) Search(_ context.Context, searchURL string) ([]product.Record, error) {
	s.url = searchURL
	return s.records, s.err
}

func rec(id string) product.Record {
	return product.Record{FileID: id, DownloadURL: "https://grfn.asf.alaska.edu/door/download/" + id + ".nc"}
}

func TestRun_ScenarioA(t *testing.T) {
	searcher := &stubSearcher{records: []product.Record{
		rec("S1-GUNW-A-R-004-tops-20190301_20190201-aaaa"),
		rec("S1-GUNW-A-R-004-tops-20190201_20190101-bbbb"),
		rec("S1-GUNW-A-R-004-tops-20190401_20190301-cccc"),
	}}
	dispatcher := &recordingDispatcher{}
	p := &Pipeline{Resolver: geometry.NewResolver(), Searcher: searcher, Dispatcher: dispatcher}

	err := p.Run(context.Background(), product.Params{BBox: "36.75 37.225 -76.655 -75.928"})
	require.NoError(t, err)

	assert.Contains(t, searcher.url, "&bbox=-76.655,36.75,-75.928,37.225")
	require.NotNil(t, dispatcher.bbox)
	assert.Equal(t, -76.655, dispatcher.bbox.West)
	assert.Equal(t, []string{
		"S1-GUNW-A-R-004-tops-20190301_20190201-aaaa",
		"S1-GUNW-A-R-004-tops-20190201_20190101-bbbb",
		"S1-GUNW-A-R-004-tops-20190401_20190301-cccc",
	}, dispatcher.ids)
}

func TestRun_VerboseReportsIDs(t *testing.T) {
	searcher := &stubSearcher{records: []product.Record{
		rec("20190201_20190101"),
		{FileID: "20190201_20190101-unw", DownloadURL: "https://x/layer/unw.nc"},
	}}
	var out bytes.Buffer
	p := &Pipeline{Searcher: searcher, Dispatcher: &recordingDispatcher{}, Stdout: &out}

	require.NoError(t, p.Run(context.Background(), product.Params{Track: "004", Verbose: true}))
	assert.Equal(t, "Found: 20190201_20190101\n", out.String())
	assert.Contains(t, searcher.url, "&relativeOrbit=004")
}

func TestRun_StageErrors(t *testing.T) {
	t.Run("resolve", func(t *testing.T) {
		d := &recordingDispatcher{}
		p := &Pipeline{Resolver: geometry.NewResolver(), Searcher: &stubSearcher{}, Dispatcher: d}
		err := p.Run(context.Background(), product.Params{BBox: "not a box"})

		var se *StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, StageResolve, se.Stage)
		assert.ErrorIs(t, err, geometry.ErrInvalidBoundingBox)
		assert.Zero(t, d.calls)
	})

	t.Run("search", func(t *testing.T) {
		p := &Pipeline{Searcher: &stubSearcher{err: client.ErrSearch}, Dispatcher: &recordingDispatcher{}}
		err := p.Run(context.Background(), product.Params{Track: "004"})

		var se *StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, StageSearch, se.Stage)
		assert.ErrorIs(t, err, client.ErrSearch)
	})

	t.Run("filter", func(t *testing.T) {
		p := &Pipeline{Searcher: &stubSearcher{records: []product.Record{rec("no-dates")}}, Dispatcher: &recordingDispatcher{}}
		err := p.Run(context.Background(), product.Params{Track: "004"})
		assert.ErrorIs(t, err, product.ErrMalformedIdentifier)
		assert.Contains(t, err.Error(), "filter: ")
	})

	t.Run("dispatch", func(t *testing.T) {
		d := &recordingDispatcher{err: errors.New("boom")}
		p := &Pipeline{Searcher: &stubSearcher{records: []product.Record{rec("20190201_20190101")}}, Dispatcher: d}
		err := p.Run(context.Background(), product.Params{Track: "004"})

		var se *StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, StageDispatch, se.Stage)
		assert.Equal(t, "dispatch: boom", err.Error())
	})
}

// An empty search response ends the run before the output endpoint is
// contacted.
func TestRun_ScenarioE(t *testing.T) {
	var outputCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			outputCalls++
			w.Write([]byte("0"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[]]`))
	}))
	defer server.Close()

	c, err := client.NewClient(server.URL)
	require.NoError(t, err)

	p := &Pipeline{
		Resolver:   geometry.NewResolver(),
		Searcher:   c,
		Dispatcher: dispatch.New(c, nil, &bytes.Buffer{}),
	}
	err = p.Run(context.Background(), product.Params{Track: "004", Output: product.OutputCount})
	require.ErrorIs(t, err, product.ErrNoProductsFound)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageFilter, se.Stage)
	assert.Zero(t, outputCalls)
}

func TestRun_CountEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "Count", r.URL.Query().Get("output"))
			assert.Equal(t, "20190201_20190101", r.PostForm.Get("product_list"))
			w.Write([]byte("1\n"))
			return
		}
		w.Write([]byte(`[[{"product_file_id":"20190201_20190101","downloadUrl":"https://grfn.asf.alaska.edu/door/download/a.nc"}]]`))
	}))
	defer server.Close()

	c, err := client.NewClient(server.URL)
	require.NoError(t, err)

	var out bytes.Buffer
	p := &Pipeline{Resolver: geometry.NewResolver(), Searcher: c, Dispatcher: dispatch.New(c, nil, &out)}
	require.NoError(t, p.Run(context.Background(), product.Params{Track: "004", Output: product.OutputCount}))
	assert.Equal(t, "Found -- 1 -- products\n", out.String())
}
