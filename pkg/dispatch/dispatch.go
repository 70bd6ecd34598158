// Package dispatch sends the filtered product list to the output endpoint
// and performs the action for the requested output mode.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/robert-malhotra/aria-download/pkg/client"
	"github.com/robert-malhotra/aria-download/pkg/downloader"
	"github.com/robert-malhotra/aria-download/pkg/geometry"
	"github.com/robert-malhotra/aria-download/pkg/product"
)

const filePrefix = "download_products_"

// Outputter posts a product list to the output endpoint.
type Outputter interface {
	Output(ctx context.Context, mode product.OutputMode, ids []string) ([]byte, error)
}

// Retriever downloads a set of URLs.
type Retriever interface {
	Retrieve(ctx context.Context, req downloader.Request) ([]downloader.Result, error)
}

type job struct {
	params product.Params
	tag    string
	ids    []string
}

type handler func(ctx context.Context, j job) error

// Dispatcher routes a product list to the handler for its output mode.
type Dispatcher struct {
	remote    Outputter
	retriever Retriever
	stdout    io.Writer
	handlers  map[product.OutputMode]handler
}

// New returns a Dispatcher with one handler per output mode. It panics if a
// declared mode has no handler.
func New(remote Outputter, retriever Retriever, stdout io.Writer) *Dispatcher {
	if stdout == nil {
		stdout = os.Stdout
	}
	d := &Dispatcher{
		remote:    remote,
		retriever: retriever,
		stdout:    stdout,
	}
	d.handlers = map[product.OutputMode]handler{
		product.OutputCount:    d.count,
		product.OutputKml:      d.kml,
		product.OutputDownload: d.download,
	}
	for _, m := range product.OutputModes() {
		if d.handlers[m] == nil {
			panic(fmt.Sprintf("dispatch: no handler for output mode %s", m))
		}
	}
	return d
}

// Dispatch performs params.Output for ids. bbox is the resolved box, or nil
// when params.BBox is unset.
func (d *Dispatcher) Dispatch(ctx context.Context, params product.Params, bbox *geometry.BoundingBox, ids []string) error {
	h, ok := d.handlers[params.Output]
	if !ok {
		return fmt.Errorf("%w: unknown output mode %s", client.ErrRemoteDispatch, params.Output)
	}
	tag, err := FileTag(params, bbox)
	if err != nil {
		return err
	}
	log.Debugf("Dispatching %d products as %s", len(ids), params.Output)
	return h(ctx, job{params: params, tag: tag, ids: ids})
}

// FileTag names the output files of a run: the track when set, otherwise
// the tile name of the bounding box.
func FileTag(params product.Params, bbox *geometry.BoundingBox) (string, error) {
	if params.Track != "" {
		return params.Track, nil
	}
	if bbox != nil {
		return bbox.TileName(), nil
	}
	return "", fmt.Errorf("%w: need a track or a bounding box to name output files", product.ErrMissingParameter)
}

func (d *Dispatcher) count(ctx context.Context, j job) error {
	body, err := d.remote.Output(ctx, product.OutputCount, j.ids)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return fmt.Errorf("%w: count response is not an integer: %q", client.ErrRemoteDispatch, truncate(body, 64))
	}
	_, err = fmt.Fprintf(d.stdout, "Found -- %d -- products\n", n)
	return err
}

func (d *Dispatcher) kml(ctx context.Context, j job) error {
	if err := os.MkdirAll(j.params.WorkDir, 0o755); err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	body, err := d.remote.Output(ctx, product.OutputKml, j.ids)
	if err != nil {
		return err
	}

	dst := filepath.Join(j.params.WorkDir, filePrefix+j.tag+".kmz")
	if err := writeFileAtomic(dst, body); err != nil {
		return err
	}
	_, err = fmt.Fprintf(d.stdout, "Wrote .KMZ to:\n\t %s\n", dst)
	return err
}

func (d *Dispatcher) download(ctx context.Context, j job) error {
	if d.retriever == nil {
		return errors.New("dispatch: no retriever configured for download")
	}
	if err := os.MkdirAll(j.params.WorkDir, 0o755); err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	body, err := d.remote.Output(ctx, product.OutputDownload, j.ids)
	if err != nil {
		return err
	}

	urls, err := downloader.ParseScript(body)
	if err != nil {
		return err
	}
	log.Infof("Bulk download lists %d files", len(urls))

	results, err := d.retriever.Retrieve(ctx, downloader.Request{
		URLs:    urls,
		Dir:     j.params.WorkDir,
		Verbose: j.params.Verbose,
	})
	if err != nil {
		return err
	}

	manifest := filepath.Join(j.params.WorkDir, filePrefix+j.tag+".json")
	if err := WriteManifest(manifest, results); err != nil {
		return err
	}

	skipped := 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		}
	}
	_, err = fmt.Fprintf(d.stdout, "Downloaded %d products to %s (%d already present)\nWrote manifest to:\n\t %s\n",
		len(results)-skipped, j.params.WorkDir, skipped, manifest)
	return err
}

// writeFileAtomic writes data to a temporary file in the destination
// directory and renames it over dst.
func writeFileAtomic(dst string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
