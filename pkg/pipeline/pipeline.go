// Package pipeline runs one query: resolve the bounding box, search, filter
// the response and dispatch the result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"

	"github.com/robert-malhotra/aria-download/pkg/geometry"
	"github.com/robert-malhotra/aria-download/pkg/product"
)

// Stage names a step of the pipeline.
type Stage string

const (
	StageResolve  Stage = "resolve"
	StageSearch   Stage = "search"
	StageFilter   Stage = "filter"
	StageDispatch Stage = "dispatch"
)

// StageError records the stage in which a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Resolver turns a --bbox argument into a bounding box.
type Resolver interface {
	Resolve(arg string) (geometry.BoundingBox, error)
}

// Searcher builds and runs search requests.
type Searcher interface {
	SearchURL(p product.Params, bbox *geometry.BoundingBox) string
	Search(ctx context.Context, searchURL string) ([]product.Record, error)
}

// Dispatcher acts on the filtered product list.
type Dispatcher interface {
	Dispatch(ctx context.Context, params product.Params, bbox *geometry.BoundingBox, ids []string) error
}

// Pipeline wires the stages together.
type Pipeline struct {
	Resolver   Resolver
	Searcher   Searcher
	Dispatcher Dispatcher
	// Stdout receives verbose "Found: <id>" lines; os.Stdout when nil.
	Stdout io.Writer
}

// Run executes every stage for params. Errors are *StageError.
func (p *Pipeline) Run(ctx context.Context, params product.Params) error {
	log.Debugf("Query parameters: %s", spew.Sdump(params))

	var bbox *geometry.BoundingBox
	if params.BBox != "" {
		b, err := p.Resolver.Resolve(params.BBox)
		if err != nil {
			return &StageError{Stage: StageResolve, Err: err}
		}
		bbox = &b
	}

	searchURL := p.Searcher.SearchURL(params, bbox)
	log.Infof("Searching %s", searchURL)

	records, err := p.Searcher.Search(ctx, searchURL)
	if err != nil {
		return &StageError{Stage: StageSearch, Err: err}
	}

	filter := product.Filter{Params: params}
	if params.Verbose {
		out := p.Stdout
		if out == nil {
			out = os.Stdout
		}
		filter.Report = func(id string) {
			fmt.Fprintf(out, "Found: %s\n", id)
		}
	}

	ids, err := filter.Apply(records)
	if err != nil {
		return &StageError{Stage: StageFilter, Err: err}
	}
	log.Infof("%d of %d products match the filters (%.1f MB)", len(ids), len(records), product.SizeMB(records, ids))

	if err := p.Dispatcher.Dispatch(ctx, params, bbox, ids); err != nil {
		return &StageError{Stage: StageDispatch, Err: err}
	}
	return nil
}
