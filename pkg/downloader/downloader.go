// Package downloader retrieves product files listed by the output endpoint
// into a working directory. It only ever fetches URLs; the script returned
// by the service is parsed for its file list and never executed.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/aria-download/pkg/auth"
	"github.com/robert-malhotra/aria-download/pkg/client"
)

const maxRedirects = 10

// ErrHostNotAllowed is returned for URLs outside the retriever's allow-list.
var ErrHostNotAllowed = errors.New("downloader: host not allowed")

// ProgressFunc reports cumulative bytes downloaded and the expected total.
type ProgressFunc func(downloaded, total int64)

// Request describes one retrieval run.
type Request struct {
	URLs    []string
	Dir     string
	Verbose bool
}

// Result describes one retrieved file.
type Result struct {
	URL     string
	Path    string
	Bytes   int64
	Skipped bool
}

// Retriever downloads files over HTTP(S) or from S3.
type Retriever struct {
	// Client is used for http and https URLs; http.DefaultClient when nil.
	Client *http.Client
	// Workers bounds concurrent downloads; values below 1 mean 1.
	Workers int
	// AllowedHosts lists the domains files may come from, including every
	// redirect hop. Subdomains match. An empty list allows any host.
	AllowedHosts []string
	// AllowS3 permits s3:// URLs, fetched with the default AWS credential chain.
	AllowS3 bool
	// Progress, when set, returns the progress callback for one file.
	Progress func(name string) ProgressFunc
	// Timeout bounds a whole Retrieve call; zero means no limit.
	Timeout time.Duration
}

type target struct {
	raw  string
	url  *url.URL
	name string
}

// Retrieve downloads every URL in req into req.Dir. All URLs are checked
// before the first request is made. Results are returned in input order
// with duplicates removed. Files already present are skipped.
func (r *Retriever) Retrieve(ctx context.Context, req Request) ([]Result, error) {
	if req.Dir == "" {
		return nil, fmt.Errorf("downloader: destination directory is empty")
	}

	targets, err := r.plan(req.URLs)
	if err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	hc := r.httpClient()

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range targets {
		g.Go(func() error {
			res, err := r.retrieve(gctx, hc, t, req)
			if err != nil {
				return fmt.Errorf("download %s: %w", t.url.Redacted(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: download run exceeded %s: %w", client.ErrTimeout, r.Timeout, err)
		}
		return nil, err
	}
	return results, nil
}

// checkURL applies the scheme and host rules to one URL.
func (r *Retriever) checkURL(u *url.URL) error {
	switch u.Scheme {
	case "http", "https":
		if !auth.HostMatches(u.Hostname(), r.AllowedHosts) {
			return fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
		}
	case "s3":
		if !r.AllowS3 {
			return fmt.Errorf("%w: s3 bucket %s", ErrHostNotAllowed, u.Host)
		}
	default:
		return fmt.Errorf("downloader: unsupported URL scheme: %s", u.Scheme)
	}
	return nil
}

// httpClient returns a copy of the configured client whose redirects are
// held to the same rules as the listed URLs.
func (r *Retriever) httpClient() *http.Client {
	base := r.Client
	if base == nil {
		base = http.DefaultClient
	}
	hc := *base
	next := base.CheckRedirect
	hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
			return fmt.Errorf("%w: redirect to %s", ErrHostNotAllowed, req.URL.Redacted())
		}
		if err := r.checkURL(req.URL); err != nil {
			return fmt.Errorf("redirect to %s: %w", req.URL.Redacted(), err)
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
	return &hc
}

func (r *Retriever) plan(raws []string) ([]target, error) {
	seenURL := make(map[string]bool, len(raws))
	seenName := make(map[string]string, len(raws))
	targets := make([]target, 0, len(raws))

	for _, raw := range raws {
		if seenURL[raw] {
			continue
		}
		seenURL[raw] = true

		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("downloader: invalid URL %q: %w", raw, err)
		}
		if err := r.checkURL(u); err != nil {
			return nil, err
		}

		name := path.Base(u.Path)
		if name == "/" || name == "." || name == ".." || strings.ContainsRune(name, filepath.Separator) {
			return nil, fmt.Errorf("downloader: no usable file name in %q", raw)
		}
		if prev, ok := seenName[name]; ok {
			return nil, fmt.Errorf("downloader: %q and %q share the file name %s", prev, raw, name)
		}
		seenName[name] = raw

		targets = append(targets, target{raw: raw, url: u, name: name})
	}
	return targets, nil
}

func (r *Retriever) retrieve(ctx context.Context, hc *http.Client, t target, req Request) (Result, error) {
	dest := filepath.Join(req.Dir, t.name)
	if fi, err := os.Stat(dest); err == nil && fi.Mode().IsRegular() && fi.Size() > 0 {
		if req.Verbose {
			log.Infof("Skipping %s, already present", t.name)
		}
		return Result{URL: t.raw, Path: dest, Bytes: fi.Size(), Skipped: true}, nil
	}

	if req.Verbose {
		log.Infof("Downloading %s", t.url.Redacted())
	}

	var (
		body  io.ReadCloser
		total int64
		err   error
	)
	if t.url.Scheme == "s3" {
		body, total, err = openS3(ctx, t.url)
	} else {
		body, total, err = openHTTP(ctx, hc, t.url)
	}
	if err != nil {
		return Result{}, err
	}
	defer body.Close()

	var progress ProgressFunc
	if r.Progress != nil {
		progress = r.Progress(t.name)
	}

	n, err := writeFile(ctx, dest, body, total, progress)
	if err != nil {
		return Result{}, err
	}
	return Result{URL: t.raw, Path: dest, Bytes: n}, nil
}

func openHTTP(ctx context.Context, hc *http.Client, u *url.URL) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to download asset: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, resp.ContentLength, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("failed to download asset: status %d, check Earthdata credentials", resp.StatusCode)
	default:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("failed to download asset: unexpected status code %d", resp.StatusCode)
	}
}

func openS3(ctx context.Context, u *url.URL) (io.ReadCloser, int64, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load AWS config: %w", err)
	}

	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	result, err := s3.NewFromConfig(cfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to download from S3: %w", err)
	}

	var total int64
	if result.ContentLength != nil {
		total = *result.ContentLength
	}
	return result.Body, total, nil
}

// writeFile streams src into dest through a .part file that is renamed into
// place on success and removed on failure.
func writeFile(ctx context.Context, dest string, src io.Reader, total int64, progress ProgressFunc) (n int64, err error) {
	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			_ = os.Remove(tmp)
		}
	}()

	if progress != nil {
		progress(0, total)
	}

	n, err = copyWithProgress(ctx, out, src, total, progress)
	if err != nil {
		return n, fmt.Errorf("failed to write asset to file: %w", err)
	}
	if total > 0 && n != total {
		return n, fmt.Errorf("short download: got %d of %d bytes", n, total)
	}
	if err = out.Close(); err != nil {
		return n, fmt.Errorf("failed to close destination file: %w", err)
	}
	if err = os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("failed to move download into place: %w", err)
	}
	return n, nil
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	const defaultBufferSize = 32 * 1024
	buf := make([]byte, defaultBufferSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			w, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return written, writeErr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
			written += int64(w)
			if progress != nil {
				progress(written, total)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, readErr
		}
	}
}
