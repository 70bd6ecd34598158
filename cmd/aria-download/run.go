package main

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/robert-malhotra/aria-download/pkg/auth"
	"github.com/robert-malhotra/aria-download/pkg/client"
	"github.com/robert-malhotra/aria-download/pkg/config"
	"github.com/robert-malhotra/aria-download/pkg/dispatch"
	"github.com/robert-malhotra/aria-download/pkg/downloader"
	"github.com/robert-malhotra/aria-download/pkg/geometry"
	"github.com/robert-malhotra/aria-download/pkg/pipeline"
	"github.com/robert-malhotra/aria-download/pkg/product"
)

func run(ctx context.Context, params product.Params) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Logging.Apply(params.Verbose); err != nil {
		return err
	}

	c, err := client.NewClient(cfg.SearchURL,
		client.WithTimeout(cfg.Timeout),
		client.WithUserAgent(cfg.UserAgent),
	)
	if err != nil {
		return err
	}

	httpClient, err := downloadClient(cfg)
	if err != nil {
		return err
	}
	retriever := &downloader.Retriever{
		Client:       httpClient,
		Workers:      cfg.Download.Workers,
		AllowedHosts: cfg.Download.AllowedHosts,
		AllowS3:      cfg.Download.AllowS3,
		Progress:     downloader.LogProgress,
		Timeout:      cfg.Download.Timeout,
	}

	p := &pipeline.Pipeline{
		Resolver:   geometry.NewResolver(),
		Searcher:   c,
		Dispatcher: dispatch.New(c, retriever, os.Stdout),
		Stdout:     os.Stdout,
	}
	return p.Run(ctx, params)
}

// downloadClient builds the HTTP client used for product files. Earthdata
// login redirects set session cookies, so the client keeps a cookie jar.
func downloadClient(cfg *config.Config) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	var transport http.RoundTripper = http.DefaultTransport.(*http.Transport).Clone()
	switch {
	case cfg.Earthdata.Token != "":
		log.Debug("Using Earthdata bearer token for downloads")
		transport = &auth.BearerTokenTransport{
			Token: cfg.Earthdata.Token,
			Hosts: cfg.Earthdata.Hosts,
			Base:  transport,
		}
	case cfg.Earthdata.Username != "":
		log.Debug("Using Earthdata basic auth for downloads")
		transport = &auth.BasicAuthTransport{
			Username: cfg.Earthdata.Username,
			Password: cfg.Earthdata.Password,
			Hosts:    cfg.Earthdata.Hosts,
			Base:     transport,
		}
	}

	return &http.Client{
		Jar:       jar,
		Transport: transport,
	}, nil
}
