// Package sources holds one adapter per upstream weed list. Every adapter
// implements the same capability: produce a finite slice of raw candidate
// name strings. Network retrieval is separated from parsing so parsers can
// be exercised against fixtures.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"weedlist/internal"
	"weedlist/internal/config"
	"weedlist/internal/diag"
)

type Source interface {
	ID() internal.SourceID
	Names(ctx context.Context) ([]string, error)
}

// All constructs the full adapter roster in the order the lists are
// usually published.
func All(cfg config.Config) []Source {
	f := newFetcher(cfg)
	return []Source{
		NewQLDSource(cfg, f, "prohibited"),
		NewQLDSource(cfg, f, "restricted"),
		NewNSWSource(cfg, f),
		NewNTPDFSource(cfg, f),
		NewVICPDFSource(cfg),
		NewSAPDFSource(cfg),
		NewWACSVSource(cfg),
		NewTableSource(f, internal.SourceTASTable, cfg.TASTableURL, "scientific"),
		NewWeedScanSource(cfg, f),
		NewWONSSource(cfg, f),
		NewBCCCSVSource(cfg),
		NewLucidSource(cfg),
	}
}

// Collect runs every adapter in turn. One adapter failing (network error,
// missing local file) is recorded and skipped; the others still run.
func Collect(ctx context.Context, srcs []Source, sink diag.Sink) []internal.RawName {
	out := make([]internal.RawName, 0)
	for _, src := range srcs {
		names, err := src.Names(ctx)
		if err != nil {
			if sink != nil {
				sink.Record(diag.Event{Kind: diag.KindSourceError, Candidate: string(src.ID()), Detail: err.Error()})
			}
			continue
		}
		for _, name := range names {
			out = append(out, internal.RawName{Source: src.ID(), Name: name})
		}
		if sink != nil {
			sink.Record(diag.Event{Kind: diag.KindSource, Candidate: string(src.ID()), Detail: fmt.Sprintf("extracted %d species", len(names))})
		}
	}
	return out
}

type fetcher struct {
	client    *http.Client
	userAgent string
}

func newFetcher(cfg config.Config) *fetcher {
	return &fetcher{
		client:    &http.Client{Timeout: 60 * time.Second},
		userAgent: cfg.HTTPUserAgent,
	}
}

func (f *fetcher) get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
