package sources

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"weedlist/internal"
	"weedlist/internal/config"
)

// The NSW browse page sets genus and epithet in separate <i> elements.
var reNSWBinomial = regexp.MustCompile(`^[A-Z][a-z]+ [a-z\-]+$`)

type NSWSource struct {
	cfg     config.Config
	fetcher *fetcher
}

func NewNSWSource(cfg config.Config, f *fetcher) *NSWSource {
	return &NSWSource{cfg: cfg, fetcher: f}
}

func (s *NSWSource) ID() internal.SourceID { return internal.SourceNSW }

func (s *NSWSource) Names(ctx context.Context) ([]string, error) {
	body, err := s.fetcher.get(ctx, s.cfg.NSWListURL, nil)
	if err != nil {
		return nil, err
	}
	return ParseNSWList(bytes.NewReader(body))
}

func ParseNSWList(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	out := []string{}
	doc.Find("#contentbuffer span").Each(func(_ int, span *goquery.Selection) {
		ital := span.Find("i")
		if ital.Length() < 2 {
			return
		}
		genus := strings.TrimSpace(ital.Eq(0).Text())
		epithet := strings.TrimSpace(ital.Eq(1).Text())
		name := genus + " " + epithet
		if reNSWBinomial.MatchString(name) {
			out = append(out, name)
		}
	})
	return out, nil
}
