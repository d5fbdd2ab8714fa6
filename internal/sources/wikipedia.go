package sources

import (
	"bytes"
	"context"
	"io"

	"github.com/PuerkitoBio/goquery"

	"weedlist/internal"
	"weedlist/internal/config"
	"weedlist/internal/util"
)

// WONSSource reads the Weeds of National Significance wikitable; the second
// column carries the scientific name.
type WONSSource struct {
	cfg     config.Config
	fetcher *fetcher
}

func NewWONSSource(cfg config.Config, f *fetcher) *WONSSource {
	return &WONSSource{cfg: cfg, fetcher: f}
}

func (s *WONSSource) ID() internal.SourceID { return internal.SourceWONS }

func (s *WONSSource) Names(ctx context.Context) ([]string, error) {
	body, err := s.fetcher.get(ctx, s.cfg.WONSWikiURL, nil)
	if err != nil {
		return nil, err
	}
	return ParseWONSTable(bytes.NewReader(body))
}

func ParseWONSTable(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	out := []string{}
	table := doc.Find("table.wikitable").First()
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return out, nil
	}
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		name := util.NormalizeSpaces(cols.Eq(1).Text())
		if util.HasBinomialPrefix(name) {
			out = append(out, name)
		}
	})
	return out, nil
}
