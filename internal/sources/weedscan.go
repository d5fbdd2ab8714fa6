package sources

import (
	"bytes"
	"context"
	"io"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"weedlist/internal"
	"weedlist/internal/config"
)

// WeedScan wraps the scientific name in literal asterisks inside the link
// title attribute.
var reWeedScanTitle = regexp.MustCompile(`\*([A-Z][a-z]+ [a-z\-]+)\*`)

type WeedScanSource struct {
	cfg     config.Config
	fetcher *fetcher
}

func NewWeedScanSource(cfg config.Config, f *fetcher) *WeedScanSource {
	return &WeedScanSource{cfg: cfg, fetcher: f}
}

func (s *WeedScanSource) ID() internal.SourceID { return internal.SourceWeedScan }

func (s *WeedScanSource) Names(ctx context.Context) ([]string, error) {
	body, err := s.fetcher.get(ctx, s.cfg.WeedScanURL, nil)
	if err != nil {
		return nil, err
	}
	return ParseWeedScan(bytes.NewReader(body))
}

func ParseWeedScan(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	out := []string{}
	doc.Find("td").Each(func(_ int, td *goquery.Selection) {
		a := td.Find("a").First()
		if a.Length() == 0 {
			return
		}
		title, _ := a.Attr("title")
		if m := reWeedScanTitle.FindStringSubmatch(title); m != nil {
			out = append(out, m[1])
		}
	})
	return out, nil
}
