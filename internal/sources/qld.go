package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"weedlist/internal"
	"weedlist/internal/config"
	"weedlist/internal/util"
)

// QLDSource scrapes the Queensland invasive-plant card pages; one instance
// per category (prohibited, restricted).
type QLDSource struct {
	cfg      config.Config
	fetcher  *fetcher
	category string
}

func NewQLDSource(cfg config.Config, f *fetcher, category string) *QLDSource {
	return &QLDSource{cfg: cfg, fetcher: f, category: category}
}

func (s *QLDSource) ID() internal.SourceID {
	if s.category == "prohibited" {
		return internal.SourceQLDProhibited
	}
	return internal.SourceQLDRestricted
}

func (s *QLDSource) Names(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.QLDBaseURL, "/"), s.category)
	body, err := s.fetcher.get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return ParseQLDCards(bytes.NewReader(body))
}

// ParseQLDCards pulls the scientific name out of each species card.
func ParseQLDCards(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	out := []string{}
	doc.Find("div.bq-qgds-card").Each(func(_ int, card *goquery.Selection) {
		sci := card.Find("p.scientific").First()
		if sci.Length() == 0 {
			return
		}
		name := strings.TrimSpace(sci.Text())
		if util.IsBinomial(name) {
			out = append(out, name)
		}
	})
	return out, nil
}
