package sources

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"weedlist/internal"
	"weedlist/internal/util"
)

// TableSource extracts names from the first HTML table on a page, locating
// the scientific-name column by a header keyword. Used for the Tasmanian
// declared-weeds index and reusable for any similarly shaped list.
type TableSource struct {
	fetcher *fetcher
	id      internal.SourceID
	url     string
	keyword string
}

func NewTableSource(f *fetcher, id internal.SourceID, url, keyword string) *TableSource {
	return &TableSource{fetcher: f, id: id, url: url, keyword: keyword}
}

func (s *TableSource) ID() internal.SourceID { return s.id }

func (s *TableSource) Names(ctx context.Context) ([]string, error) {
	body, err := s.fetcher.get(ctx, s.url, nil)
	if err != nil {
		return nil, err
	}
	return ParseTable(bytes.NewReader(body), s.keyword)
}

// ParseTable reads the first table in the document and returns every cell of
// the column whose header contains keyword, where the cell starts with a
// binomial name.
func ParseTable(r io.Reader, keyword string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return []string{}, nil
	}

	sciIdx := -1
	table.Find("th").Each(func(i int, th *goquery.Selection) {
		if sciIdx >= 0 {
			return
		}
		if strings.Contains(strings.ToLower(strings.TrimSpace(th.Text())), keyword) {
			sciIdx = i
		}
	})

	out := []string{}
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return out, nil
	}
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if sciIdx < 0 || cells.Length() <= sciIdx {
			return
		}
		name := util.NormalizeSpaces(cells.Eq(sciIdx).Text())
		if util.HasBinomialPrefix(name) {
			out = append(out, name)
		}
	})
	return out, nil
}
