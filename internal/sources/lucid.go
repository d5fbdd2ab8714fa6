package sources

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"weedlist/internal"
	"weedlist/internal/config"
	"weedlist/internal/util"
)

// LucidSource drives the Lucid key player in a headless browser session.
// The entity list renders client-side, so a plain HTTP fetch sees nothing.
// The session is torn down on every exit path, including failures.
type LucidSource struct {
	cfg config.Config
}

func NewLucidSource(cfg config.Config) *LucidSource { return &LucidSource{cfg: cfg} }

func (s *LucidSource) ID() internal.SourceID { return internal.SourceLucidKey }

func (s *LucidSource) Names(ctx context.Context) ([]string, error) {
	out := []string{}
	for _, url := range s.cfg.LucidKeyURLs {
		labels, err := s.scrapeKey(ctx, url)
		if err != nil {
			return nil, err
		}
		out = append(out, ExtractLucidNames(labels)...)
	}
	return out, nil
}

func (s *LucidSource) scrapeKey(ctx context.Context, url string) ([]string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var labels []string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(time.Duration(s.cfg.LucidWaitSec)*time.Second),
		chromedp.Evaluate(`Array.from(document.getElementsByClassName("Label")).map(e => e.textContent)`, &labels),
	)
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// ExtractLucidNames reduces entity labels to their leading binomial, when
// one is present. Labels carry common names and author strings after it.
func ExtractLucidNames(labels []string) []string {
	out := []string{}
	for _, label := range labels {
		name, ok := util.ExtractBinomial(strings.TrimSpace(label))
		if ok {
			out = append(out, name)
		}
	}
	return out
}
