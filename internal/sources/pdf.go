package sources

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	pdf "github.com/ledongthuc/pdf"

	"weedlist/internal"
	"weedlist/internal/config"
	"weedlist/internal/util"
)

var (
	reSALine  = regexp.MustCompile(`^([A-Z][a-z]+ [a-z\-]+(?: [a-z\-]+)?)\s`)
	reVICLine = regexp.MustCompile(`^([A-Z][a-z]+ [a-z\-]+(?: [a-z\-\.]+)?)`)
)

// SAPDFSource reads the South Australian declared-plants PDF from the data
// dir; a species line opens with the binomial followed by whitespace.
type SAPDFSource struct {
	cfg config.Config
}

func NewSAPDFSource(cfg config.Config) *SAPDFSource { return &SAPDFSource{cfg: cfg} }

func (s *SAPDFSource) ID() internal.SourceID { return internal.SourceSAPDF }

func (s *SAPDFSource) Names(ctx context.Context) ([]string, error) {
	text, err := pdfTextFromFile(filepath.Join(s.cfg.DataDir, s.cfg.SAPDFFilename))
	if err != nil {
		return nil, err
	}
	return matchLines(text, reSALine), nil
}

// VICPDFSource reads the Victorian noxious-weeds PDF from the data dir.
type VICPDFSource struct {
	cfg config.Config
}

func NewVICPDFSource(cfg config.Config) *VICPDFSource { return &VICPDFSource{cfg: cfg} }

func (s *VICPDFSource) ID() internal.SourceID { return internal.SourceVICPDF }

func (s *VICPDFSource) Names(ctx context.Context) ([]string, error) {
	text, err := pdfTextFromFile(filepath.Join(s.cfg.DataDir, s.cfg.VICPDFFilename))
	if err != nil {
		return nil, err
	}
	return matchLines(text, reVICLine), nil
}

// NTPDFSource reads the NT declared-weeds PDF, downloading it into the data
// dir first when the drop is missing. The NT site refuses requests without
// a same-site referer.
type NTPDFSource struct {
	cfg     config.Config
	fetcher *fetcher
}

func NewNTPDFSource(cfg config.Config, f *fetcher) *NTPDFSource {
	return &NTPDFSource{cfg: cfg, fetcher: f}
}

func (s *NTPDFSource) ID() internal.SourceID { return internal.SourceNTPDF }

func (s *NTPDFSource) Names(ctx context.Context) ([]string, error) {
	path := filepath.Join(s.cfg.DataDir, s.cfg.NTPDFFilename)
	if _, err := os.Stat(path); err != nil {
		if err := s.download(ctx, path); err != nil {
			return nil, err
		}
	}

	text, err := pdfTextFromFile(path)
	if err != nil {
		return nil, err
	}
	return ParseNTLines(text), nil
}

func (s *NTPDFSource) download(ctx context.Context, path string) error {
	blob, err := s.fetcher.get(ctx, s.cfg.NTPDFURL, map[string]string{
		"Accept":  "application/pdf",
		"Referer": "https://nt.gov.au/",
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

// ParseNTLines takes the first two tokens of each capitalized line as a
// candidate binomial.
func ParseNTLines(text string) []string {
	out := []string{}
	for _, line := range splitLines(text) {
		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			continue
		}
		first := []rune(tokens[0])
		if len(first) == 0 || !unicode.IsUpper(first[0]) {
			continue
		}
		name := tokens[0] + " " + tokens[1]
		if util.HasBinomialPrefix(name) {
			out = append(out, name)
		}
	}
	return out
}

func matchLines(text string, re *regexp.Regexp) []string {
	out := []string{}
	for _, line := range splitLines(text) {
		if m := re.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}

func pdfTextFromFile(path string) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return pdfText(blob)
}

func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
