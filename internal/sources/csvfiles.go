package sources

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"weedlist/internal"
	"weedlist/internal/config"
	"weedlist/internal/util"
)

// WACSVSource reads the WA s22 declared-organisms export, a local drop in
// the data dir. The file opens with a preamble line; the real header is the
// second line.
type WACSVSource struct {
	cfg config.Config
}

func NewWACSVSource(cfg config.Config) *WACSVSource { return &WACSVSource{cfg: cfg} }

func (s *WACSVSource) ID() internal.SourceID { return internal.SourceWACSV }

func (s *WACSVSource) Names(ctx context.Context) ([]string, error) {
	path := filepath.Join(s.cfg.DataDir, s.cfg.WACSVFilename)
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseWACSV(bytes.NewReader(blob))
}

func ParseWACSV(r io.Reader) ([]string, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []string{}, nil
	}

	header := records[1]
	sciIdx := headerIndex(header, "Scientific name")
	if sciIdx < 0 {
		return []string{}, nil
	}

	out := []string{}
	for _, row := range records[2:] {
		if sciIdx >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[sciIdx])
		if name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// BCCCSVSource reads the Brisbane City Council weed list, a local drop with
// a botanicalName column.
type BCCCSVSource struct {
	cfg config.Config
}

func NewBCCCSVSource(cfg config.Config) *BCCCSVSource { return &BCCCSVSource{cfg: cfg} }

func (s *BCCCSVSource) ID() internal.SourceID { return internal.SourceBCCCSV }

func (s *BCCCSVSource) Names(ctx context.Context) ([]string, error) {
	path := filepath.Join(s.cfg.DataDir, s.cfg.BCCCSVFilename)
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBCCCSV(bytes.NewReader(blob))
}

func ParseBCCCSV(r io.Reader) ([]string, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []string{}, nil
	}

	sciIdx := headerIndex(records[0], "botanicalName")
	if sciIdx < 0 {
		return []string{}, nil
	}

	out := []string{}
	for _, row := range records[1:] {
		if sciIdx >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[sciIdx])
		if util.IsBinomial(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	blob = bytes.TrimPrefix(blob, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(blob))
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

func headerIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
