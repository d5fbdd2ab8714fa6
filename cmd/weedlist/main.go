package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"weedlist/internal/config"
	"weedlist/internal/diag"
	"weedlist/internal/powo"
	"weedlist/internal/report"
	"weedlist/internal/sources"
	"weedlist/internal/storage"
	"weedlist/internal/validate"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	sink := diag.NewLoggerSink(os.Stderr)
	ctx := context.Background()

	cmd := os.Args[1]
	switch cmd {
	case "collect":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		only := fs.String("sources", "", "comma-separated source ids (default: all)")
		_ = fs.Parse(os.Args[2:])
		runID, count := collect(ctx, cfg, db, sink, *only)
		fmt.Printf("collect done run=%d rawNames=%d\n", runID, count)
	case "validate":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.Int64("runId", 0, "run to validate (default: latest)")
		out := fs.String("out", "", "artifact path (default from config)")
		_ = fs.Parse(os.Args[2:])
		id, accepted := validateRun(ctx, cfg, db, sink, *runID, *out)
		fmt.Printf("validate done run=%d accepted=%d\n", id, accepted)
	case "export:json":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.Int64("runId", 0, "run to export (default: latest)")
		out := fs.String("out", "", "artifact path (default from config)")
		_ = fs.Parse(os.Args[2:])
		id := resolveRun(db, *runID)
		names, err := db.ListAcceptedNames(id)
		must(err)
		path := firstNonEmpty(*out, cfg.ArtifactPath)
		must(report.WriteJSON(path, names))
		fmt.Printf("exported %d accepted names to %s\n", len(names), path)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.Int64("runId", 0, "run to export (default: latest)")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		id := resolveRun(db, *runID)
		rows, err := db.ListValidations(id)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no validation rows for run=%d", id))
		}
		must(report.WriteXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		only := fs.String("sources", "", "comma-separated source ids (default: all)")
		out := fs.String("out", "", "artifact path (default from config)")
		_ = fs.Parse(os.Args[2:])
		runID, count := collect(ctx, cfg, db, sink, *only)
		fmt.Printf("collected %d raw names\n", count)
		_, accepted := validateRun(ctx, cfg, db, sink, runID, *out)
		fmt.Printf("run done run=%d accepted=%d\n", runID, accepted)
	default:
		usage()
		os.Exit(1)
	}
}

func collect(ctx context.Context, cfg config.Config, db *storage.DB, sink diag.Sink, only string) (int64, int) {
	srcs := sources.All(cfg)
	if strings.TrimSpace(only) != "" {
		wanted := map[string]struct{}{}
		for _, id := range strings.Split(only, ",") {
			wanted[strings.TrimSpace(id)] = struct{}{}
		}
		filtered := make([]sources.Source, 0, len(srcs))
		for _, s := range srcs {
			if _, ok := wanted[string(s.ID())]; ok {
				filtered = append(filtered, s)
			}
		}
		srcs = filtered
	}

	runID, err := db.InsertRun(traceID())
	must(err)

	raw := sources.Collect(ctx, srcs, sink)
	must(db.InsertRawNames(runID, raw))
	_ = db.FinishRun(runID, map[string]int{"rawNames": len(raw), "sources": len(srcs)})
	return runID, len(raw)
}

func validateRun(ctx context.Context, cfg config.Config, db *storage.DB, sink diag.Sink, runID int64, out string) (int64, int) {
	runID = resolveRun(db, runID)

	raw, err := db.ListRawNames(runID)
	must(err)
	candidates := validate.BuildCandidateSet(raw)

	client := powo.NewClient(cfg, db)
	v := validate.New(client, sink, cfg.SynonymScoreThreshold)
	accepted, rows := v.Run(ctx, candidates)

	must(db.InsertValidations(runID, rows))
	_ = db.FinishRun(runID, map[string]int{
		"candidates": len(candidates),
		"accepted":   len(accepted),
	})

	path := firstNonEmpty(out, cfg.ArtifactPath)
	must(report.WriteJSON(path, accepted))
	return runID, len(accepted)
}

func resolveRun(db *storage.DB, runID int64) int64 {
	if runID > 0 {
		return runID
	}
	latest, err := db.LatestRunID()
	must(err)
	if latest == 0 {
		must(fmt.Errorf("no runs recorded yet; run collect first"))
	}
	return latest
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func usage() {
	fmt.Println("usage: weedlist <command>")
	fmt.Println("commands:")
	fmt.Println("  collect [--sources=qld_prohibited,nsw,...]")
	fmt.Println("  validate [--runId=1] [--out=./out/accepted_species.json]")
	fmt.Println("  export:json [--runId=1] [--out=...]")
	fmt.Println("  export:xlsx [--runId=1] --out=./out/report.xlsx")
	fmt.Println("  run [--sources=...] [--out=...]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
