package cmd

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
)

const writerBufferSize = 1 << 20

const (
	formatTSV     = "tsv"
	formatParquet = "parquet"
)

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	featurePath := fs.String("feature-table", defaultFeatureTable, "Feature table TSV (classic biom export, .gz supported)")
	taxonomyPath := fs.String("taxonomy", defaultTaxonomy, "Taxonomy TSV with Feature ID and Taxon columns")
	sample := fs.String("sample", "", "Sample column to export (default: first sample column)")
	minConfidence := fs.Float64("min-confidence", 0, "Relabel assignments below this confidence as Unassigned (0 disables)")
	output := fs.String("output", "", "Output path (default: merged_taxonomy.<ext> for the chosen format)")
	format := fs.String("format", formatTSV, "Output format: tsv or parquet")
	gzipOut := fs.Bool("gzip", false, "Compress TSV output to .tsv.gz")
	progressOn := fs.Bool("progress", true, "Show progress bars")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args failed: %v", err)
	}

	rows, stats, err := mergeTables(*featurePath, *taxonomyPath, mergeOptions{
		Sample:        *sample,
		MinConfidence: *minConfidence,
		Progress:      *progressOn,
	})
	if err != nil {
		fatalf("merge failed: %v", err)
	}

	path := *output
	if path == "" {
		path = exportFileName(*format, *gzipOut)
	}
	if err := writeMergedTable(rows, path, *format, *gzipOut); err != nil {
		fatalf("export failed: %v", err)
	}
	logf("export: %d merged rows, sample %s -> %s", stats.MergedRows, stats.Sample, path)
}

func exportFileName(format string, gzipOut bool) string {
	switch {
	case format == formatParquet:
		return "merged_taxonomy.parquet"
	case gzipOut:
		return "merged_taxonomy.tsv.gz"
	default:
		return "merged_taxonomy.tsv"
	}
}

func writeMergedTable(rows []mergedRow, path, format string, gzipOut bool) error {
	switch format {
	case formatTSV:
		return writeMergedTSV(rows, path, gzipOut)
	case formatParquet:
		if gzipOut {
			return errors.New("gzip applies to tsv output only")
		}
		return writeMergedParquet(rows, path)
	default:
		return fmt.Errorf("unknown format %q (want tsv or parquet)", format)
	}
}

func writeMergedTSV(rows []mergedRow, path string, gzipOut bool) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		_ = out.Close()
	}()

	var gz *pgzip.Writer
	var writer *bufio.Writer
	if gzipOut {
		gz, err = pgzip.NewWriterLevel(out, pgzip.DefaultCompression)
		if err != nil {
			return fmt.Errorf("create gzip writer: %w", err)
		}
		if err := gz.SetConcurrency(1<<20, runtime.GOMAXPROCS(0)); err != nil {
			return fmt.Errorf("set gzip concurrency: %w", err)
		}
		writer = bufio.NewWriterSize(gz, writerBufferSize)
	} else {
		writer = bufio.NewWriterSize(out, writerBufferSize)
	}

	if _, err := writer.WriteString(mergedHeader() + "\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if _, err := writer.WriteString(mergedLine(row) + "\n"); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("close gzip writer: %w", err)
		}
	}
	return nil
}

func mergedHeader() string {
	return "ASV_ID\tAbundance\tTaxonomy\t" + strings.Join(taxRanks[:], "\t")
}

func mergedLine(row mergedRow) string {
	fields := make([]string, 0, 3+taxRankCount)
	fields = append(fields, row.ASVID, formatAbundance(row.Abundance), row.Taxonomy)
	fields = append(fields, row.Ranks[:]...)
	return strings.Join(fields, "\t")
}

func formatAbundance(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
