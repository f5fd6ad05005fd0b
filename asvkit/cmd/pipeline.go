package cmd

import (
	"flag"
	"path/filepath"
)

func runPipeline(args []string) {
	fs := flag.NewFlagSet("pipeline", flag.ExitOnError)
	featurePath := fs.String("feature-table", defaultFeatureTable, "Feature table TSV (classic biom export, .gz supported)")
	taxonomyPath := fs.String("taxonomy", defaultTaxonomy, "Taxonomy TSV with Feature ID and Taxon columns")
	sample := fs.String("sample", "", "Sample column to process (default: first sample column)")
	minConfidence := fs.Float64("min-confidence", 0, "Relabel assignments below this confidence as Unassigned (0 disables)")
	outDir := fs.String("outdir", ".", "Output directory for charts, merged table and report")
	format := fs.String("format", formatTSV, "Merged table format: tsv or parquet")
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

	logf("Render charts -> %s", *outDir)
	if err := renderCharts(rows, stats.Sample, *outDir); err != nil {
		fatalf("render failed: %v", err)
	}

	tablePath := filepath.Join(*outDir, exportFileName(*format, *gzipOut))
	logf("Export merged table -> %s", tablePath)
	if err := writeMergedTable(rows, tablePath, *format, *gzipOut); err != nil {
		fatalf("export failed: %v", err)
	}

	reportPath := filepath.Join(*outDir, summaryFileName)
	logf("Write summary -> %s", reportPath)
	if err := writeSummaryReport(reportPath, summarize(rows, stats)); err != nil {
		fatalf("summary failed: %v", err)
	}

	logf("pipeline: %d merged rows, sample %s", stats.MergedRows, stats.Sample)
}
