package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

func runRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	featurePath := fs.String("feature-table", defaultFeatureTable, "Feature table TSV (classic biom export, .gz supported)")
	taxonomyPath := fs.String("taxonomy", defaultTaxonomy, "Taxonomy TSV with Feature ID and Taxon columns")
	sample := fs.String("sample", "", "Sample column to chart (default: first sample column)")
	minConfidence := fs.Float64("min-confidence", 0, "Relabel assignments below this confidence as Unassigned (0 disables)")
	outDir := fs.String("outdir", ".", "Output directory for chart HTML files")
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

	if err := renderCharts(rows, stats.Sample, *outDir); err != nil {
		fatalf("render failed: %v", err)
	}
	logf("render: %d merged rows, sample %s -> %s", stats.MergedRows, stats.Sample, *outDir)
}

// renderCharts writes the three chart documents, always overwriting. The
// renders run concurrently and independently: one failure does not stop
// the others, and the first error is reported after all finish.
func renderCharts(rows []mergedRow, sample, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var g errgroup.Group
	g.Go(func() error {
		return renderChart(newSunburstChart(rows, sample), filepath.Join(outDir, sunburstFile))
	})
	g.Go(func() error {
		return renderChart(newTreemapChart(rows, sample), filepath.Join(outDir, treemapFile))
	})
	g.Go(func() error {
		return renderChart(newPieChart(rows, sample), filepath.Join(outDir, pieFile))
	})
	return g.Wait()
}

func renderChart(chart interface{ Render(io.Writer) error }, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := chart.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
