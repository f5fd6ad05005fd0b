package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const summaryFileName = "merge_summary.json"

const topPhylaLimit = 10

// summaryReport extends the merge counters with abundance aggregates.
type summaryReport struct {
	mergeStats
	TotalAbundance      float64        `json:"total_abundance"`
	UnassignedAbundance float64        `json:"unassigned_phylum_abundance"`
	DistinctTaxa        map[string]int `json:"distinct_taxa_per_rank"`
	TopPhyla            []phylumShare  `json:"top_phyla"`
}

func runSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	featurePath := fs.String("feature-table", defaultFeatureTable, "Feature table TSV (classic biom export, .gz supported)")
	taxonomyPath := fs.String("taxonomy", defaultTaxonomy, "Taxonomy TSV with Feature ID and Taxon columns")
	sample := fs.String("sample", "", "Sample column to summarize (default: first sample column)")
	minConfidence := fs.Float64("min-confidence", 0, "Relabel assignments below this confidence as Unassigned (0 disables)")
	report := fs.String("report", "", "JSON report output path (default: stdout)")
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

	result := summarize(rows, stats)
	if *report == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fatalf("write summary: %v", err)
		}
	} else if err := writeSummaryReport(*report, result); err != nil {
		fatalf("write summary: %v", err)
	}

	logf("summary: features=%d taxa=%d merged=%d unmatched=%d/%d dup=%d/%d malformed=%d/%d low-conf=%d",
		stats.FeatureRows, stats.TaxonomyRows, stats.MergedRows,
		stats.UnmatchedFeatures, stats.UnmatchedTaxa,
		stats.DuplicateFeatures, stats.DuplicateTaxa,
		stats.MalformedFeatureRows, stats.MalformedTaxonomyRows,
		stats.LowConfidence)
}

// summarize folds the merged table into rank-level aggregates. The
// Unassigned sentinel never counts as a distinct taxon.
func summarize(rows []mergedRow, stats *mergeStats) summaryReport {
	report := summaryReport{
		mergeStats:   *stats,
		DistinctTaxa: make(map[string]int, taxRankCount),
	}

	seen := make([]map[string]struct{}, taxRankCount)
	for i := range seen {
		seen[i] = make(map[string]struct{})
	}
	for _, row := range rows {
		report.TotalAbundance += row.Abundance
		if row.Ranks[1] == rankUnassigned {
			report.UnassignedAbundance += row.Abundance
		}
		for i, value := range row.Ranks {
			if value == rankUnassigned {
				continue
			}
			seen[i][value] = struct{}{}
		}
	}
	for i, rank := range taxRanks {
		report.DistinctTaxa[rank] = len(seen[i])
	}

	shares := phylumShares(rows)
	if len(shares) > topPhylaLimit {
		shares = shares[:topPhylaLimit]
	}
	report.TopPhyla = shares
	return report
}

func writeSummaryReport(path string, report summaryReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
