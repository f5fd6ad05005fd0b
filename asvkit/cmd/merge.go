package cmd

// mergedRow is one inner-join result: the canonical columns plus the
// resolved ranks. Taxonomy keeps the raw lineage string even when low
// confidence relabels the ranks.
type mergedRow struct {
	ASVID     string
	Abundance float64
	Taxonomy  string
	Ranks     [taxRankCount]string
}

// mergeStats counts what the parse and join kept and dropped.
type mergeStats struct {
	Sample                string `json:"sample"`
	FeatureRows           int    `json:"feature_rows"`
	TaxonomyRows          int    `json:"taxonomy_rows"`
	MergedRows            int    `json:"merged_rows"`
	UnmatchedFeatures     int    `json:"unmatched_features"`
	UnmatchedTaxa         int    `json:"unmatched_taxonomy"`
	DuplicateFeatures     int    `json:"duplicate_features"`
	DuplicateTaxa         int    `json:"duplicate_taxonomy"`
	MalformedFeatureRows  int    `json:"malformed_feature_rows"`
	MalformedTaxonomyRows int    `json:"malformed_taxonomy_rows"`
	LowConfidence         int    `json:"low_confidence_relabels"`
}

type mergeOptions struct {
	Sample        string
	MinConfidence float64
	Progress      bool
}

func mergeTables(featurePath, taxonomyPath string, opts mergeOptions) ([]mergedRow, *mergeStats, error) {
	features, err := readFeatureTable(featurePath, opts.Sample, opts.Progress)
	if err != nil {
		return nil, nil, err
	}
	taxa, err := readTaxonomyTable(taxonomyPath, opts.Progress)
	if err != nil {
		return nil, nil, err
	}

	rows, stats := joinTables(features, taxa, opts.MinConfidence)
	if stats.MalformedFeatureRows > 0 || stats.MalformedTaxonomyRows > 0 {
		logf("merge: skipped %d malformed feature rows, %d malformed taxonomy rows",
			stats.MalformedFeatureRows, stats.MalformedTaxonomyRows)
	}
	if stats.UnmatchedFeatures > 0 || stats.UnmatchedTaxa > 0 {
		logf("merge: dropped %d features without taxonomy, %d taxonomy rows without features",
			stats.UnmatchedFeatures, stats.UnmatchedTaxa)
	}
	return rows, stats, nil
}

// joinTables inner-joins the two tables on feature id, preserving feature
// table order. Assignments below minConfidence keep their abundance but
// resolve every rank to the Unassigned sentinel.
func joinTables(features *featureTable, taxa *taxonomyTable, minConfidence float64) ([]mergedRow, *mergeStats) {
	stats := &mergeStats{
		Sample:                features.Sample,
		FeatureRows:           len(features.IDs),
		TaxonomyRows:          taxa.Rows,
		DuplicateFeatures:     features.Duplicates,
		DuplicateTaxa:         taxa.Duplicates,
		MalformedFeatureRows:  features.Malformed,
		MalformedTaxonomyRows: taxa.Malformed,
	}

	rows := make([]mergedRow, 0, len(features.IDs))
	for _, id := range features.IDs {
		lineage, ok := taxa.Lineage[id]
		if !ok {
			stats.UnmatchedFeatures++
			continue
		}
		row := mergedRow{ASVID: id, Abundance: features.Abundance[id], Taxonomy: lineage}
		if conf, ok := taxa.Confidence[id]; ok && minConfidence > 0 && conf < minConfidence {
			stats.LowConfidence++
			for i := range row.Ranks {
				row.Ranks[i] = rankUnassigned
			}
		} else {
			row.Ranks = splitLineage(lineage)
		}
		rows = append(rows, row)
	}

	stats.MergedRows = len(rows)
	stats.UnmatchedTaxa = taxa.Rows - len(rows)
	return rows, stats
}
