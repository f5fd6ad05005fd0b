package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// taxRanks are the levels a QIIME-style lineage string resolves to, in order.
var taxRanks = [...]string{"Domain", "Phylum", "Class", "Order", "Family", "Genus", "Species"}

const taxRankCount = len(taxRanks)

// rankUnassigned marks ranks the classifier did not resolve.
const rankUnassigned = "Unassigned"

// taxonomyTable indexes classifier output by feature id. Confidence holds
// an entry only when the column exists and the cell parses as a number.
type taxonomyTable struct {
	Lineage    map[string]string
	Confidence map[string]float64
	Rows       int
	Duplicates int
	Malformed  int
}

func readTaxonomyTable(path string, showProgress bool) (*taxonomyTable, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy table: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	totalRows := -1
	if showProgress {
		count, err := countLines(path)
		if err != nil {
			return nil, fmt.Errorf("count taxonomy rows: %w", err)
		}
		if count > 0 {
			totalRows = count
		}
	}
	bar := newProgress(totalRows, "taxonomy", showProgress)

	scanner := newLineScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read taxonomy header: %w", err)
		}
		return nil, errors.New("taxonomy table is empty")
	}
	bar.increment()

	header := strings.Split(trimCR(scanner.Text()), "\t")
	idxFeature := indexOf(header, "Feature ID")
	idxTaxon := indexOf(header, "Taxon")
	idxConfidence := indexOf(header, "Confidence")
	if idxFeature < 0 || idxTaxon < 0 {
		return nil, errors.New("required headers missing in taxonomy table")
	}

	table := &taxonomyTable{
		Lineage:    make(map[string]string),
		Confidence: make(map[string]float64),
	}
	for scanner.Scan() {
		bar.increment()
		line := trimCR(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) <= idxFeature || len(fields) <= idxTaxon {
			table.Malformed++
			continue
		}
		id := strings.TrimSpace(fields[idxFeature])
		if id == "" {
			table.Malformed++
			continue
		}
		if _, ok := table.Lineage[id]; ok {
			table.Duplicates++
			continue
		}
		table.Rows++
		table.Lineage[id] = fields[idxTaxon]
		if idxConfidence >= 0 && idxConfidence < len(fields) {
			if conf, err := strconv.ParseFloat(strings.TrimSpace(fields[idxConfidence]), 64); err == nil {
				table.Confidence[id] = conf
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan taxonomy table: %w", err)
	}

	bar.finish()
	return table, nil
}

// splitLineage maps a semicolon-delimited lineage onto the fixed ranks.
// Missing or empty segments resolve to the Unassigned sentinel; segments
// beyond the last rank are ignored.
func splitLineage(lineage string) [taxRankCount]string {
	var ranks [taxRankCount]string
	segments := strings.Split(lineage, ";")
	for i := 0; i < taxRankCount; i++ {
		value := ""
		if i < len(segments) {
			value = strings.TrimSpace(stripRankPrefix(strings.TrimSpace(segments[i])))
		}
		if value == "" {
			value = rankUnassigned
		}
		ranks[i] = value
	}
	return ranks
}

// stripRankPrefix removes a leading rank marker (single lowercase letter,
// double underscore) when present. Names without the marker pass through.
func stripRankPrefix(segment string) string {
	if len(segment) >= 3 && segment[0] >= 'a' && segment[0] <= 'z' && segment[1] == '_' && segment[2] == '_' {
		return segment[3:]
	}
	return segment
}
