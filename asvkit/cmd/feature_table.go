package cmd

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// featureTable holds one sample's abundance column from a classic biom
// export, keyed by feature id, preserving file order.
type featureTable struct {
	Sample     string
	IDs        []string
	Abundance  map[string]float64
	Duplicates int
	Malformed  int
}

func readFeatureTable(path, sample string, showProgress bool) (*featureTable, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, fmt.Errorf("open feature table: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	totalRows := -1
	if showProgress {
		count, err := countLines(path)
		if err != nil {
			return nil, fmt.Errorf("count feature rows: %w", err)
		}
		if count > 0 {
			totalRows = count
		}
	}
	bar := newProgress(totalRows, "feature table", showProgress)

	scanner := newLineScanner(in)

	// Classic biom exports open with comment lines and carry the header in
	// the last of them (#OTU ID plus one column per sample). A table without
	// comment lines carries its header in the first line.
	var headerLine, firstData string
	haveData := false
	for scanner.Scan() {
		bar.increment()
		line := trimCR(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			headerLine = line
			continue
		}
		if headerLine == "" {
			headerLine = line
			continue
		}
		firstData = line
		haveData = true
		break
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feature table header: %w", err)
	}
	if headerLine == "" {
		return nil, errors.New("feature table is empty")
	}

	header := strings.Split(strings.TrimPrefix(headerLine, "#"), "\t")
	if len(header) < 2 {
		return nil, errors.New("feature table has no sample columns")
	}
	sampleIdx := 1
	if sample != "" {
		idx := indexOf(header[1:], sample)
		if idx < 0 {
			return nil, fmt.Errorf("sample column %q not in feature table header", sample)
		}
		sampleIdx = idx + 1
	}

	table := &featureTable{
		Sample:    header[sampleIdx],
		Abundance: make(map[string]float64),
	}
	addRow := func(line string) {
		fields := strings.Split(line, "\t")
		if len(fields) <= sampleIdx {
			table.Malformed++
			return
		}
		id := strings.TrimSpace(fields[0])
		if id == "" {
			table.Malformed++
			return
		}
		// ParseFloat accepts NaN and Inf; neither is a usable abundance.
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[sampleIdx]), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			table.Malformed++
			return
		}
		if _, ok := table.Abundance[id]; ok {
			table.Duplicates++
			return
		}
		table.IDs = append(table.IDs, id)
		table.Abundance[id] = value
	}

	if haveData {
		addRow(firstData)
	}
	for scanner.Scan() {
		bar.increment()
		line := trimCR(scanner.Text())
		if line == "" {
			continue
		}
		addRow(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan feature table: %w", err)
	}

	bar.finish()
	return table, nil
}
