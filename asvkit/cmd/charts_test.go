package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func chartRow(id string, abundance float64, lineage string) mergedRow {
	return mergedRow{ASVID: id, Abundance: abundance, Taxonomy: lineage, Ranks: splitLineage(lineage)}
}

func chartRows() []mergedRow {
	return []mergedRow{
		chartRow("a1", 10, "d__Bacteria;p__Proteobacteria;c__Gammaproteobacteria"),
		chartRow("a2", 5, "d__Bacteria;p__Proteobacteria;c__Alphaproteobacteria"),
		chartRow("a3", 4, "d__Bacteria;p__Bacteroidota;c__Bacteroidia"),
		chartRow("a4", 3, "d__Eukaryota;p__Chordata;c__Actinopteri"),
		chartRow("a5", 2, "Unassigned"),
	}
}

func TestBuildTaxonTreeAggregates(t *testing.T) {
	root := buildTaxonTree(chartRows())
	require.Len(t, root.children, 3)

	bacteria := root.children["Bacteria"]
	require.NotNil(t, bacteria)
	proteo := bacteria.children["Proteobacteria"]
	require.NotNil(t, proteo)
	require.Len(t, proteo.children, 2)
	require.InDelta(t, 10.0, proteo.children["Gammaproteobacteria"].value, 1e-9)

	unassigned := root.children["Unassigned"]
	require.NotNil(t, unassigned)
	require.InDelta(t, 2.0, unassigned.children["Unassigned"].children["Unassigned"].value, 1e-9)
}

func TestBuildTaxonTreeSumsDuplicateClasses(t *testing.T) {
	rows := []mergedRow{
		chartRow("a1", 1.5, "d__B;p__P;c__C"),
		chartRow("a2", 2.5, "d__B;p__P;c__C"),
	}
	root := buildTaxonTree(rows)
	require.InDelta(t, 4.0, root.children["B"].children["P"].children["C"].value, 1e-9)
}

func TestSunburstSeriesSortedAndNested(t *testing.T) {
	series := sunburstSeries(buildTaxonTree(chartRows()))
	require.Len(t, series, 3)
	require.Equal(t, "Bacteria", series[0].Name)
	require.Equal(t, "Eukaryota", series[1].Name)
	require.Equal(t, "Unassigned", series[2].Name)

	bacteria := series[0]
	require.Len(t, bacteria.Children, 2)
	require.Equal(t, "Bacteroidota", bacteria.Children[0].Name)
	require.Equal(t, "Proteobacteria", bacteria.Children[1].Name)

	leaves := bacteria.Children[1].Children
	require.Len(t, leaves, 2)
	require.Equal(t, "Alphaproteobacteria", leaves[0].Name)
	require.InDelta(t, 5.0, leaves[0].Value, 1e-9)
}

func TestTreemapNodesRoundValues(t *testing.T) {
	rows := []mergedRow{chartRow("a1", 2.6, "d__B;p__P;c__C")}
	nodes := treemapNodes(buildTaxonTree(rows))
	require.Len(t, nodes, 1)
	require.Equal(t, "B", nodes[0].Name)
	require.Equal(t, 3, nodes[0].Children[0].Children[0].Value)
}

func TestPhylumShares(t *testing.T) {
	rows := []mergedRow{
		chartRow("a1", 10, "d__B;p__X;c__C1"),
		chartRow("a2", 5, "d__B;p__X;c__C2"),
		chartRow("a3", 3, "d__B"),
		chartRow("a4", 5, "d__B;p__Y;c__C3"),
	}
	shares := phylumShares(rows)
	require.Equal(t, []phylumShare{
		{Name: "X", Abundance: 15},
		{Name: "Y", Abundance: 5},
	}, shares)
}

func TestPhylumSharesTieBreaksByName(t *testing.T) {
	rows := []mergedRow{
		chartRow("a1", 5, "d__B;p__Zeta"),
		chartRow("a2", 5, "d__B;p__Alpha"),
	}
	shares := phylumShares(rows)
	require.Equal(t, "Alpha", shares[0].Name)
	require.Equal(t, "Zeta", shares[1].Name)
}

func TestRenderChartsWritesAllThree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, renderCharts(chartRows(), "tara-sample", dir))

	for _, name := range []string{sunburstFile, treemapFile, pieFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		require.Contains(t, string(data), "echarts")
		require.Contains(t, string(data), "Proteobacteria")
		require.Contains(t, string(data), "tara-sample")
	}
}

func TestRenderChartsDeterministic(t *testing.T) {
	rows := chartRows()
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, renderCharts(rows, "s1", dirA))
	require.NoError(t, renderCharts(rows, "s1", dirB))

	for _, name := range []string{sunburstFile, treemapFile, pieFile} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestRenderChartsEmptyRows(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, renderCharts(nil, "s1", dir))
	for _, name := range []string{sunburstFile, treemapFile, pieFile} {
		require.True(t, fileExists(filepath.Join(dir, name)))
	}
}

func TestRenderChartsOneFailureKeepsOthers(t *testing.T) {
	dir := t.TempDir()
	// A directory squatting on the sunburst path makes that render fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, sunburstFile), 0o755))

	err := renderCharts(chartRows(), "s1", dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), sunburstFile)
	require.True(t, fileExists(filepath.Join(dir, treemapFile)))
	require.True(t, fileExists(filepath.Join(dir, pieFile)))
}

func TestRenderChartsOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, sunburstFile)
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	require.NoError(t, renderCharts(chartRows(), "s1", dir))
	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	require.NotEqual(t, "stale", string(data))
}

func TestRenderChartsCreatesOutDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, renderCharts(chartRows(), "s1", dir))
	require.True(t, fileExists(filepath.Join(dir, pieFile)))
}
