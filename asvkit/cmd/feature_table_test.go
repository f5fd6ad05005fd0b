package cmd

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadFeatureTableClassic(t *testing.T) {
	path := writeTempFile(t, "feature-table.tsv",
		"# Constructed from biom file\n"+
			"#OTU ID\ttara-pacific-sample\n"+
			"asv1\t2461.0\n"+
			"asv2\t15\n"+
			"asv3\t0\n")

	table, err := readFeatureTable(path, "", false)
	require.NoError(t, err)
	require.Equal(t, "tara-pacific-sample", table.Sample)
	require.Equal(t, []string{"asv1", "asv2", "asv3"}, table.IDs)
	require.InDelta(t, 2461.0, table.Abundance["asv1"], 1e-9)
	require.InDelta(t, 0.0, table.Abundance["asv3"], 1e-9)
}

func TestReadFeatureTableSampleSelection(t *testing.T) {
	path := writeTempFile(t, "feature-table.tsv",
		"# Constructed from biom file\n"+
			"#OTU ID\tsampleA\tsampleB\n"+
			"asv1\t5\t7\n")

	table, err := readFeatureTable(path, "sampleB", false)
	require.NoError(t, err)
	require.Equal(t, "sampleB", table.Sample)
	require.InDelta(t, 7.0, table.Abundance["asv1"], 1e-9)

	table, err = readFeatureTable(path, "", false)
	require.NoError(t, err)
	require.Equal(t, "sampleA", table.Sample)
	require.InDelta(t, 5.0, table.Abundance["asv1"], 1e-9)

	_, err = readFeatureTable(path, "sampleC", false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sampleC")
}

func TestReadFeatureTablePlainHeader(t *testing.T) {
	path := writeTempFile(t, "table.tsv",
		"OTU ID\ts1\n"+
			"asv1\t3\n")

	table, err := readFeatureTable(path, "", false)
	require.NoError(t, err)
	require.Equal(t, "s1", table.Sample)
	require.InDelta(t, 3.0, table.Abundance["asv1"], 1e-9)
}

func TestReadFeatureTableMalformedRows(t *testing.T) {
	path := writeTempFile(t, "table.tsv",
		"#OTU ID\ts1\n"+
			"asv1\t5\n"+
			"asv2\n"+
			"asv3\tabc\n"+
			"asv4\t-2\n"+
			"asv5\tNaN\n"+
			"asv6\t+Inf\n"+
			"\t9\n")

	table, err := readFeatureTable(path, "", false)
	require.NoError(t, err)
	require.Equal(t, []string{"asv1"}, table.IDs)
	require.Equal(t, 6, table.Malformed)
}

func TestReadFeatureTableDuplicates(t *testing.T) {
	path := writeTempFile(t, "table.tsv",
		"#OTU ID\ts1\n"+
			"asv1\t5\n"+
			"asv1\t8\n")

	table, err := readFeatureTable(path, "", false)
	require.NoError(t, err)
	require.Equal(t, 1, table.Duplicates)
	require.InDelta(t, 5.0, table.Abundance["asv1"], 1e-9)
}

func TestReadFeatureTableGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("#OTU ID\ts1\nasv1\t5\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	table, err := readFeatureTable(path, "", false)
	require.NoError(t, err)
	require.InDelta(t, 5.0, table.Abundance["asv1"], 1e-9)
}

func TestReadFeatureTableNoSampleColumns(t *testing.T) {
	path := writeTempFile(t, "table.tsv", "#OTU ID\nasv1\n")
	_, err := readFeatureTable(path, "", false)
	require.Error(t, err)
}

func TestReadFeatureTableEmpty(t *testing.T) {
	path := writeTempFile(t, "table.tsv", "")
	_, err := readFeatureTable(path, "", false)
	require.Error(t, err)
}

func TestReadFeatureTableMissingFile(t *testing.T) {
	_, err := readFeatureTable(filepath.Join(t.TempDir(), "nope.tsv"), "", false)
	require.Error(t, err)
}
