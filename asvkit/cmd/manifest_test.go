package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampleIDFromPath(t *testing.T) {
	require.Equal(t, "tara-pacific-R1", sampleIDFromPath("/data/tara_pacific_R1.fastq.gz"))
	require.Equal(t, "sample.01", sampleIDFromPath("sample.01.fq"))
	require.Equal(t, "reads", sampleIDFromPath("reads.fastq"))
	require.Equal(t, "run-2-reads", sampleIDFromPath("run 2 reads.fq.gz"))
}

func TestWriteImportManifest(t *testing.T) {
	dir := t.TempDir()
	fq1 := filepath.Join(dir, "a_R1.fastq.gz")
	fq2 := filepath.Join(dir, "b_R1.fastq.gz")
	require.NoError(t, os.WriteFile(fq1, []byte("@r1\nACGT\n+\nIIII\n"), 0o644))
	require.NoError(t, os.WriteFile(fq2, []byte("@r1\nACGT\n+\nIIII\n"), 0o644))

	out := filepath.Join(dir, "manifest.tsv")
	require.NoError(t, writeImportManifest([]string{fq1, fq2}, "", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "sample-id\tabsolute-filepath", lines[0])
	require.Equal(t, "a-R1\t"+fq1, lines[1])
	require.Equal(t, "b-R1\t"+fq2, lines[2])
}

func TestWriteImportManifestSampleIDOverride(t *testing.T) {
	dir := t.TempDir()
	fq := filepath.Join(dir, "reads.fastq")
	require.NoError(t, os.WriteFile(fq, []byte("@r\nA\n+\nI\n"), 0o644))

	out := filepath.Join(dir, "manifest.tsv")
	require.NoError(t, writeImportManifest([]string{fq}, "tara-pacific-sample", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "tara-pacific-sample\t"+fq)
}

func TestWriteImportManifestErrors(t *testing.T) {
	dir := t.TempDir()
	fq := filepath.Join(dir, "reads.fastq")
	require.NoError(t, os.WriteFile(fq, []byte("@r\nA\n+\nI\n"), 0o644))
	out := filepath.Join(dir, "manifest.tsv")

	require.Error(t, writeImportManifest([]string{fq, fq}, "", out))
	require.Error(t, writeImportManifest([]string{fq, fq}, "forced-id", out))
	require.Error(t, writeImportManifest([]string{filepath.Join(dir, "missing.fastq")}, "", out))
}
