package cmd

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func runManifest(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	output := fs.String("output", "manifest.tsv", "Output manifest TSV")
	sampleID := fs.String("sample-id", "", "Sample id override (single FASTQ only; default: derived from file name)")
	force := fs.Bool("force", false, "Overwrite an existing manifest")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args failed: %v", err)
	}
	fastqs := fs.Args()
	if len(fastqs) == 0 {
		fatalf("at least one FASTQ path is required")
	}

	if !*force && fileExists(*output) {
		fmt.Fprintf(os.Stderr, "Manifest exists, skipping: %s\n", *output)
		return
	}

	if err := writeImportManifest(fastqs, *sampleID, *output); err != nil {
		fatalf("manifest failed: %v", err)
	}
	logf("manifest: %d samples -> %s", len(fastqs), *output)
}

// writeImportManifest writes a QIIME2 single-end import manifest: one row
// per FASTQ with a sample id and the file's absolute path. Every FASTQ must
// exist and every derived sample id must be unique.
func writeImportManifest(fastqs []string, sampleID, output string) error {
	if sampleID != "" && len(fastqs) > 1 {
		return errors.New("sample-id requires exactly one FASTQ")
	}
	for _, fq := range fastqs {
		if _, err := os.Stat(fq); err != nil {
			return fmt.Errorf("stat fastq: %w", err)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	writer := bufio.NewWriter(f)

	if _, err := writer.WriteString("sample-id\tabsolute-filepath\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	seen := make(map[string]struct{}, len(fastqs))
	for _, fq := range fastqs {
		abs, err := filepath.Abs(fq)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", fq, err)
		}
		id := sampleID
		if id == "" {
			id = sampleIDFromPath(fq)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate sample id %q", id)
		}
		seen[id] = struct{}{}
		if _, err := writer.WriteString(id + "\t" + abs + "\n"); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}
	return nil
}

// sampleIDFromPath derives a sample id from a FASTQ file name, keeping
// letters, digits, dot and dash. QIIME rejects most other characters.
func sampleIDFromPath(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{".fastq.gz", ".fq.gz", ".fastq", ".fq"} {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}
	var b strings.Builder
	b.Grow(len(base))
	for i := 0; i < len(base); i++ {
		c := base[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '.' || c == '-' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('-')
	}
	return b.String()
}
