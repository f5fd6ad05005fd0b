package cmd

import (
	"fmt"
	"os"
)

const (
	defaultFeatureTable = "feature-table.tsv"
	defaultTaxonomy     = "taxonomy.tsv"
)

func Execute(args []string) {
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "render":
		runRender(args[1:])
	case "export":
		runExport(args[1:])
	case "summary":
		runSummary(args[1:])
	case "manifest":
		runManifest(args[1:])
	case "pipeline":
		runPipeline(args[1:])
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "AsvKit - ASV taxonomy charting tools")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  asvkit <command> [options]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  render     Build sunburst, treemap and pie chart HTML from QIIME2 exports")
	fmt.Fprintln(os.Stderr, "  export     Write the merged abundance-taxonomy table (TSV or Parquet)")
	fmt.Fprintln(os.Stderr, "  summary    Report merge statistics as JSON")
	fmt.Fprintln(os.Stderr, "  manifest   Write a QIIME2 single-end import manifest")
	fmt.Fprintln(os.Stderr, "  pipeline   Full pipeline: merge -> render -> export -> summary")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Run 'asvkit <command> -h' for command-specific options.")
}
