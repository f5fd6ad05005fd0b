package cmd

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	sunburstFile = "taxonomic_sunburst.html"
	treemapFile  = "taxonomic_treemap.html"
	pieFile      = "taxonomic_pie_chart.html"
)

// chartDepth is how many leading ranks feed the hierarchical charts.
const chartDepth = 3

const (
	chartWidth  = "1080px"
	chartHeight = "720px"
)

// taxonNode is one level of the aggregated rank hierarchy.
type taxonNode struct {
	name     string
	value    float64
	children map[string]*taxonNode
}

// buildTaxonTree folds merged rows into a Domain, Phylum, Class hierarchy
// with abundance summed at the leaves. Parent values are left to the chart,
// which totals its children.
func buildTaxonTree(rows []mergedRow) *taxonNode {
	root := &taxonNode{children: make(map[string]*taxonNode)}
	for _, row := range rows {
		node := root
		for depth := 0; depth < chartDepth; depth++ {
			name := row.Ranks[depth]
			child, ok := node.children[name]
			if !ok {
				child = &taxonNode{name: name, children: make(map[string]*taxonNode)}
				node.children[name] = child
			}
			node = child
		}
		node.value += row.Abundance
	}
	return root
}

func sortedChildNames(node *taxonNode) []string {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sunburstChildren(node *taxonNode) []*opts.SunBurstData {
	names := sortedChildNames(node)
	out := make([]*opts.SunBurstData, 0, len(names))
	for _, name := range names {
		child := node.children[name]
		item := &opts.SunBurstData{Name: name}
		if len(child.children) == 0 {
			item.Value = child.value
		} else {
			item.Children = sunburstChildren(child)
		}
		out = append(out, item)
	}
	return out
}

func sunburstSeries(root *taxonNode) []opts.SunBurstData {
	children := sunburstChildren(root)
	out := make([]opts.SunBurstData, 0, len(children))
	for _, child := range children {
		out = append(out, *child)
	}
	return out
}

func treemapNodes(node *taxonNode) []opts.TreeMapNode {
	names := sortedChildNames(node)
	out := make([]opts.TreeMapNode, 0, len(names))
	for _, name := range names {
		child := node.children[name]
		item := opts.TreeMapNode{Name: name}
		if len(child.children) == 0 {
			item.Value = int(math.Round(child.value))
		} else {
			item.Children = treemapNodes(child)
		}
		out = append(out, item)
	}
	return out
}

// phylumShare is one phylum's summed abundance.
type phylumShare struct {
	Name      string  `json:"name"`
	Abundance float64 `json:"abundance"`
}

// phylumShares totals abundance per phylum, drops the Unassigned sentinel
// and sorts by abundance descending, name ascending on ties.
func phylumShares(rows []mergedRow) []phylumShare {
	totals := make(map[string]float64)
	for _, row := range rows {
		phylum := row.Ranks[1]
		if phylum == rankUnassigned {
			continue
		}
		totals[phylum] += row.Abundance
	}
	out := make([]phylumShare, 0, len(totals))
	for name, value := range totals {
		out = append(out, phylumShare{Name: name, Abundance: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Abundance != out[j].Abundance {
			return out[i].Abundance > out[j].Abundance
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func pieSeries(rows []mergedRow) []opts.PieData {
	shares := phylumShares(rows)
	out := make([]opts.PieData, 0, len(shares))
	for _, share := range shares {
		out = append(out, opts.PieData{Name: share.Name, Value: share.Abundance})
	}
	return out
}

func newSunburstChart(rows []mergedRow, sample string) *charts.Sunburst {
	chart := charts.NewSunburst()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:   "taxsunburst",
			PageTitle: "Taxonomic Sunburst",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Taxonomic composition",
			Subtitle: fmt.Sprintf("Domain, Phylum and Class rings, sample %s", sample),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)
	chart.AddSeries("taxa", sunburstSeries(buildTaxonTree(rows)))
	return chart
}

func newTreemapChart(rows []mergedRow, sample string) *charts.TreeMap {
	chart := charts.NewTreeMap()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:   "taxtreemap",
			PageTitle: "Taxonomic Treemap",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Taxonomic composition",
			Subtitle: fmt.Sprintf("Nested by Domain, Phylum and Class, sample %s", sample),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)
	chart.AddSeries("taxa", treemapNodes(buildTaxonTree(rows)))
	return chart
}

func newPieChart(rows []mergedRow, sample string) *charts.Pie {
	chart := charts.NewPie()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:   "taxpie",
			PageTitle: "Taxonomic Pie Chart",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Phylum composition",
			Subtitle: fmt.Sprintf("Sample %s, Unassigned excluded", sample),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	chart.AddSeries("phyla", pieSeries(rows),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
	)
	return chart
}
