package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/analyzer"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/config"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
)

// analyze-capture runs the analysis engine against a captured-queries JSON
// file offline, without the HTTP service. Useful for inspecting a capture
// pulled out of a CI run.
func main() {
	var (
		inputPath      = flag.String("input", "", "Path to a JSON file containing an analyze request payload")
		thresholdsFile = flag.String("thresholds", "", "Optional YAML scoring threshold override file")
		jsonOutput     = flag.Bool("json", false, "Print the full report as JSON instead of text")
		help           = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	if *help || *inputPath == "" {
		showHelp()
		if *inputPath == "" && !*help {
			os.Exit(2)
		}
		return
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Failed to read capture file: %v", err)
	}

	var req models.AnalyzeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Fatalf("Failed to parse capture file: %v", err)
	}
	if req.OperationName == "" {
		req.OperationName = "captured_operation"
	}
	if req.OperationType == "" {
		req.OperationType = "view"
	}

	thresholds, err := config.LoadScoringThresholds(*thresholdsFile)
	if err != nil {
		log.Fatalf("Failed to load scoring thresholds: %v", err)
	}

	records := make([]analyzer.QueryRecord, len(req.Queries))
	for i, q := range req.Queries {
		records[i] = analyzer.QueryRecord{
			SQL:             q.SQL,
			DurationMS:      q.DurationMS,
			Params:          q.Params,
			ConnectionAlias: q.ConnectionAlias,
		}
	}

	builder := analyzer.NewReportBuilder(nil, analyzer.NewPerformanceScorer(thresholds), nil)
	report := builder.Build(req.OperationName, req.OperationType, records, models.RawMetrics{
		ResponseTimeMS:   req.ResponseTimeMS,
		MemoryUsageMB:    req.MemoryUsageMB,
		MemoryOverheadMB: req.MemoryOverheadMB,
		MemoryDeltaMB:    req.MemoryDeltaMB,
		CacheHits:        req.CacheHits,
		CacheMisses:      req.CacheMisses,
	})

	if *jsonOutput {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Print(analyzer.DetailedReport(report))
}

func showHelp() {
	fmt.Println("analyze-capture - offline Django query capture analysis")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  analyze-capture -input capture.json [-thresholds thresholds.yaml] [-json]")
	fmt.Println()
	fmt.Println("The input file uses the same JSON shape as POST /api/v1/analyze.")
	fmt.Println()
	flag.PrintDefaults()
}
