package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"compliance_ingest/pkg/core/config"
	"compliance_ingest/pkg/core/report"
	"compliance_ingest/pkg/core/template"
	"compliance_ingest/pkg/core/workbook"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment.")
	}

	configPath := flag.String("config", "", "YAML processing config (optional)")
	inputPath := flag.String("input", "", "workbook file (.json or .csv)")
	format := flag.String("format", "json", "output format: json, csv, markdown, html")
	outputPath := flag.String("output", "", "output file (default stdout)")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -input workbook.json [-config config.yaml] [-format json] [-output report.json]")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("[FATAL] Config: %v", err)
		}
		cfg = loaded
	}

	parseConfig := workbook.DefaultParseConfig()
	parseConfig.Detector = template.DetectorConfig{
		EnableFuzzyMatching: cfg.Detection.EnableFuzzyMatching,
		ConfidenceThreshold: cfg.Detection.ConfidenceThreshold,
		MaxWorksheets:       cfg.Detection.MaxWorksheets,
		AnalyzeHeaders:      cfg.Detection.AnalyzeHeaders,
	}
	if cfg.Detection.PatternFile != "" {
		patterns, err := template.LoadPatterns(cfg.Detection.PatternFile)
		if err != nil {
			log.Fatalf("[FATAL] Pattern library: %v", err)
		}
		parseConfig.Patterns = patterns
		log.Printf("[INGEST] Loaded %d template patterns from %s", len(patterns), cfg.Detection.PatternFile)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("[FATAL] Input: %v", err)
	}

	doc, err := workbook.Parse(data, filepath.Base(*inputPath), parseConfig)
	if err != nil {
		log.Fatalf("[FATAL] Parse: %v", err)
	}
	log.Printf("[INGEST] %s: type=%s worksheets=%d quality=%.2f errors=%d",
		*inputPath, doc.DocumentType, len(doc.Content), doc.QualityScore, len(doc.ValidationErrors))
	for _, ve := range doc.ValidationErrors {
		log.Printf("[INGEST]   warning: %s", ve)
	}

	result := report.Assemble(doc, cfg)
	payload, err := report.Export(result, report.Format(strings.ToLower(*format)))
	if err != nil {
		log.Fatalf("[FATAL] Export: %v", err)
	}

	if *outputPath == "" {
		os.Stdout.Write(payload)
		return
	}
	if err := os.WriteFile(*outputPath, payload, 0o644); err != nil {
		log.Fatalf("[FATAL] Output: %v", err)
	}
	log.Printf("[INGEST] Report written to %s", *outputPath)
}
