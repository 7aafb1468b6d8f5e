package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"compliance_ingest/pkg/api/ingest"
	"compliance_ingest/pkg/core/confidence"
	"compliance_ingest/pkg/core/config"
	"compliance_ingest/pkg/core/override"
	"compliance_ingest/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg := config.Default()
	if path := os.Getenv("INGEST_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Printf("[FATAL] Config load failed: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
		fmt.Printf("[CONFIG] Loaded %s\n", path)
	}

	engine, err := override.NewEngine(override.EngineConfig{CacheSize: cfg.OverrideCacheSize})
	if err != nil {
		fmt.Printf("[FATAL] Override engine init failed: %v\n", err)
		os.Exit(1)
	}
	if cfg.OverrideRulesFile != "" {
		data, err := os.ReadFile(cfg.OverrideRulesFile)
		if err != nil {
			fmt.Printf("[WARNING] Override rules not loaded: %v\n", err)
		} else if n, err := engine.ImportJSON(data); err != nil {
			fmt.Printf("[WARNING] Override rules import failed: %v\n", err)
		} else {
			fmt.Printf("[OVERRIDE] Imported %d rules from %s\n", n, cfg.OverrideRulesFile)
		}
	}

	// Optional mapping-history persistence
	var scorer *confidence.Scorer
	if os.Getenv("DATABASE_URL") != "" {
		ctx := context.Background()
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[WARNING] Database unavailable, running without history: %v\n", err)
		} else if err := store.EnsureSchema(ctx); err != nil {
			fmt.Printf("[WARNING] Schema setup failed: %v\n", err)
		} else {
			history := confidence.NewHistoryStore()
			if err := history.LoadFromDB(ctx); err != nil {
				fmt.Printf("[WARNING] Mapping history load failed: %v\n", err)
			}
			scorer = confidence.NewScorer(confidence.DefaultScorerConfig(), history)
		}
	}

	ingest.InitHandler(cfg, engine, scorer)
	http.HandleFunc("/api/ingest/parse", ingest.HandleParse)
	http.HandleFunc("/api/ingest/overrides", ingest.HandleImportOverrides)
	http.HandleFunc("/api/ingest/metrics", ingest.HandleMetrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/ingest/parse")
	fmt.Println("  - POST /api/ingest/overrides")
	fmt.Println("  - GET  /api/ingest/metrics")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("[FATAL] Server failed to start: %v", err)
	}
}
