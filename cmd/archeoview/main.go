package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"archeoview/pkg/config"
	"archeoview/pkg/pipeline"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing one <prefix>.<band>.tif file per band")
	outputDir := flag.String("output", "", "Directory for exported images (overrides config)")
	configPath := flag.String("config", "archeoview.yaml", "Path to YAML configuration file")
	components := flag.Int("components", 0, "Number of principal components to keep (overrides config)")
	noNormalize := flag.Bool("no-normalize", false, "Skip min-max scaling before PCA")
	workers := flag.Int("workers", 0, "Number of bands decoded concurrently (overrides config)")
	saveTrend := flag.Bool("trend", false, "Also write the first-to-last band difference grid")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	log := logrus.New()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Command line flags win over the configuration file
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *components > 0 {
		cfg.Processing.Components = *components
	}
	if *noNormalize {
		cfg.Processing.Normalize = false
	}
	if *workers > 0 {
		cfg.Processing.Workers = *workers
	}
	if *saveTrend {
		cfg.Output.SaveTrend = true
	}
	if *verbose || cfg.Output.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	params := &pipeline.Params{
		InputDir:      *inputDir,
		OutputDir:     cfg.Output.Dir,
		Extensions:    cfg.Processing.Extensions,
		Components:    cfg.Processing.Components,
		Normalize:     cfg.Processing.Normalize,
		Workers:       cfg.Processing.Workers,
		SaveBands:     cfg.Output.SaveBands,
		SaveComposite: cfg.Output.SaveComposite,
		SaveTrend:     cfg.Output.SaveTrend,
		CellSize:      cfg.Output.CellSize,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := pipeline.NewPipeline(params, log)

	startTime := time.Now()
	if err := p.Process(ctx); err != nil {
		log.Fatalf("Processing failed: %v", err)
	}
	result := p.Result()

	fmt.Printf("\nBands: %s\n", strings.Join(result.Names, ", "))
	fmt.Printf("Principal components kept: %d\n", len(result.ExplainedVarianceRatio))
	total := 0.0
	for c, ratio := range result.ExplainedVarianceRatio {
		total += ratio
		fmt.Printf("  PC%d: %6.2f%%\n", c+1, ratio*100)
	}
	fmt.Printf("Total explained variance: %.2f%%\n", total*100)
	fmt.Printf("Completed in %.2f seconds\n", time.Since(startTime).Seconds())
}
