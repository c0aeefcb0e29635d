package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/richard-senior/bodds/internal/logger"
	"github.com/richard-senior/bodds/pkg/util/bodds"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bodds <train|predict> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  train    build features from CSV exports, fit candidate models and save an artifact")
	fmt.Fprintln(os.Stderr, "  predict  score stored matchup rows with the saved artifact")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	flags := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	dataDir := flags.String("data-dir", "", "directory holding the CSV exports")
	dbPath := flags.String("db", "", "path to the sqlite database")
	artifactsDir := flags.String("artifacts", "", "directory for model artifacts")
	configPath := flags.String("config", "", "optional YAML config file")
	season := flags.Int("season", 0, "restrict predictions to one season (predict only)")
	seed := flags.Int64("seed", 0, "override the seed recorded in the training artifact")
	verbose := flags.Bool("v", false, "enable debug logging")
	flags.Parse(os.Args[2:])

	logger.SetShowDateTime(true)
	if *verbose {
		logger.SetLevel(logger.DEBUG)
	}

	if *configPath != "" {
		if _, err := bodds.LoadConfig(*configPath); err != nil {
			logger.Fatal("loading config:", err)
		}
	}
	if *dataDir != "" {
		bodds.Config.DataDir = *dataDir
	}
	if *dbPath != "" {
		bodds.Config.DbPath = *dbPath
	}
	if *artifactsDir != "" {
		bodds.Config.ArtifactsDir = *artifactsDir
	}
	// Zero is a legal seed, so only override when the flag was given.
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			bodds.Config.Seed = *seed
		}
	})
	if err := bodds.ValidateConfig(bodds.Config); err != nil {
		logger.Fatal("invalid configuration:", err)
	}

	if err := bodds.InitDatabase(bodds.Config.DbPath); err != nil {
		logger.Fatal("opening database:", err)
	}
	defer bodds.CloseDatabase()

	switch os.Args[1] {
	case "train":
		artifact, err := bodds.Train()
		if err != nil {
			logger.Fatal("training failed:", err)
		}
		logger.Highlight("training run", artifact.RunID, "complete, selected model:", artifact.ModelName)
	case "predict":
		predictions, err := bodds.Predict(*season)
		if err != nil {
			logger.Fatal("prediction failed:", err)
		}
		logger.Highlight(fmt.Sprintf("wrote %d predictions", len(predictions)))
	default:
		usage()
	}
}
