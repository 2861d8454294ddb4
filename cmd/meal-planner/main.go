package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/logging"
	"meal-planner/internal/meal"
	"meal-planner/internal/preferences"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer rt.Close()

	switch os.Args[1] {
	case "plan":
		planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
		prefsPath := planCmd.String("prefs", "", "Path to a preferences JSON file (required)")
		week := planCmd.String("week", "", "Week start as YYYY-MM-DD, a Monday (default: next Monday)")
		servings := planCmd.Int("servings", 2, "Servings per recipe")
		planCmd.Parse(os.Args[2:])

		prefs, err := readPreferences(*prefsPath)
		if err != nil {
			log.Fatalf("Failed to read preferences: %v", err)
		}
		if err := rt.App.GenerateMealPlan(ctx, os.Stdout, prefs, *week, *servings); err != nil {
			log.Fatalf("Planning failed: %v", err)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := rt.App.CleanupMetrics(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func readPreferences(path string) (meal.UserPreferences, error) {
	if path == "" {
		return meal.UserPreferences{}, fmt.Errorf("-prefs is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return meal.UserPreferences{}, err
	}
	var prefs meal.UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return meal.UserPreferences{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return prefs, preferences.Validate(prefs)
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan -prefs <file> [-week YYYY-MM-DD] [-servings N]   Generate a weekly plan and shopping list")
	fmt.Println("  metrics-cleanup [-days N]                            Remove old LLM usage records")
}
