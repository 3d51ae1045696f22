package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/app"
	"github.com/dvloznov/finance-coach/internal/config"
	"github.com/dvloznov/finance-coach/internal/gcsuploader"
	"github.com/dvloznov/finance-coach/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := app.NewLogger(cfg)

	switch os.Args[1] {
	case "seed":
		runSeed(cfg, log)
	case "transactions":
		runTransactions(cfg, log)
	case "insights":
		runReport(cfg, log, "insights")
	case "dashboard":
		runReport(cfg, log, "dashboard")
	case "subscriptions":
		runReport(cfg, log, "subscriptions")
	case "forecast":
		runReport(cfg, log, "forecast")
	case "export":
		runExport(cfg, log)
	case "fetch-snapshot":
		runFetchSnapshot(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Coach CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  seed            Create a user, or add sample data to an existing one")
	fmt.Println("  transactions    List a user's transactions")
	fmt.Println("  insights        Print spending insights for a user")
	fmt.Println("  dashboard       Print the dashboard summary for a user")
	fmt.Println("  subscriptions   Print detected subscriptions for a user")
	fmt.Println("  forecast        Print goal forecasts for a user")
	fmt.Println("  export          Run the snapshot export for a user")
	fmt.Println("  fetch-snapshot  Download an archived snapshot by gs:// URI")
	fmt.Println("  help            Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func open(cfg config.Config, log zerolog.Logger) (context.Context, context.CancelFunc, *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	ctx = logger.WithContext(ctx, log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	return ctx, func() {
		_ = a.Close()
		cancel()
	}, a
}

func printJSON(log zerolog.Logger, v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
	fmt.Println(string(out))
}

func userFlag(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs, fs.String("user", "", "User ID (required)")
}

func runSeed(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	userID := fs.String("user", "", "Existing user ID; a new user is created when empty")
	email := fs.String("email", "", "Email for a new user")
	name := fs.String("name", "", "Name for a new user")
	fs.Parse(os.Args[2:])

	ctx, done, a := open(cfg, log)
	defer done()

	if *userID == "" {
		user, err := a.Service.CreateUser(ctx, *email, *name)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create user")
		}
		printJSON(log, user)
		return
	}

	result, err := a.Service.SeedSampleData(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed sample data")
	}
	printJSON(log, result)
}

func runTransactions(cfg config.Config, log zerolog.Logger) {
	fs, userID := userFlag("transactions")
	fs.Parse(os.Args[2:])
	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}

	ctx, done, a := open(cfg, log)
	defer done()

	txs, err := a.Service.ListTransactions(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}

	fmt.Printf("\n=== Transactions (%d) ===\n", len(txs))
	for i, tx := range txs {
		fmt.Printf("\n%d. %s\n", i+1, tx.Description)
		fmt.Printf("   Date:     %s\n", tx.Timestamp.Format(time.RFC3339))
		fmt.Printf("   Amount:   %.2f (%s)\n", tx.Amount, tx.Type)
		fmt.Printf("   Category: %s\n", tx.EffectiveCategory())
		if tx.AIInsights != nil && tx.AIInsights.Insight != "" {
			fmt.Printf("   Insight:  %s\n", tx.AIInsights.Insight)
		}
	}
	fmt.Println()
}

func runReport(cfg config.Config, log zerolog.Logger, kind string) {
	fs, userID := userFlag(kind)
	fs.Parse(os.Args[2:])
	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}

	ctx, done, a := open(cfg, log)
	defer done()

	switch kind {
	case "insights":
		printJSON(log, a.Service.Insights(ctx, *userID))
	case "dashboard":
		dash, err := a.Service.Dashboard(ctx, *userID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build dashboard")
		}
		printJSON(log, dash)
	case "subscriptions":
		printJSON(log, a.Service.Subscriptions(ctx, *userID))
	case "forecast":
		printJSON(log, a.Service.GoalForecast(ctx, *userID))
	}
}

func runExport(cfg config.Config, log zerolog.Logger) {
	fs, userID := userFlag("export")
	fs.Parse(os.Args[2:])
	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}

	ctx, done, a := open(cfg, log)
	defer done()

	state, err := a.ExportSnapshot(ctx, *userID, "")
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	printJSON(log, state.Report)
	fmt.Printf("Export completed: %s\n", state.Outcome())
}

func runFetchSnapshot(log zerolog.Logger) {
	fs := flag.NewFlagSet("fetch-snapshot", flag.ExitOnError)
	gcsURI := fs.String("gcs-uri", "", "gs:// URI of an archived snapshot")
	fs.Parse(os.Args[2:])

	if *gcsURI == "" {
		log.Fatal().Msg("Error: --gcs-uri is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	data, err := gcsuploader.NewGCSStorageService().FetchFromGCS(ctx, *gcsURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Fetch failed")
	}
	fmt.Println(string(data))
}
