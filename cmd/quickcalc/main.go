package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bmi-quickcalc/internal/app"
	"bmi-quickcalc/internal/config"
	"bmi-quickcalc/internal/health"
	"bmi-quickcalc/internal/logger"
	"bmi-quickcalc/internal/metrics"
	"bmi-quickcalc/internal/web"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.IsProduction())
	defer logger.Sync()

	ctx := context.Background()

	switch os.Args[1] {
	case "calc":
		code := runCalc(ctx, os.Args[2:])
		logger.Sync()
		os.Exit(code)
	case "serve":
		serve(ctx, cfg)
	case "admin-token":
		tokenCmd := flag.NewFlagSet("admin-token", flag.ExitOnError)
		ttl := tokenCmd.Duration("ttl", 24*time.Hour, "Token lifetime")
		tokenCmd.Parse(os.Args[2:])

		application := mustApp(ctx, cfg)
		defer application.Close()
		token, err := application.IssueAdminToken(*ttl)
		if err != nil {
			logger.Fatal("Failed to issue admin token", zap.Error(err))
		}
		fmt.Println(token)
	case "sessions-cleanup":
		application := mustApp(ctx, cfg)
		defer application.Close()
		affected, err := application.CleanupSessions(ctx)
		if err != nil {
			logger.Fatal("Cleanup failed", zap.Error(err))
		}
		fmt.Printf("Successfully removed %d expired sessions.\n", affected)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		application := mustApp(ctx, cfg)
		defer application.Close()
		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			logger.Fatal("Cleanup failed", zap.Error(err))
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func mustApp(ctx context.Context, cfg *config.Config) *app.App {
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	return application
}

func runCalc(ctx context.Context, args []string) int {
	calcCmd := flag.NewFlagSet("calc", flag.ExitOnError)
	weight := calcCmd.String("weight", "", "Body weight")
	weightUnit := calcCmd.String("weight-unit", "kg", "Weight unit: kg or lbs")
	height := calcCmd.String("height", "", "Height in centimeters")
	feet := calcCmd.String("feet", "", "Height in feet (with -height-unit ft)")
	inches := calcCmd.String("inches", "", "Additional inches (with -height-unit ft)")
	heightUnit := calcCmd.String("height-unit", "cm", "Height unit: cm or ft")
	age := calcCmd.String("age", "", "Age in years (1-120)")
	gender := calcCmd.String("gender", "male", "Gender: male or female")
	activity := calcCmd.String("activity", "moderate", "Activity level: sedentary, light, moderate or very")
	asJSON := calcCmd.Bool("json", false, "Print the result as JSON")
	calcCmd.Parse(args)

	raw := health.RawInput{
		Weight:       *weight,
		Height:       *height,
		HeightFeet:   *feet,
		HeightInches: *inches,
		Age:          *age,
	}
	var err error
	if raw.WeightUnit, err = health.ParseWeightUnit(*weightUnit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if raw.HeightUnit, err = health.ParseHeightUnit(*heightUnit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if raw.Gender, err = health.ParseGender(*gender); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if raw.Activity, err = health.ParseActivityLevel(*activity); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := app.RunCalc(ctx, os.Stdout, raw, *asJSON, metrics.NewRecorder(nil)); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot calculate: %v\n", err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config) {
	application := mustApp(ctx, cfg)
	defer application.Close()

	server, err := web.NewServer(cfg, application.Sessions(), application.Recorder(), application.Activity())
	if err != nil {
		logger.Fatal("Failed to initialize web server", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Web server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func printUsage() {
	fmt.Println("Usage: quickcalc <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  calc               Calculate BMI, daily calories and health tips")
	fmt.Println("  serve              Run the web calculator and JSON API")
	fmt.Println("  admin-token        Print a token for the /admin endpoints")
	fmt.Println("  sessions-cleanup   Remove expired form drafts")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
