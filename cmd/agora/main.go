package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yigit/agora/internal/bootstrap"
	"github.com/yigit/agora/internal/pkg/logger"
	"github.com/yigit/agora/internal/seed"
	"github.com/yigit/agora/internal/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "agora",
	Short: "Agora school and tourism management backend",
	Long: `Agora serves the school management (SMOS) and tourism (eTour) APIs.

Available commands:
  serve   - Run the HTTP API with the notification dispatcher and scheduled jobs
  migrate - Apply pending database migrations and exit
  seed    - Create the default accounts, teachings and tags, optionally with demo data`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var (
	demoSites    int
	demoStudents int
	demoTeachers int
	demoSeed     int64
	demoLat      float64
	demoLon      float64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create default data, and demo data when --demo-* counts are set",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", filepath.Join("configs", "config.yaml"), "Path to the YAML configuration file")

	seedCmd.Flags().IntVar(&demoSites, "demo-sites", 0, "Number of fake sites to generate")
	seedCmd.Flags().IntVar(&demoStudents, "demo-students", 0, "Number of fake students to generate")
	seedCmd.Flags().IntVar(&demoTeachers, "demo-teachers", 0, "Number of fake teachers to generate")
	seedCmd.Flags().Int64Var(&demoSeed, "demo-seed", time.Now().UnixNano(), "Random seed for demo data")
	seedCmd.Flags().Float64Var(&demoLat, "demo-lat", 40.6824, "Latitude the demo sites cluster around")
	seedCmd.Flags().Float64Var(&demoLon, "demo-lon", 14.7681, "Longitude the demo sites cluster around")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server execution failed: %w", err)
	}
	logger.Info().Msg("Application finished gracefully.")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	database, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	return bootstrap.RunMigrations(ctx, database, lgr)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	database, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := bootstrap.RunMigrations(ctx, database, lgr); err != nil {
		return err
	}
	if err := seed.CreateDefaultData(ctx, database.Pool, lgr); err != nil {
		return fmt.Errorf("default data: %w", err)
	}

	if demoSites == 0 && demoStudents == 0 && demoTeachers == 0 {
		return nil
	}
	summary, err := seed.CreateDemoData(ctx, database.Pool, seed.DemoOptions{
		Seed:      demoSeed,
		Sites:     demoSites,
		Students:  demoStudents,
		Teachers:  demoTeachers,
		Latitude:  demoLat,
		Longitude: demoLon,
	}, lgr)
	if err != nil {
		return fmt.Errorf("demo data (%d sites, %d users created): %w", summary.Sites, summary.Users, err)
	}
	return nil
}
