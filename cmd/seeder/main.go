// Command seeder loads the sample users, bootcamps and courses from JSON
// fixtures into the database, or wipes them again.
//
//	seeder import --data ./data
//	seeder destroy
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appMigrations "github.com/yigit/devcamper/internal/app/migrations"
	"github.com/yigit/devcamper/internal/bootstrap"
	"github.com/yigit/devcamper/internal/config"
	"github.com/yigit/devcamper/internal/db"
	"github.com/yigit/devcamper/internal/pkg/logger"
	"github.com/yigit/devcamper/internal/seed"
)

var (
	dataDir string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "seeder",
	Short:         "Seed or clear the DevCamper database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import users, bootcamps and courses from the fixture directory",
	Args:  cobra.NoArgs,
	RunE:  runImport,
}

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete all users, bootcamps, courses and refresh tokens",
	Args:  cobra.NoArgs,
	RunE:  runDestroy,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&bootstrap.ConfigPath, "config", "c", bootstrap.ConfigPath, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&bootstrap.EnvPath, "env", bootstrap.EnvPath, "path to the .env file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout for the operation")
	importCmd.Flags().StringVarP(&dataDir, "data", "d", "", "fixture directory (defaults to seed.data_dir)")

	rootCmd.AddCommand(importCmd, destroyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Seeder failed")
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, lgr, pool, err := connect()
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := appMigrations.NewMigrator(pool).MigrateFromDirectory(ctx, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	dir := dataDir
	if dir == "" {
		dir = cfg.Seed.DataDir
	}

	summary, err := seed.New(pool, lgr).Import(ctx, dir)
	if err != nil {
		return err
	}

	lgr.Info().
		Int("users", summary.Users).
		Int("bootcamps", summary.Bootcamps).
		Int("courses", summary.Courses).
		Msg("Data imported")
	return nil
}

func runDestroy(cmd *cobra.Command, _ []string) error {
	_, lgr, pool, err := connect()
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := seed.New(pool, lgr).Destroy(ctx); err != nil {
		return err
	}
	lgr.Info().Msg("Data destroyed")
	return nil
}

func connect() (*config.Config, zerolog.Logger, *pgxpool.Pool, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, lgr, nil, fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, lgr, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, lgr, database.Pool, nil
}
