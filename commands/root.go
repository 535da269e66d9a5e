package commands

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/restaurant-reservation/config"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

var (
	// Global flags
	envFile string

	cfg *config.Config
)

// rootCmd runs the HTTP server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "restaurant-reservation",
	Short: "Restaurant table reservation backend",
	Long: `Restaurant table reservation backend.

Without a subcommand the HTTP API is started, same as "serve".
Database maintenance is available through migrate, seed, reset and check.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if cmd.Flags().Changed("env-file") {
			files = append(files, envFile)
		}
		var err error
		cfg, err = config.Load(files...)
		if err != nil {
			return err
		}
		if err := utils.InitLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
			return err
		}
		if cfg.GinMode != "" {
			gin.SetMode(cfg.GinMode)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file to load instead of ./.env")
}

// openDB connects with the loaded configuration.
func openDB() (*gorm.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		utils.ErrorLogger.WithError(err).Warn("error closing database")
	}
}
