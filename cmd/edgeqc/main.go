package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/edgeqc/internal/config"
	"github.com/agenthands/edgeqc/internal/logger"
)

const defaultConfigPath = "config/config.toml"

var (
	rootCmd = &cobra.Command{
		Use:           "edgeqc",
		Short:         "Entity-identification QC for text-mined KG edges",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file (default "+defaultConfigPath+" if present)")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(reviewCmd)
}

// loadConfig layers defaults, the config file, .env and the environment.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

var errMissingFlag = errors.New("missing required flag")
