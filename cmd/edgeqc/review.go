package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/agenthands/edgeqc/internal/server"
)

var (
	reviewDir  string
	reviewPort string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Serve the review API over classified partitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output-dir") {
			cfg.Server.OutputDir = reviewDir
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = reviewPort
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		if cfg.Logging.Mode == "prod" {
			gin.SetMode(gin.ReleaseMode)
		}

		rev, err := server.NewReviewer(cfg.Server.OutputDir, log)
		if err != nil {
			return err
		}
		r := server.NewServer(rev, log).SetupRouter()

		log.Info("starting review server", "port", cfg.Server.Port, "output_dir", cfg.Server.OutputDir)
		return r.Run(":" + cfg.Server.Port)
	},
}

func init() {
	reviewCmd.Flags().StringVarP(&reviewDir, "output-dir", "o", "output", "Directory holding the partition files")
	reviewCmd.Flags().StringVarP(&reviewPort, "port", "p", "8080", "Port to listen on")
}
