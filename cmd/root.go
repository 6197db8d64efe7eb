// Package cmd defines the timetable CLI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/campusgrid/timetable/app"
	"github.com/campusgrid/timetable/config"
	"github.com/campusgrid/timetable/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "timetable",
	Short: "Campus timetable construction and conflict resolution service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main", cfg.Logging.Level).Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
