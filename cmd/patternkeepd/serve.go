package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var maintenanceInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the auto-promote and fingerprint-backfill maintenance loop until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		fmt.Printf("patternkeepd serving, maintenance every %s. Press Ctrl+C to stop.\n", maintenanceInterval)
		eng.RunMaintenance(ctx, maintenanceInterval)
		return nil
	},
}

func init() {
	serveCmd.Flags().DurationVar(&maintenanceInterval, "interval", 5*time.Minute, "maintenance sweep interval")
}
