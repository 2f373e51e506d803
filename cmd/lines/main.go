// Command lines runs the feature pipeline, the line analytics reports and the
// prediction slate from the terminal.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/hoopslines/internal/app"
)

var (
	configFile string
	envFile    string
	svc        *app.App
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded before the config")

	rootCmd.AddCommand(coverageCmd(), splitsCmd(), exportCmd(), refreshCmd(), featuresCmd(), predictCmd())
}

var rootCmd = &cobra.Command{
	Use:   "lines",
	Short: "NBA betting line analytics and game features",
	Long: `Builds rolling box-score features and game-level feature rows, reports how
teams cover against the spread and the total, and asks the regressor for
upcoming game predictions.`,
	Version:       app.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(cmd.Context(), configFile, envFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		svc, err = app.New(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if svc != nil {
			svc.Close()
		}
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if svc != nil {
			svc.Close()
		}
		log.Fatalf("Error: %v", err)
	}
}
