package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"facility-recon/internal/cli"
	"facility-recon/internal/config"
)

var (
	cfgFile string
	version = "dev"

	v      *viper.Viper
	cfg    config.Config
	logger zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "facility-recon",
		Short: "Fuzzy reconciliation of health facility names",
		Long: `facility-recon matches every facility name of a master list against
a reference list, scores the closest candidate and writes a reconciled list
together with a per-row report and a summary.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	v = config.New()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./facility-recon.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("history-db", "", "sqlite file for run history (empty: disabled)")
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("history_db", rootCmd.PersistentFlags().Lookup("history-db"))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}
	c, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = c
	// в CLI лог идёт в stderr, stdout остаётся под вывод команды
	logger = config.SetupLogger(cfg, cmd.ErrOrStderr())
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "facility-recon %s\n", version)
		},
	}
}
