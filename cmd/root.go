package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"campus-sports-cli/api"
	"campus-sports-cli/config"

	"github.com/spf13/cobra"
)

var (
	outputJSON    bool
	outputCompact bool
	verbose       bool
	cfg           config.Config
	cfgErr        error
	client        = api.NewClient()
	logger        = log.New(io.Discard, "", log.LstdFlags)
)

var rootCmd = &cobra.Command{
	Use:   "campus-sports",
	Short: "Book campus sports facilities from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON && outputCompact {
			return fmt.Errorf("choose either --json or --compact")
		}
		if cfgErr != nil {
			return fmt.Errorf("load config: %w", cfgErr)
		}
		if verbose || cfg.Verbose {
			logger.SetOutput(os.Stderr)
		}

		timeout, err := cfg.Timeout()
		if err != nil {
			return err
		}
		client.HTTP.Timeout = timeout
		client.BaseURL = cfg.APIBaseURL
		client.Logger = logger
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(sportsCmd())
	rootCmd.AddCommand(availabilityCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(bookingsCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(profileCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
	rootCmd.PersistentFlags().BoolVar(&outputCompact, "compact", false, "Output compact text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
}

func initConfig() {
	cfg, cfgErr = config.Load()
}
