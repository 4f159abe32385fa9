// Package commands implements the ptxctl command tree.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ptxhome/ptxswitchd/internal/config"
	"github.com/ptxhome/ptxswitchd/internal/utils"
	"github.com/ptxhome/ptxswitchd/pkg/client"
)

// NewRootCommand creates the root command. A client already stored on the
// execution context is used as-is; otherwise one is built from flags and the
// client config file.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	var (
		configFile string
		url        string
		apiKey     string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "ptxctl",
		Short:         "Control PTX wall switches through ptxswitchd",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			if err := validOutput(output); err != nil {
				return err
			}

			logger := utils.SetupLogger(logLevel, config.LogFormatText)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = WithLogger(ctx, logger)

			if _, err := clientFromCmd(cmd); err != nil {
				cfg, err := config.Load(config.ClientConfigFilename, configFile)
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				if !cmd.Flags().Changed("url") {
					url = cfg.Client.URL
				}
				if !cmd.Flags().Changed("api-key") {
					apiKey = cfg.Client.APIKey
				}
				logger.Debug("ctl: using daemon", "url", url)
				ctx = WithClient(ctx, client.NewHTTP(logger, url, apiKey))
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to client config file")
	cmd.PersistentFlags().StringVar(&url, "url", config.DefaultAPIURL, "ptxswitchd API URL")
	cmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for ptxswitchd")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", config.LogLevelWarn, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringP("output", "o", outputTable, "Output format (table, json, yaml)")

	cmd.AddCommand(newVersionCommand(version, commit, buildDate))
	cmd.AddCommand(NewSwitchCommand())
	cmd.AddCommand(NewDeviceCommand())
	cmd.AddCommand(NewDiscoverCommand())

	return cmd
}

// newVersionCommand creates the version command
func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Client:\n")
			fmt.Fprintf(out, "  Version:    %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Build Date: %s\n", buildDate)

			c, err := clientFromCmd(cmd)
			if err != nil {
				return
			}
			resp, err := c.GetVersion()
			if err != nil {
				getLoggerFromCmd(cmd).Debug("ctl: daemon version unavailable", "error", err)
				fmt.Fprintf(out, "\nDaemon: not reachable\n")
				return
			}
			fmt.Fprintf(out, "\nDaemon:\n")
			fmt.Fprintf(out, "  Version:    %s\n", resp.Version)
			fmt.Fprintf(out, "  Commit:     %s\n", resp.Commit)
			fmt.Fprintf(out, "  Build Date: %s\n", resp.Date)
		},
	}
}

func outputFormat(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("output")
	if err != nil || format == "" {
		return outputTable
	}
	return format
}
