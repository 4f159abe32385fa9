package commands

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// newResolver is replaced in tests.
var newResolver = ptx.NewResolver

// NewDiscoverCommand creates the discover command. It browses mDNS directly
// and does not need the daemon.
func NewDiscoverCommand() *cobra.Command {
	var (
		parseable bool
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find PTX switches on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newResolver()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var spinner *pterm.SpinnerPrinter
			if !parseable && outputFormat(cmd) == outputTable {
				spinner, _ = pterm.DefaultSpinner.Start("Browsing for switches")
			}
			found, err := ptx.Discover(ctx, resolver, timeout, getLoggerFromCmd(cmd))
			if spinner != nil {
				_ = spinner.Stop()
			}
			if err != nil {
				return fmt.Errorf("discovery failed: %w", err)
			}

			if parseable {
				for _, d := range found {
					fmt.Fprintf(cmd.OutOrStdout(), "address=%q model=%q device_id=%q instance=%q\n",
						d.Address(), d.Model, d.DeviceID, d.Instance)
				}
				return nil
			}
			if format := outputFormat(cmd); format != outputTable {
				return writeStructured(cmd.OutOrStdout(), format, found)
			}
			if len(found) == 0 {
				pterm.Info.Println("No switches found")
				return nil
			}

			data := pterm.TableData{{"Address", "Model", "Device ID", "IPs"}}
			for _, d := range found {
				data = append(data, []string{d.Address(), string(d.Model), d.DeviceID, joinIPs(d.IPs)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", ptx.DefaultDiscoveryTimeout, "How long to browse")
	return cmd
}

func joinIPs(ips []net.IP) string {
	parts := make([]string, len(ips))
	for i, ip := range ips {
		parts[i] = ip.String()
	}
	return strings.Join(parts, ", ")
}
