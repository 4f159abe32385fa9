package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewDeviceCommand creates the device command
func NewDeviceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Inspect and control configured switch devices",
	}

	cmd.AddCommand(
		newDeviceListCommand(),
		newDeviceStatusCommand(),
		newDevicePowerCommand("on", true),
		newDevicePowerCommand("off", false),
	)

	return cmd
}

// newDeviceListCommand creates the device list command
func newDeviceListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			devices, err := c.GetDevices()
			if err != nil {
				return fmt.Errorf("failed to get devices: %w", err)
			}

			if parseable {
				for _, d := range devices {
					fmt.Fprintln(cmd.OutOrStdout(), DeviceParseable(d))
				}
				return nil
			}
			if format := outputFormat(cmd); format != outputTable {
				return writeStructured(cmd.OutOrStdout(), format, devices)
			}
			if len(devices) == 0 {
				pterm.Info.Println("No devices configured")
				return nil
			}

			data := pterm.TableData{{"Host", "Name", "Model", "Transport", "Switches"}}
			for _, d := range devices {
				data = append(data, []string{d.Host, d.Name, d.Model, d.Transport, strings.Join(d.Switches, ", ")})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newDeviceStatusCommand creates the device status command
func newDeviceStatusCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "status <host>",
		Short: "Read every property of a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			status, err := c.GetDeviceStatus(args[0])
			if err != nil {
				return fmt.Errorf("failed to get device status: %w", err)
			}

			keys := statusKeys(status.Properties)
			if parseable {
				parts := make([]string, 0, len(keys))
				for _, k := range keys {
					parts = append(parts, fmt.Sprintf("%s=%s", k, formatProperty(status.Properties[k])))
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
				return nil
			}
			if format := outputFormat(cmd); format != outputTable {
				return writeStructured(cmd.OutOrStdout(), format, status)
			}

			data := pterm.TableData{
				{pterm.Bold.Sprint("Host"), pterm.Bold.Sprint(status.Host)},
				{"Model", status.Model},
			}
			for _, k := range keys {
				data = append(data, []string{k, formatProperty(status.Properties[k])})
			}
			return pterm.DefaultTable.WithData(data).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newDevicePowerCommand creates the device on/off commands
func newDevicePowerCommand(verb string, on bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <host>",
		Short: fmt.Sprintf("Turn every channel of a device %s", verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			switches, err := c.SetDeviceState(args[0], on)
			if err != nil {
				return fmt.Errorf("failed to set device state: %w", err)
			}
			getLoggerFromCmd(cmd).Debug("ctl: device state set", "host", args[0], "on", on)

			if format := outputFormat(cmd); format != outputTable {
				return writeStructured(cmd.OutOrStdout(), format, switches)
			}
			for _, s := range switches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", s.ID, s.State())
			}
			return nil
		},
	}
}
