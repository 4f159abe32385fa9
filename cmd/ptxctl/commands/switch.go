package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ptxhome/ptxswitchd/pkg/client"
)

// NewSwitchCommand creates the switch command
func NewSwitchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "switch",
		Aliases: []string{"sw"},
		Short:   "Manage individual switch channels",
	}

	cmd.AddCommand(
		newSwitchListCommand(),
		newSwitchGetCommand(),
		newSwitchPowerCommand("on", true),
		newSwitchPowerCommand("off", false),
		newSwitchToggleCommand(),
		newSwitchRefreshCommand(),
		newSwitchRenameCommand(),
	)

	return cmd
}

// selectSwitch returns the switch ID from args, or asks the user to pick one.
func selectSwitch(c client.API, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	switches, err := c.GetSwitches()
	if err != nil {
		return "", fmt.Errorf("failed to get switches: %w", err)
	}
	if len(switches) == 0 {
		return "", fmt.Errorf("no switches configured")
	}

	options := make([]string, len(switches))
	for i, s := range switches {
		options[i] = fmt.Sprintf("%s (%s)", s.ID, s.Name)
	}
	selected, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show("Select a switch")
	if err != nil {
		return "", fmt.Errorf("failed to select switch: %w", err)
	}
	return strings.Split(selected, " (")[0], nil
}

// printSwitch renders one switch in the selected output format.
func printSwitch(cmd *cobra.Command, s *client.Switch, parseable bool) error {
	if parseable {
		fmt.Fprintln(cmd.OutOrStdout(), SwitchParseable(*s))
		return nil
	}
	if format := outputFormat(cmd); format != outputTable {
		return writeStructured(cmd.OutOrStdout(), format, s)
	}
	return pterm.DefaultTable.WithData(SwitchTableData(*s)).Render()
}

// newSwitchListCommand creates the switch list command
func newSwitchListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List switch channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			switches, err := c.GetSwitches()
			if err != nil {
				return fmt.Errorf("failed to get switches: %w", err)
			}

			if parseable {
				for _, s := range switches {
					fmt.Fprintln(cmd.OutOrStdout(), SwitchParseable(s))
				}
				return nil
			}
			if format := outputFormat(cmd); format != outputTable {
				return writeStructured(cmd.OutOrStdout(), format, switches)
			}
			if len(switches) == 0 {
				pterm.Info.Println("No switches configured")
				return nil
			}
			return pterm.DefaultTable.WithHasHeader().WithData(SwitchesTableData(switches)).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newSwitchGetCommand creates the switch get command
func newSwitchGetCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one switch channel",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := selectSwitch(c, args)
			if err != nil {
				return err
			}
			s, err := c.GetSwitch(id)
			if err != nil {
				return fmt.Errorf("failed to get switch: %w", err)
			}
			return printSwitch(cmd, s, parseable)
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newSwitchPowerCommand creates the switch on and switch off commands
func newSwitchPowerCommand(verb string, on bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " [id]",
		Short: fmt.Sprintf("Turn a switch channel %s", verb),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := selectSwitch(c, args)
			if err != nil {
				return err
			}
			return setPower(cmd, c, id, on)
		},
	}
}

// newSwitchToggleCommand creates the switch toggle command
func newSwitchToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Invert the state of a switch channel",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := selectSwitch(c, args)
			if err != nil {
				return err
			}
			s, err := c.GetSwitch(id)
			if err != nil {
				return fmt.Errorf("failed to get switch: %w", err)
			}
			if s.On == nil {
				return fmt.Errorf("switch %s state is unknown, use on or off", id)
			}
			return setPower(cmd, c, id, !*s.On)
		},
	}
}

func setPower(cmd *cobra.Command, c client.API, id string, on bool) error {
	s, err := c.SetSwitchState(id, on)
	if err != nil {
		return fmt.Errorf("failed to set switch state: %w", err)
	}
	getLoggerFromCmd(cmd).Debug("ctl: switch state set", "id", id, "on", on)
	fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", s.ID, s.State())
	return nil
}

// newSwitchRefreshCommand creates the switch refresh command
func newSwitchRefreshCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "refresh [id]",
		Short: "Poll a switch channel now",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := selectSwitch(c, args)
			if err != nil {
				return err
			}
			s, err := c.RefreshSwitch(id)
			if err != nil {
				return fmt.Errorf("failed to refresh switch: %w", err)
			}
			return printSwitch(cmd, s, parseable)
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newSwitchRenameCommand creates the switch rename command
func newSwitchRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [id] [name]",
		Short: "Store a new name for a switch channel on the device",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := selectSwitch(c, args)
			if err != nil {
				return err
			}

			var name string
			if len(args) > 1 {
				name = args[1]
			} else {
				name, err = pterm.DefaultInteractiveTextInput.
					WithMultiLine(false).
					Show("Enter a new name")
				if err != nil {
					return fmt.Errorf("failed to read name: %w", err)
				}
			}
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("name must not be empty")
			}

			s, err := c.RenameSwitch(id, name)
			if err != nil {
				return fmt.Errorf("failed to rename switch: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s renamed to %q\n", s.ID, s.Label)
			return nil
		},
	}
}
