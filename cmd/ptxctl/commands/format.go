package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/ptxhome/ptxswitchd/pkg/client"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be one of table, json, yaml", format)
	}
}

// writeStructured renders v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// SwitchTableData returns the property table for one switch, with bold ID and value
func SwitchTableData(s client.Switch) pterm.TableData {
	return pterm.TableData{
		[]string{pterm.Bold.Sprint("ID"), pterm.Bold.Sprint(s.ID)},
		[]string{"Name", s.Name},
		[]string{"Label", valueOrNA(s.Label)},
		[]string{"Model", s.Model},
		[]string{"Host", s.Host},
		[]string{"Channel", fmt.Sprintf("%d", s.Index)},
		[]string{"State", s.State()},
		[]string{"Available", fmt.Sprintf("%v", s.Available)},
		[]string{"Last Update", formatLastUpdate(s.LastUpdate)},
	}
}

// SwitchesTableData returns one row per switch with a header.
func SwitchesTableData(switches []client.Switch) pterm.TableData {
	data := pterm.TableData{{"ID", "Name", "Label", "Host", "Channel", "State", "Available"}}
	for _, s := range switches {
		data = append(data, []string{
			s.ID, s.Name, valueOrNA(s.Label), s.Host, fmt.Sprintf("%d", s.Index), s.State(), fmt.Sprintf("%v", s.Available),
		})
	}
	return data
}

// formatLastUpdate formats the time of the last successful refresh
func formatLastUpdate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(time.RFC1123Z)
}

func valueOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// SwitchParseable returns the parseable key=value string for a switch
func SwitchParseable(s client.Switch) string {
	lastUpdate := "0"
	if !s.LastUpdate.IsZero() {
		lastUpdate = fmt.Sprintf("%d", s.LastUpdate.Unix())
	}
	return fmt.Sprintf(
		"id=%q name=%q label=%q model=%q host=%q channel=%d state=%s available=%v last_update=%s",
		s.ID, s.Name, s.Label, s.Model, s.Host, s.Index, s.State(), s.Available, lastUpdate,
	)
}

// DeviceParseable returns the parseable string for a device, switches comma-separated
func DeviceParseable(d client.Device) string {
	return fmt.Sprintf("host=%q name=%q model=%q transport=%q switches=%q",
		d.Host, d.Name, d.Model, d.Transport, strings.Join(d.Switches, ","))
}

// statusKeys returns the property names of a status record in a stable order.
func statusKeys(props map[string]any) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatProperty(v any) string {
	switch val := v.(type) {
	case nil:
		return "unknown"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
