package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkit/pkg/types"
)

func init() {
	rootCmd.AddCommand(newValuesCmd())
}

func newValuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "values <path>",
		Short: "List the values of a key",
		Long: `The values command prints every value of a key with its type.

Example:
  regctl values "HKCU:Software\\Vendor"
  regctl values HKLM:SYSTEM\\Select --yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValues(args)
		},
	}
	return cmd
}

// valueView is the printed form of a value.
type valueView struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Data string `json:"data" yaml:"data"`
}

func newValueView(name string, v *types.Value) valueView {
	return valueView{Name: name, Type: v.Type.String(), Data: v.String()}
}

// displayName shows the default value the way regedit does.
func displayName(name string) string {
	if name == types.DefaultValueName {
		return "(Default)"
	}
	return name
}

func runValues(args []string) error {
	path := args[0]

	values, err := sess.client.ListValues(path)
	if err != nil {
		return fmt.Errorf("failed to list values: %w", err)
	}

	views := make([]valueView, 0, len(values))
	for _, name := range values.Names() {
		views = append(views, newValueView(name, values[name]))
	}

	if structured() {
		return printStructured(map[string]any{
			"path":   path,
			"values": views,
			"count":  len(views),
		})
	}

	for _, v := range views {
		printInfo("%-24s %-14s %s\n", displayName(v.Name), v.Type, v.Data)
	}
	printVerbose("\nTotal: %d values\n", len(views))
	return nil
}
