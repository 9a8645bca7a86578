package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkit/pkg/types"
)

var (
	setType      string
	setSeparator string
)

func init() {
	cmd := newSetCmd()
	cmd.Flags().StringVarP(&setType, "type", "t", "sz", "Value type (sz, expand_sz, multi_sz, dword, dword_be, qword, binary, none, link)")
	cmd.Flags().StringVar(&setSeparator, "separator", ",", "Item separator for multi_sz values")
	rootCmd.AddCommand(cmd)
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <path> <name> <value>",
		Short: "Write a value",
		Long: `The set command writes a value, creating the key and any missing parents.
An empty name ("") writes the default value.

Example:
  regctl set "HKCU:Software\\Vendor" Version 1.0.0
  regctl set "HKCU:Software\\Vendor" Enabled 1 --type dword
  regctl set "HKCU:Software\\Vendor" Data "de ad be ef" --type binary
  regctl set "HKCU:Software\\Vendor" Paths "C:\\a;D:\\b" --type multi_sz --separator ";"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(args)
		},
	}
	return cmd
}

func runSet(args []string) error {
	path, name, text := args[0], args[1], args[2]

	v, err := types.ParseValue(text, setType, setSeparator)
	if err != nil {
		return fmt.Errorf("failed to parse value: %w", err)
	}

	written, err := sess.client.SaveValue(path, name, v)
	if err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	if err := sess.commit(); err != nil {
		return err
	}

	if structured() {
		view := newValueView(name, v)
		return printStructured(map[string]any{
			"path":    written,
			"name":    view.Name,
			"type":    view.Type,
			"data":    view.Data,
			"success": true,
		})
	}

	printVerbose("%s %s = %s\n", written, displayName(name), v)
	printInfo("✓ Value set\n")
	return nil
}
