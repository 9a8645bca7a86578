package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newGetCmd())
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <path> [name]",
		Short: "Print one value",
		Long: `The get command prints one value of a key. Without a name it prints
the default value.

Example:
  regctl get "HKCU:Software\\Vendor" Version
  regctl get "HKLM:SOFTWARE\\Classes\\.txt"
  regctl get HKCU:Environment Path --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
	return cmd
}

func runGet(args []string) error {
	path := args[0]
	var name string
	if len(args) > 1 {
		name = args[1]
	}

	v, err := sess.client.LoadValue(path, name)
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}

	if structured() {
		view := newValueView(name, v)
		return printStructured(map[string]any{
			"path": path,
			"name": view.Name,
			"type": view.Type,
			"data": view.Data,
		})
	}

	printVerbose("%s %s (%s)\n", path, displayName(name), v.Type)
	if text, err := v.Text(); err == nil {
		// Strings print unquoted so the output can be used as-is.
		printInfo("%s\n", text)
		return nil
	}
	printInfo("%s\n", v)
	return nil
}
