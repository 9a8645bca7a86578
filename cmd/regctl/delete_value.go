package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteValueAll bool

func init() {
	cmd := newDeleteValueCmd()
	cmd.Flags().BoolVar(&deleteValueAll, "all", false, "Delete every value of the key")
	rootCmd.AddCommand(cmd)
}

func newDeleteValueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-value <path> [name]",
		Short: "Delete a value",
		Long: `The delete-value command deletes one value, or every value with --all.
Deleting a value that does not exist succeeds.

Example:
  regctl delete-value "HKCU:Software\\Vendor" Version
  regctl delete-value "HKCU:Software\\Vendor" --all`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteValue(args)
		},
	}
	return cmd
}

func runDeleteValue(args []string) error {
	path := args[0]

	var (
		written string
		err     error
		name    string
	)
	switch {
	case deleteValueAll && len(args) > 1:
		return fmt.Errorf("cannot give a value name together with --all")
	case deleteValueAll:
		written, err = sess.client.DeleteAllValues(path)
	case len(args) < 2:
		return fmt.Errorf("expected a value name or --all")
	default:
		name = args[1]
		written, err = sess.client.DeleteValue(path, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	if err := sess.commit(); err != nil {
		return err
	}

	if structured() {
		return printStructured(map[string]any{
			"path":    written,
			"name":    name,
			"all":     deleteValueAll,
			"success": true,
		})
	}
	if deleteValueAll {
		printInfo("✓ All values deleted from %s\n", written)
	} else {
		printInfo("✓ Value deleted: %s\n", displayName(name))
	}
	return nil
}
