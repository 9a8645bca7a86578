package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkit/pkg/regpath"
	"github.com/joshuapare/regkit/pkg/registry"
	"github.com/joshuapare/regkit/pkg/types"
)

var deleteKeyDryRun bool

func init() {
	cmd := newDeleteKeyCmd()
	cmd.Flags().BoolVar(&deleteKeyDryRun, "dry-run", false, "Show what would be deleted without deleting")
	rootCmd.AddCommand(cmd)
}

func newDeleteKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-key <path>",
		Short: "Delete a key and its subtree",
		Long: `The delete-key command deletes a key with all of its subkeys, deepest
first. If a deletion fails, the keys deleted so far stay deleted.

Example:
  regctl delete-key "HKCU:Software\\Vendor"
  regctl delete-key "HKCU:Software\\Vendor" --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteKey(args)
		},
	}
	return cmd
}

func runDeleteKey(args []string) error {
	path := args[0]

	if deleteKeyDryRun {
		return previewDeleteKey(path)
	}

	deleted, err := sess.client.DeleteKey(path)
	if len(deleted) > 0 {
		if cerr := sess.commit(); cerr != nil {
			return cerr
		}
	}

	if structured() {
		if perr := printStructured(map[string]any{
			"deleted": deleted,
			"count":   len(deleted),
			"success": err == nil,
		}); perr != nil {
			return perr
		}
	} else {
		for _, key := range deleted {
			printVerbose("  deleted %s\n", key)
		}
		if len(deleted) > 0 {
			printInfo("✓ Deleted %d keys\n", len(deleted))
		}
	}

	if err != nil {
		if len(deleted) > 0 {
			printError("stopped after %d keys\n", len(deleted))
		}
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// previewDeleteKey prints the keys DeleteKey would remove, in the same order.
func previewDeleteKey(path string) error {
	at, err := regpath.SplitAbsPath(path, sess.client.NameForm())
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	if at.IsRoot() {
		return fmt.Errorf("failed to delete key: %w", types.ErrHiveRoot)
	}
	subkeys, err := sess.client.ListSubkeys(path, registry.DepthUnbounded)
	if subkeys == nil && err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	keys := append(subkeys, at.Abs)
	slices.SortStableFunc(keys, func(a, b string) int {
		return regpath.Depth(b) - regpath.Depth(a)
	})

	if structured() {
		return printStructured(map[string]any{
			"would_delete": keys,
			"count":        len(keys),
		})
	}
	for _, key := range keys {
		printInfo("%s\n", key)
	}
	printInfo("Would delete %d keys\n", len(keys))
	return err
}
