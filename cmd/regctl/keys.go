package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkit/pkg/registry"
)

var (
	keysRecursive bool
	keysDepth     int
)

func init() {
	cmd := newKeysCmd()
	cmd.Flags().BoolVarP(&keysRecursive, "recursive", "r", false, "List the whole subtree")
	cmd.Flags().IntVar(&keysDepth, "depth", 0, "Levels to descend below the direct subkeys (negative = unlimited)")
	rootCmd.AddCommand(cmd)
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys <path>",
		Short: "List subkeys of a key",
		Long: `The keys command lists the subkeys of a key, depth first. By default
only direct subkeys are listed.

Example:
  regctl keys HKCU:Software
  regctl keys "HKLM:SOFTWARE\\Microsoft" --depth 1
  regctl keys HKCU:Software\\Vendor --recursive --json
  regctl keys HKCU:Software --file backup.reg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(args)
		},
	}
	return cmd
}

func runKeys(args []string) error {
	path := args[0]
	depth := keysDepth
	if keysRecursive {
		depth = registry.DepthUnbounded
	}

	printVerbose("Listing %s (depth %d)\n", path, depth)

	keys, err := sess.client.ListSubkeys(path, depth)
	if keys == nil && err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if structured() {
		result := map[string]any{
			"path":  path,
			"keys":  keys,
			"count": len(keys),
		}
		if perr := printStructured(result); perr != nil {
			return perr
		}
	} else {
		for _, key := range keys {
			printInfo("%s\n", key)
		}
		printVerbose("\nTotal: %d keys\n", len(keys))
	}

	if err != nil {
		return fmt.Errorf("some keys were skipped: %w", err)
	}
	return nil
}
