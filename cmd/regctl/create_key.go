package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCreateKeyCmd())
}

func newCreateKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-key <path>",
		Short: "Create a key",
		Long: `The create-key command creates a key and any missing parents. Creating a
key that already exists succeeds without changing it.

Example:
  regctl create-key "HKCU:Software\\Vendor\\App"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateKey(args)
		},
	}
	return cmd
}

func runCreateKey(args []string) error {
	created, err := sess.client.CreateKey(args[0])
	if err != nil {
		return fmt.Errorf("failed to create key: %w", err)
	}
	if err := sess.commit(); err != nil {
		return err
	}

	if structured() {
		return printStructured(map[string]any{
			"path":    created,
			"success": true,
		})
	}
	printInfo("✓ Key created: %s\n", created)
	return nil
}
