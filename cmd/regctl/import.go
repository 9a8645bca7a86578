package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkit/pkg/registry"
)

var importEncoding string

func init() {
	cmd := newImportCmd()
	cmd.Flags().StringVar(&importEncoding, "encoding", "", "Encoding of a file without byte order mark (default UTF-8, Windows-1252 for REGEDIT4)")
	rootCmd.AddCommand(cmd)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <reg-file>",
		Short: "Apply a .reg file",
		Long: `The import command applies a .reg file: it creates keys, sets values and
carries out [-key] and "name"=- deletions, in file order. Both
"Windows Registry Editor Version 5.00" and REGEDIT4 files are accepted.

Import stops at the first edit that fails; earlier edits stay applied.

Example:
  regctl import settings.reg
  regctl import settings.reg --file target.reg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args)
		},
	}
	return cmd
}

func runImport(args []string) error {
	regPath := args[0]

	f, err := os.Open(regPath)
	if err != nil {
		return fmt.Errorf(".reg file not found: %w", err)
	}
	defer f.Close()

	printVerbose("Importing %s\n", regPath)

	touched, err := sess.client.Import(f, &registry.ImportOptions{Encoding: importEncoding})
	if len(touched) > 0 {
		if cerr := sess.commit(); cerr != nil {
			return cerr
		}
	}

	if structured() {
		if perr := printStructured(map[string]any{
			"file":    regPath,
			"keys":    touched,
			"count":   len(touched),
			"success": err == nil,
		}); perr != nil {
			return perr
		}
	} else {
		for _, key := range touched {
			printVerbose("  %s\n", key)
		}
		if err == nil {
			printInfo("✓ Imported %s: %d keys changed\n", regPath, len(touched))
		}
	}

	if err != nil {
		return fmt.Errorf("import failed after %d keys: %w", len(touched), err)
	}
	return nil
}
