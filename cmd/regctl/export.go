package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkit/pkg/registry"
)

var (
	exportOutput   string
	exportEncoding string
	exportBOM      bool
)

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&exportEncoding, "encoding", "", "Output encoding (UTF-8, UTF-16LE); default from config")
	cmd.Flags().BoolVar(&exportBOM, "with-bom", false, "Include a byte order mark (always on for UTF-16LE)")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <path>...",
		Short: "Export keys to .reg format",
		Long: `The export command writes one or more keys with their subtrees as a .reg
file that regedit can import. A hive root such as HKCU: exports the whole
hive.

Example:
  regctl export "HKCU:Software\\Vendor" > vendor.reg
  regctl export "HKCU:Software\\Vendor" -o vendor.reg --encoding UTF-16LE
  regctl export HKCU: HKLM: --file backup.reg -o copy.reg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
	return cmd
}

func runExport(args []string) error {
	encoding := exportEncoding
	if encoding == "" {
		encoding = sess.encoding
	}

	printVerbose("Exporting %d keys as %s\n", len(args), encoding)

	var buf bytes.Buffer
	opts := &registry.ExportOptions{Encoding: encoding, WithBOM: exportBOM}
	if err := sess.client.ExportKeys(&buf, args, opts); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOutput == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(exportOutput, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if structured() {
		return printStructured(map[string]any{
			"keys":     args,
			"output":   exportOutput,
			"encoding": encoding,
			"bytes":    buf.Len(),
			"success":  true,
		})
	}
	printInfo("✓ Exported to %s (%d bytes)\n", exportOutput, buf.Len())
	return nil
}
