package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	yamlOut    bool
	longNames  bool
	debugLevel string
	regFile    string
	logDir     string
	configFile string
)

// sess is the store and client for the running command.
var sess *session

var rootCmd = &cobra.Command{
	Use:   "regctl",
	Short: "Inspect and edit the Windows registry",
	Long: `regctl lists, reads and edits registry keys and values, exports and
imports .reg files and resolves file type associations.

Paths use either hive spelling:
  HKCU:Software\Vendor
  HKEY_CURRENT_USER\Software\Vendor

Without --file regctl works on the live registry (Windows only). With
--file it works on a .reg file instead: the file is loaded into memory and
written back after every command that changes something.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&yamlOut, "yaml", false, "Output in YAML format")
	rootCmd.PersistentFlags().BoolVar(&longNames, "long-names", false, "Print HKEY_CURRENT_USER\\... instead of HKCU:...")
	rootCmd.PersistentFlags().StringVar(&debugLevel, "debug", "silent", "Failure policy (silent, log, strict)")
	rootCmd.PersistentFlags().StringVarP(&regFile, "file", "f", "", "Work on a .reg file instead of the live registry")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write logs to daily files in this directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $HOME/.config/regctl/config.yaml)")

	cobra.OnFinalize(func() {
		if sess != nil {
			sess.close()
		}
	})
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and opens the session that registry
// commands run against.
func setup(cmd *cobra.Command, args []string) error {
	if !needsSession(cmd) {
		return nil
	}
	v, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	cfg, err := readSettings(v)
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	sess = s
	return nil
}

// needsSession is false for version, help and shell completion.
func needsSession(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case versionCmd.Name(), "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printYAML outputs data as YAML
func printYAML(v any) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

// structured reports whether --json or --yaml was given.
func structured() bool {
	return jsonOut || yamlOut
}

// printStructured writes v in the format selected by --json or --yaml.
func printStructured(v any) error {
	if yamlOut {
		return printYAML(v)
	}
	return printJSON(v)
}
