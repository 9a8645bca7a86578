package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkit/pkg/filetype"
)

var (
	ftLayer  string
	ftAll    bool
	ftProgID string
	ftIcon   string
	ftVerbs  map[string]string
	ftDelete bool
)

func init() {
	cmd := newFiletypeCmd()
	cmd.Flags().StringVar(&ftLayer, "layer", "", "Layer to read or write (system, user, choice)")
	cmd.Flags().BoolVar(&ftAll, "all", false, "Show every layer instead of the merged association")
	cmd.Flags().StringVar(&ftProgID, "progid", "", "Set the ProgID")
	cmd.Flags().StringVar(&ftIcon, "icon", "", "Set the default icon")
	cmd.Flags().StringToStringVar(&ftVerbs, "verb", nil, "Set a shell verb command (verb=command, repeatable)")
	cmd.Flags().BoolVar(&ftDelete, "delete", false, "Delete the association in --layer")
	rootCmd.AddCommand(cmd)
}

func newFiletypeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filetype <ext>",
		Short: "Show or change a file type association",
		Long: `The filetype command reads and writes file extension associations.

An association has three layers, lowest first:
  system   HKLM:SOFTWARE\Classes\<ext>
  user     HKCU:Software\Classes\<ext>
  choice   Explorer's UserChoice for <ext>

Without flags the merged association in effect is shown. Setting
--progid, --icon or --verb writes into --layer (default user).

Example:
  regctl filetype .txt
  regctl filetype .txt --all --json
  regctl filetype .md --progid mdfile --verb open="notepad.exe %1"
  regctl filetype .md --layer choice --progid mdfile
  regctl filetype .md --layer user --delete`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiletype(args)
		},
	}
	return cmd
}

// associationView is the printed form of an association.
type associationView struct {
	Ext    string            `json:"ext" yaml:"ext"`
	Layer  string            `json:"layer" yaml:"layer"`
	ProgID string            `json:"progid,omitempty" yaml:"progid,omitempty"`
	Icon   string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	Verbs  map[string]string `json:"verbs,omitempty" yaml:"verbs,omitempty"`
}

func newAssociationView(a *filetype.Association) associationView {
	return associationView{
		Ext:    a.Ext,
		Layer:  a.Priority.String(),
		ProgID: a.ProgID,
		Icon:   a.Icon,
		Verbs:  a.Verbs,
	}
}

func runFiletype(args []string) error {
	ext := args[0]
	if err := filetype.ValidateExt(ext); err != nil {
		return err
	}
	assocs := filetype.New(sess.client)

	writing := ftProgID != "" || ftIcon != "" || len(ftVerbs) > 0
	switch {
	case ftDelete && writing:
		return fmt.Errorf("cannot combine --delete with --progid, --icon or --verb")
	case ftDelete:
		return deleteFiletype(assocs, ext)
	case writing:
		return saveFiletype(assocs, ext)
	}

	var found []*filetype.Association
	switch {
	case ftAll:
		layers, err := assocs.Layers(ext)
		if err != nil {
			return fmt.Errorf("failed to read associations: %w", err)
		}
		found = layers
	case ftLayer != "":
		p, err := filetype.ParsePriority(ftLayer)
		if err != nil {
			return err
		}
		a, err := assocs.Lookup(ext, p)
		if err != nil {
			return fmt.Errorf("failed to read association: %w", err)
		}
		found = append(found, a)
	default:
		a, err := assocs.Resolve(ext)
		if err != nil {
			return fmt.Errorf("failed to resolve association: %w", err)
		}
		found = append(found, a)
	}

	views := make([]associationView, 0, len(found))
	for _, a := range found {
		views = append(views, newAssociationView(a))
	}
	if structured() {
		if ftAll {
			return printStructured(views)
		}
		return printStructured(views[0])
	}

	for i, v := range views {
		if i > 0 {
			printInfo("\n")
		}
		printAssociation(v)
	}
	return nil
}

func printAssociation(v associationView) {
	printInfo("%s (%s)\n", v.Ext, v.Layer)
	if v.ProgID != "" {
		printInfo("  ProgID: %s\n", v.ProgID)
	}
	if v.Icon != "" {
		printInfo("  Icon:   %s\n", v.Icon)
	}
	for _, verb := range slices.Sorted(maps.Keys(v.Verbs)) {
		printInfo("  %-8s %s\n", verb+":", v.Verbs[verb])
	}
}

func saveFiletype(assocs *filetype.Associations, ext string) error {
	p := filetype.UserDefault
	if ftLayer != "" {
		var err error
		if p, err = filetype.ParsePriority(ftLayer); err != nil {
			return err
		}
	}

	written, err := assocs.Save(&filetype.Association{
		Ext:      ext,
		Priority: p,
		ProgID:   ftProgID,
		Icon:     ftIcon,
		Verbs:    ftVerbs,
	})
	if len(written) > 0 {
		if cerr := sess.commit(); cerr != nil {
			return cerr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to save association: %w", err)
	}

	if structured() {
		return printStructured(map[string]any{
			"ext":     ext,
			"layer":   p.String(),
			"written": written,
			"success": true,
		})
	}
	for _, key := range written {
		printVerbose("  wrote %s\n", key)
	}
	printInfo("✓ Association saved: %s (%s)\n", ext, p)
	return nil
}

func deleteFiletype(assocs *filetype.Associations, ext string) error {
	if ftLayer == "" {
		return fmt.Errorf("--delete needs --layer")
	}
	p, err := filetype.ParsePriority(ftLayer)
	if err != nil {
		return err
	}

	deleted, err := assocs.Delete(ext, p)
	if len(deleted) > 0 {
		if cerr := sess.commit(); cerr != nil {
			return cerr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to delete association: %w", err)
	}

	if structured() {
		return printStructured(map[string]any{
			"ext":     ext,
			"layer":   p.String(),
			"deleted": deleted,
			"success": true,
		})
	}
	printInfo("✓ Association deleted: %s (%s)\n", ext, p)
	return nil
}
