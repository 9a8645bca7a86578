package filetype

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/joshuapare/regkit/pkg/regpath"
	"github.com/joshuapare/regkit/pkg/registry"
	"github.com/joshuapare/regkit/pkg/types"
)

// Priority orders the layers an association can come from. A higher
// priority overrides a lower one.
type Priority int

const (
	// SystemDefault is the machine-wide class registration under HKLM.
	SystemDefault Priority = iota
	// UserDefault is the per-user class registration under HKCU.
	UserDefault
	// UserChoice is the ProgID the user picked in Explorer.
	UserChoice
)

// Priorities lists every layer, highest first.
func Priorities() []Priority {
	return []Priority{UserChoice, UserDefault, SystemDefault}
}

func (p Priority) String() string {
	switch p {
	case SystemDefault:
		return "system"
	case UserDefault:
		return "user"
	case UserChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// ParsePriority accepts the names printed by String.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities() {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, types.Errorf(types.ErrKindUnsupported, nil, "unknown file type layer %q", s)
}

// Registry locations of the layers.
const (
	SystemClassesRoot = `HKLM:SOFTWARE\Classes`
	UserClassesRoot   = `HKCU:Software\Classes`
	FileExtsRoot      = `HKCU:SOFTWARE\Microsoft\Windows\CurrentVersion\Explorer\FileExts`

	userChoiceKey  = "UserChoice"
	progIDValue    = "ProgId"
	defaultIconKey = "DefaultIcon"
	shellKey       = "shell"
	commandKey     = "command"
)

// Association is what one layer, or the merge of all of them, says about a
// file extension.
type Association struct {
	Ext      string
	Priority Priority
	ProgID   string
	Icon     string
	// Verbs maps a shell verb such as "open" to its command line.
	Verbs map[string]string
}

// empty reports whether the association carries nothing but its key.
func (a *Association) empty() bool {
	return a.ProgID == "" && a.Icon == "" && len(a.Verbs) == 0
}

// Associations reads and writes file-type associations through a Client.
type Associations struct {
	c *registry.Client
}

// New creates an Associations over c.
func New(c *registry.Client) *Associations {
	return &Associations{c: c}
}

// ValidateExt checks that ext looks like ".txt": a leading dot and a
// single, valid key name.
func ValidateExt(ext string) error {
	if len(ext) < 2 || ext[0] != '.' {
		return types.Errorf(types.ErrKindInvalidPath, nil, "file extension %q must start with a dot", ext)
	}
	if strings.ContainsAny(ext, `\/`) {
		return types.Errorf(types.ErrKindInvalidPath, nil, "file extension %q must be a single key name", ext)
	}
	n, err := regpath.Normalize(ext)
	if err != nil {
		return err
	}
	if n != ext {
		return types.Errorf(types.ErrKindInvalidPath, nil, "file extension %q is not a valid key name", ext)
	}
	return nil
}

func classRoot(p Priority) string {
	if p == SystemDefault {
		return SystemClassesRoot
	}
	return UserClassesRoot
}

func userChoicePath(ext string) string {
	return FileExtsRoot + regpath.Sep + ext + regpath.Sep + userChoiceKey
}

// Lookup reads one layer. It fails with types.ErrKindNotFound when the
// layer says nothing about ext.
//
// In the class layers the ProgID is the default value of the extension
// key, and the icon and verbs come from the extension key or, where it has
// none, from the ProgID's class key. UserChoice names only a ProgID; its
// icon and verbs come from the ProgID's class key, per user first.
func (a *Associations) Lookup(ext string, p Priority) (*Association, error) {
	if err := ValidateExt(ext); err != nil {
		return nil, err
	}
	assoc := &Association{Ext: ext, Priority: p, Verbs: map[string]string{}}

	switch p {
	case SystemDefault, UserDefault:
		root := classRoot(p)
		extKey := root + regpath.Sep + ext
		progID, err := a.readString(extKey, types.DefaultValueName)
		if err != nil {
			return nil, err
		}
		assoc.ProgID = progID
		if err := a.readClass(assoc, extKey); err != nil {
			return nil, err
		}
		if progID != "" {
			if err := a.readClass(assoc, root+regpath.Sep+progID); err != nil {
				return nil, err
			}
		}

	case UserChoice:
		progID, err := a.readString(userChoicePath(ext), progIDValue)
		if err != nil {
			return nil, err
		}
		assoc.ProgID = progID
		if progID != "" {
			for _, root := range []string{UserClassesRoot, SystemClassesRoot} {
				if err := a.readClass(assoc, root+regpath.Sep+progID); err != nil {
					return nil, err
				}
			}
		}

	default:
		return nil, types.Errorf(types.ErrKindUnsupported, nil, "unknown file type layer %d", int(p))
	}

	if assoc.empty() {
		return nil, types.Errorf(types.ErrKindNotFound, nil, "%s: no %s association", ext, p)
	}
	return assoc, nil
}

// Layers returns every layer that has an association for ext, highest
// priority first. No layers is not an error.
func (a *Associations) Layers(ext string) ([]*Association, error) {
	var out []*Association
	for _, p := range Priorities() {
		assoc, err := a.Lookup(ext, p)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, assoc)
	}
	return out, nil
}

// Resolve merges the layers into the association in effect: ProgID and
// icon come from the highest layer that sets them, and verbs from every
// layer with higher layers overriding. The result carries the highest
// layer's priority.
func (a *Associations) Resolve(ext string) (*Association, error) {
	layers, err := a.Layers(ext)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, types.Errorf(types.ErrKindNotFound, nil, "%s: no association", ext)
	}

	out := &Association{Ext: ext, Priority: layers[0].Priority, Verbs: map[string]string{}}
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if l.ProgID != "" {
			out.ProgID = l.ProgID
		}
		if l.Icon != "" {
			out.Icon = l.Icon
		}
		maps.Copy(out.Verbs, l.Verbs)
	}
	return out, nil
}

// Save writes assoc into its layer and returns the keys written. Class
// layers store the ProgID, icon and verbs under the extension key.
// UserChoice stores only the ProgID.
func (a *Associations) Save(assoc *Association) ([]string, error) {
	if assoc == nil {
		return nil, types.Errorf(types.ErrKindInvalidPath, nil, "nil association")
	}
	if err := ValidateExt(assoc.Ext); err != nil {
		return nil, err
	}

	switch assoc.Priority {
	case UserChoice:
		if assoc.Icon != "" || len(assoc.Verbs) > 0 {
			return nil, types.Errorf(types.ErrKindUnsupported, nil, "%s: user choice holds a ProgID only", assoc.Ext)
		}
		if assoc.ProgID == "" {
			return nil, types.Errorf(types.ErrKindInvalidPath, nil, "%s: user choice needs a ProgID", assoc.Ext)
		}
		path, err := a.c.SaveValue(userChoicePath(assoc.Ext), progIDValue, types.StringValue(assoc.ProgID))
		if err != nil {
			return nil, err
		}
		return []string{path}, nil

	case SystemDefault, UserDefault:
		k := a.c.NewKey(registry.AbsolutePath(classRoot(assoc.Priority) + regpath.Sep + assoc.Ext))
		if assoc.ProgID != "" {
			k.AddValue(types.DefaultValueName, types.StringValue(assoc.ProgID))
		}
		if assoc.Icon != "" {
			icon := a.c.NewKey(registry.RelativeToKey{Key: k, Path: defaultIconKey})
			icon.AddValue(types.DefaultValueName, types.StringValue(assoc.Icon))
			k.AddMember(icon)
		}
		verbs := make([]string, 0, len(assoc.Verbs))
		for verb := range assoc.Verbs {
			verbs = append(verbs, verb)
		}
		slices.Sort(verbs)
		for _, verb := range verbs {
			cmd := a.c.NewKey(registry.RelativeToKey{Key: k, Path: shellKey + regpath.Sep + verb + regpath.Sep + commandKey})
			cmd.AddValue(types.DefaultValueName, types.StringValue(assoc.Verbs[verb]))
			k.AddMember(cmd)
		}
		return k.Save(true)

	default:
		return nil, types.Errorf(types.ErrKindUnsupported, nil, "unknown file type layer %d", int(assoc.Priority))
	}
}

// Delete removes a layer's extension key with its subtree; for UserChoice
// only the UserChoice key goes. ProgID class keys are left alone.
func (a *Associations) Delete(ext string, p Priority) ([]string, error) {
	if err := ValidateExt(ext); err != nil {
		return nil, err
	}
	switch p {
	case SystemDefault, UserDefault:
		return a.c.DeleteKey(classRoot(p) + regpath.Sep + ext)
	case UserChoice:
		return a.c.DeleteKey(userChoicePath(ext))
	default:
		return nil, types.Errorf(types.ErrKindUnsupported, nil, "unknown file type layer %d", int(p))
	}
}

// readString returns a string value, or "" when the key or value is
// missing or holds something other than a string.
func (a *Associations) readString(path, name string) (string, error) {
	v, err := a.c.LoadValue(path, name)
	if errors.Is(err, types.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	s, err := v.Text()
	if err != nil {
		return "", nil
	}
	return s, nil
}

// readClass fills the icon and any verbs assoc does not have yet from a
// class key.
func (a *Associations) readClass(assoc *Association, classKey string) error {
	if _, err := regpath.SplitAbsPath(classKey, types.ShortNames); err != nil {
		// A ProgID that is not a valid key name has no class key to read.
		return nil
	}
	if assoc.Icon == "" {
		icon, err := a.readString(classKey+regpath.Sep+defaultIconKey, types.DefaultValueName)
		if err != nil {
			return err
		}
		assoc.Icon = icon
	}

	shell := classKey + regpath.Sep + shellKey
	verbs, err := a.c.ListSubkeys(shell, registry.DepthChildren)
	if errors.Is(err, types.ErrNotFound) && len(verbs) == 0 {
		return nil
	}
	if err != nil {
		return err
	}
	for _, verbPath := range verbs {
		verb := verbPath[strings.LastIndex(verbPath, regpath.Sep)+1:]
		if _, ok := assoc.Verbs[verb]; ok {
			continue
		}
		cmd, err := a.readString(shell+regpath.Sep+verb+regpath.Sep+commandKey, types.DefaultValueName)
		if errors.Is(err, types.ErrInvalidPath) {
			// Verb names with spaces cannot be addressed by path.
			continue
		}
		if err != nil {
			return err
		}
		assoc.Verbs[verb] = cmd
	}
	return nil
}
