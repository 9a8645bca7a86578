package regpath

import (
	"strings"

	"github.com/joshuapare/regkit/pkg/types"
)

const (
	// Sep separates key names in a path.
	Sep = `\`

	altSep     = "/"
	shortDelim = ":"
	parentDir  = ".."
	currentDir = "."
)

// Canonical is a validated, normalized key location: the hive, the path
// relative to it and the absolute path rendered in Form.
type Canonical struct {
	Hive types.Hive
	Rel  string
	Abs  string
	Form types.NameForm
}

// IsRoot reports whether the location is the bare hive root.
func (c Canonical) IsRoot() bool { return c.Rel == "" }

// In re-renders the location in another name form.
func (c Canonical) In(form types.NameForm) Canonical {
	return Canonical{Hive: c.Hive, Rel: c.Rel, Abs: Format(c.Hive, c.Rel, form), Form: form}
}

// Child appends one key name. name is taken as-is (store enumerations may
// return names the parser would reject, such as ones containing spaces).
func (c Canonical) Child(name string) Canonical {
	rel := name
	if c.Rel != "" {
		rel = c.Rel + Sep + name
	}
	return Canonical{Hive: c.Hive, Rel: rel, Abs: Format(c.Hive, rel, c.Form), Form: c.Form}
}

// Depth is the number of separators in the absolute path.
func (c Canonical) Depth() int { return Depth(c.Abs) }

func (c Canonical) String() string { return c.Abs }

// Format renders hive and an already-normalized relative path.
//
//	ShortNames: HKCU:Software\Classes, HKCU:
//	LongNames:  HKEY_CURRENT_USER\Software\Classes, HKEY_CURRENT_USER
func Format(h types.Hive, rel string, form types.NameForm) string {
	if form == types.LongNames {
		if rel == "" {
			return h.LongName()
		}
		return h.LongName() + Sep + rel
	}
	return h.ShortName() + shortDelim + rel
}

// Depth counts separators, the depth measure used to order deletions.
func Depth(abs string) int {
	return strings.Count(abs, Sep)
}

// SplitAbsPath parses "HKLM:relative\path" or "HKEY_LOCAL_MACHINE\relative\path".
// Both separators are accepted; surrounding whitespace and separators are
// dropped; "." and ".." segments are resolved. The path is rejected when
// the hive token is unknown, when the relative part contains a space or a
// colon, or when it climbs above the hive root.
func SplitAbsPath(path string, form types.NameForm) (Canonical, error) {
	s := strings.TrimSpace(strings.ReplaceAll(path, altSep, Sep))
	s = strings.Trim(s, Sep)
	if s == "" {
		return Canonical{}, types.Errorf(types.ErrKindInvalidPath, nil, "empty registry path %q", path)
	}

	var (
		hive types.Hive
		rest string
	)
	if token, after, _ := strings.Cut(s, shortDelim); isShort(token) {
		hive, _ = types.HiveByShortName(token)
		rest = after
	} else if token, after, _ := strings.Cut(s, Sep); isLong(token) {
		hive, _ = types.HiveByLongName(token)
		rest = after
	} else {
		return Canonical{}, types.Errorf(types.ErrKindInvalidPath, nil, "unknown hive in %q", path)
	}

	rel, err := Normalize(rest)
	if err != nil {
		return Canonical{}, err
	}
	return Canonical{Hive: hive, Rel: rel, Abs: Format(hive, rel, form), Form: form}, nil
}

// JoinAbsPath builds an absolute path from a hive and a relative path,
// applying the same normalization as SplitAbsPath.
func JoinAbsPath(hive types.Hive, rel string, form types.NameForm) (string, error) {
	c, err := Resolve(hive, rel, form)
	if err != nil {
		return "", err
	}
	return c.Abs, nil
}

// Resolve is JoinAbsPath returning the full Canonical.
func Resolve(hive types.Hive, rel string, form types.NameForm) (Canonical, error) {
	if !hive.Valid() {
		return Canonical{}, types.Errorf(types.ErrKindInvalidPath, nil, "unknown hive %d", int(hive))
	}
	n, err := Normalize(rel)
	if err != nil {
		return Canonical{}, err
	}
	return Canonical{Hive: hive, Rel: n, Abs: Format(hive, n, form), Form: form}, nil
}

// Join appends rel to the absolute path abs and normalizes the result, so
// rel may use "." and ".." as long as it stays inside the hive.
func Join(abs, rel string, form types.NameForm) (string, error) {
	base, err := SplitAbsPath(abs, form)
	if err != nil {
		return "", err
	}
	if base.Rel != "" {
		rel = base.Rel + Sep + rel
	}
	return JoinAbsPath(base.Hive, rel, form)
}

// RelativePath returns the path of sub relative to root: "" when both name
// the same key, "Classes" for ("HKCU:Software", "HKCU:Software\Classes").
// It fails when either path is invalid or sub is not inside root's subtree.
// Key names compare case-insensitively, as the registry does; the result
// keeps sub's spelling.
func RelativePath(root, sub string) (string, error) {
	r, err := SplitAbsPath(root, types.LongNames)
	if err != nil {
		return "", err
	}
	s, err := SplitAbsPath(sub, types.LongNames)
	if err != nil {
		return "", err
	}
	if r.Hive != s.Hive {
		return "", types.Errorf(types.ErrKindInvalidPath, nil, "%s is not inside %s", s.Abs, r.Abs)
	}

	rootSegs, subSegs := segments(r.Rel), segments(s.Rel)
	if len(subSegs) < len(rootSegs) {
		return "", types.Errorf(types.ErrKindInvalidPath, nil, "%s is not inside %s", s.Abs, r.Abs)
	}
	for i, seg := range rootSegs {
		if !strings.EqualFold(seg, subSegs[i]) {
			return "", types.Errorf(types.ErrKindInvalidPath, nil, "%s is not inside %s", s.Abs, r.Abs)
		}
	}
	return strings.Join(subSegs[len(rootSegs):], Sep), nil
}

// Normalize cleans a hive-relative path: "/" becomes "\", whitespace and
// separator padding are trimmed, empty and "." segments drop out and ".."
// removes the previous segment. The result must not contain a space, a
// colon or "..".
func Normalize(rel string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(rel, altSep, Sep))
	s = strings.Trim(s, Sep)

	var out []string
	for _, seg := range strings.Split(s, Sep) {
		switch seg {
		case "", currentDir:
			continue
		case parentDir:
			if len(out) > 0 && out[len(out)-1] != parentDir {
				out = out[:len(out)-1]
				continue
			}
		}
		out = append(out, seg)
	}

	n := strings.Join(out, Sep)
	switch {
	case strings.Contains(n, " "):
		return "", types.Errorf(types.ErrKindInvalidPath, nil, "registry path %q contains a space", rel)
	case strings.Contains(n, shortDelim):
		return "", types.Errorf(types.ErrKindInvalidPath, nil, "registry path %q contains a colon", rel)
	case strings.Contains(n, parentDir):
		return "", types.Errorf(types.ErrKindInvalidPath, nil, "registry path %q climbs above the hive root", rel)
	}
	return n, nil
}

func segments(rel string) []string {
	if rel == "" {
		return nil
	}
	return strings.Split(rel, Sep)
}

func isShort(token string) bool {
	_, ok := types.HiveByShortName(token)
	return ok
}

func isLong(token string) bool {
	_, ok := types.HiveByLongName(token)
	return ok
}
