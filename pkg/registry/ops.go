package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/regkit/pkg/regpath"
	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/types"
)

// Depth arguments for ListSubkeys and Key.Populate.
const (
	// DepthUnbounded lists the whole subtree.
	DepthUnbounded = -1
	// DepthChildren lists direct subkeys only.
	DepthChildren = 0
	// DepthValuesOnly makes Key.Populate read values and skip subkeys.
	DepthValuesOnly = -2
)

// CreateKey creates the key at path and any missing ancestors, returning
// its canonical path. An existing key is left untouched. The bare hive root
// is rejected.
func (c *Client) CreateKey(path string) (string, error) {
	at, err := c.resolve(path)
	if err != nil {
		return "", c.fail("create key", path, err)
	}
	if err := c.createKey(at); err != nil {
		return "", c.fail("create key", at.Abs, err)
	}
	return at.Abs, nil
}

func (c *Client) createKey(at regpath.Canonical) error {
	if at.IsRoot() {
		return fmt.Errorf("create key %s: %w", at.Abs, types.ErrHiveRoot)
	}
	h, _, err := c.store.CreateKey(at.Hive, at.Rel, store.AccessWrite)
	if err != nil {
		return wrap(err, "create key", at)
	}
	return h.Close()
}

// DeleteKey removes the key at path with its whole subtree and returns the
// deleted paths, deepest first and path itself last.
//
// The store only deletes childless keys, so the subtree is listed first and
// removed one depth level at a time. If a deletion fails the walk stops:
// the paths removed so far are returned with an error of kind
// types.ErrKindPartial. Nothing is restored.
//
// Example:
//
//	// HKCU:lv0\lv1a and HKCU:lv0\lv1b exist
//	paths, err := c.DeleteKey(`HKCU:lv0`)
//	// paths: [HKCU:lv0\lv1a HKCU:lv0\lv1b HKCU:lv0]
func (c *Client) DeleteKey(path string) ([]string, error) {
	at, err := c.resolve(path)
	if err != nil {
		return nil, c.fail("delete key", path, err)
	}
	deleted, err := c.deleteKey(at)
	return absPaths(deleted), c.fail("delete key", at.Abs, err)
}

func (c *Client) deleteKey(at regpath.Canonical) ([]regpath.Canonical, error) {
	if at.IsRoot() {
		return nil, fmt.Errorf("delete key %s: %w", at.Abs, types.ErrHiveRoot)
	}

	subkeys, err := c.listSubkeys(at, DepthUnbounded)
	if err != nil && (len(subkeys) == 0 || c.strict()) {
		return nil, err
	}

	// Deepest first; the root sorts last since it is the shallowest.
	keys := append([]regpath.Canonical{at}, subkeys...)
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].Depth() > keys[j].Depth()
	})

	var deleted []regpath.Canonical
	for _, k := range keys {
		if err := c.store.DeleteKey(k.Hive, k.Rel); err != nil {
			err = wrap(err, "delete key", k)
			if len(deleted) == 0 {
				return nil, err
			}
			return deleted, types.Errorf(types.ErrKindPartial, err,
				"delete key %s: stopped after %d of %d keys", at.Abs, len(deleted), len(keys))
		}
		deleted = append(deleted, k)
	}
	return deleted, nil
}

// ListSubkeys returns the absolute paths of the subkeys under path,
// depth-first with each key listed before its own subkeys. maxDepth is
// DepthUnbounded (or any negative number) for the whole subtree,
// DepthChildren for direct subkeys, or n > 0 to descend n further levels.
//
// A subkey that cannot be opened is skipped together with its subtree and
// reported in a types.ErrKindPartial error next to the paths that were
// listed; under DebugStrict the walk stops there. If path itself cannot be
// opened the result is nil.
func (c *Client) ListSubkeys(path string, maxDepth int) ([]string, error) {
	at, err := c.resolve(path)
	if err != nil {
		return nil, c.fail("list subkeys", path, err)
	}
	keys, err := c.listSubkeys(at, maxDepth)
	return absPaths(keys), c.fail("list subkeys", at.Abs, err)
}

func (c *Client) listSubkeys(at regpath.Canonical, maxDepth int) ([]regpath.Canonical, error) {
	var (
		out     []regpath.Canonical
		skipped []error
	)

	var walk func(k regpath.Canonical, remaining int) error
	walk = func(k regpath.Canonical, remaining int) error {
		names, err := c.subkeyNames(k)
		if err != nil {
			return err
		}
		next := remaining
		if next > 0 {
			next--
		}
		for _, name := range names {
			child := k.Child(name)
			out = append(out, child)
			if remaining == 0 {
				continue
			}
			if err := walk(child, next); err != nil {
				if c.strict() {
					return err
				}
				skipped = append(skipped, err)
			}
		}
		return nil
	}

	if err := walk(at, maxDepth); err != nil {
		if len(out) == 0 {
			return nil, err
		}
		skipped = append(skipped, err)
	}
	if len(skipped) > 0 {
		return out, types.Errorf(types.ErrKindPartial, errors.Join(skipped...),
			"list subkeys %s: %d subtrees skipped", at.Abs, len(skipped))
	}
	return out, nil
}

func (c *Client) subkeyNames(at regpath.Canonical) ([]string, error) {
	h, err := c.store.OpenKey(at.Hive, at.Rel, store.AccessRead)
	if err != nil {
		return nil, wrap(err, "open", at)
	}
	defer h.Close()

	names, err := h.ReadSubKeyNames()
	if err != nil {
		return nil, wrap(err, "enumerate subkeys of", at)
	}
	return names, nil
}

// ListValues reads every value of the key at path. A key without values
// gives an empty map; only a key that cannot be opened is an error. A value
// removed between enumeration and read is left out.
func (c *Client) ListValues(path string) (types.ValueMap, error) {
	at, err := c.resolve(path)
	if err != nil {
		return nil, c.fail("list values", path, err)
	}
	values, err := c.listValues(at)
	return values, c.fail("list values", at.Abs, err)
}

func (c *Client) listValues(at regpath.Canonical) (types.ValueMap, error) {
	h, err := c.store.OpenKey(at.Hive, at.Rel, store.AccessRead)
	if err != nil {
		return nil, wrap(err, "open", at)
	}
	defer h.Close()

	names, err := h.ReadValueNames()
	if err != nil {
		return nil, wrap(err, "enumerate values of", at)
	}
	values := make(types.ValueMap, len(names))
	for _, name := range names {
		v, err := h.GetValue(name)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, wrap(err, "read value "+quote(name)+" of", at)
		}
		values[name] = v
	}
	return values, nil
}

// LoadValue reads one value. A missing key or value is an error of kind
// types.ErrKindNotFound.
func (c *Client) LoadValue(path, name string) (*types.Value, error) {
	at, err := c.resolve(path)
	if err != nil {
		return nil, c.fail("load value", path, err)
	}
	values, err := c.loadValues(at, []string{name})
	if err != nil {
		return nil, c.fail("load value", at.Abs, err)
	}
	if values[name] == nil {
		err := types.Errorf(types.ErrKindNotFound, nil, "load value %s of %s: value does not exist", quote(name), at.Abs)
		return nil, c.fail("load value", at.Abs, err)
	}
	return values[name], nil
}

// LoadValues reads the named values. Each name maps to its value, or to nil
// when the key has no such value.
func (c *Client) LoadValues(path string, names []string) (types.ValueMap, error) {
	at, err := c.resolve(path)
	if err != nil {
		return nil, c.fail("load values", path, err)
	}
	values, err := c.loadValues(at, names)
	return values, c.fail("load values", at.Abs, err)
}

func (c *Client) loadValues(at regpath.Canonical, names []string) (types.ValueMap, error) {
	h, err := c.store.OpenKey(at.Hive, at.Rel, store.AccessRead)
	if err != nil {
		return nil, wrap(err, "open", at)
	}
	defer h.Close()

	values := make(types.ValueMap, len(names))
	for _, name := range names {
		v, err := h.GetValue(name)
		switch {
		case err == nil:
			values[name] = v
		case isNotFound(err):
			values[name] = nil
		default:
			return nil, wrap(err, "read value "+quote(name)+" of", at)
		}
	}
	return values, nil
}

// SaveValue creates the key at path if needed, then writes v under name.
// A nil v deletes the value; deleting a missing value succeeds.
func (c *Client) SaveValue(path, name string, v *types.Value) (string, error) {
	at, err := c.resolve(path)
	if err != nil {
		return "", c.fail("save value", path, err)
	}
	if err := c.saveValues(at, types.ValueMap{name: v}); err != nil {
		return "", c.fail("save value", at.Abs, err)
	}
	return at.Abs, nil
}

// DeleteValue removes one value; it is SaveValue with a nil value.
func (c *Client) DeleteValue(path, name string) (string, error) {
	return c.SaveValue(path, name, nil)
}

// SaveValues creates the key at path if needed and applies values: non-nil
// entries are written, nil entries deleted. A nil map deletes every value
// the key currently has. Writing stops at the first failure.
func (c *Client) SaveValues(path string, values types.ValueMap) (string, error) {
	at, err := c.resolve(path)
	if err != nil {
		return "", c.fail("save values", path, err)
	}
	if err := c.saveValues(at, values); err != nil {
		return "", c.fail("save values", at.Abs, err)
	}
	return at.Abs, nil
}

// DeleteAllValues removes every value of the key; it is SaveValues with a
// nil map.
func (c *Client) DeleteAllValues(path string) (string, error) {
	return c.SaveValues(path, nil)
}

func (c *Client) saveValues(at regpath.Canonical, values types.ValueMap) error {
	h, _, err := c.store.CreateKey(at.Hive, at.Rel, store.AccessReadWrite)
	if err != nil {
		return wrap(err, "create key", at)
	}
	defer h.Close()

	if values == nil {
		names, err := h.ReadValueNames()
		if err != nil {
			return wrap(err, "enumerate values of", at)
		}
		values = make(types.ValueMap, len(names))
		for _, name := range names {
			values[name] = nil
		}
	}

	for _, name := range values.Names() {
		v := values[name]
		if v == nil {
			if err := h.DeleteValue(name); err != nil && !isNotFound(err) {
				return wrap(err, "delete value "+quote(name)+" of", at)
			}
			continue
		}
		if err := h.SetValue(name, v); err != nil {
			return wrap(err, "write value "+quote(name)+" of", at)
		}
	}
	return nil
}

func absPaths(keys []regpath.Canonical) []string {
	if keys == nil {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Abs
	}
	return out
}

func quote(name string) string {
	if name == types.DefaultValueName {
		return "@"
	}
	return fmt.Sprintf("%q", name)
}
