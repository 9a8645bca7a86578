package registry

import (
	"errors"
	"strings"

	"github.com/joshuapare/regkit/pkg/regpath"
	"github.com/joshuapare/regkit/pkg/types"
)

// Key is an in-memory view of a registry key: a location, the values being
// tracked for it and a set of named member keys. Nothing is read or written
// until Populate, Load, Save or Delete is called, and members need not be
// subkeys of their owner.
//
// Structural operations fail softly: a member whose location cannot be
// resolved or opened is skipped, the walk carries on, and the skipped
// failures come back joined in the returned error. Under DebugStrict the
// walk stops at the first failure instead.
//
// Example:
//
//	k := c.NewKey(registry.AbsolutePath(`HKCU:Software\Vendor`))
//	if err := k.Populate(registry.DepthUnbounded); err != nil {
//	    log.Println(err) // some subkeys were skipped
//	}
//	k.AddValue("Enabled", types.DWordValue(1))
//	modified, err := k.Save(true)
type Key struct {
	client *Client
	loc    Location

	members map[string]*Key
	order   []string // member names in insertion order
	values  types.ValueMap
}

// KeyOption sets up a Key as NewKey creates it.
type KeyOption func(*Key)

// WithValues tracks every entry of values, replacing same-named entries.
func WithValues(values types.ValueMap) KeyOption {
	return func(k *Key) {
		for name, v := range values {
			k.AddValue(name, v)
		}
	}
}

// WithMembers adds each child as AddMember does.
func WithMembers(children ...*Key) KeyOption {
	return func(k *Key) {
		for _, child := range children {
			k.AddMember(child)
		}
	}
}

// WithPopulate calls Populate(depth). A failure is only logged, per the
// client's debug level; use OpenKey to get it back.
func WithPopulate(depth int) KeyOption {
	return func(k *Key) {
		_ = k.Populate(depth)
	}
}

// NewKey creates a Key at loc. Without options it has no members and no
// tracked values; options apply in the order given.
func (c *Client) NewKey(loc Location, opts ...KeyOption) *Key {
	k := &Key{
		client:  c,
		loc:     loc,
		members: make(map[string]*Key),
		values:  make(types.ValueMap),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// OpenKey creates a Key at loc with NewKey and populates it down to depth.
// The key is returned even when Populate fails.
func (c *Client) OpenKey(loc Location, depth int, opts ...KeyOption) (*Key, error) {
	k := c.NewKey(loc, opts...)
	return k, k.Populate(depth)
}

// Location returns the location the key was created with.
func (k *Key) Location() Location { return k.loc }

// SetLocation moves the key. Members are not moved, but RelativeToKey
// members follow it.
func (k *Key) SetLocation(loc Location) { k.loc = loc }

// Canonical resolves the key's location.
func (k *Key) Canonical() (regpath.Canonical, error) {
	return ParseLocation(k.loc, k.client.form)
}

// Hive returns the key's hive, or 0 if the location does not resolve.
func (k *Key) Hive() types.Hive {
	at, err := k.Canonical()
	if err != nil {
		return 0
	}
	return at.Hive
}

// RelPath returns the path relative to the hive, or "" if the location
// does not resolve.
func (k *Key) RelPath() string {
	at, err := k.Canonical()
	if err != nil {
		return ""
	}
	return at.Rel
}

// AbsPath returns the absolute path, or "" if the location does not resolve.
func (k *Key) AbsPath() string {
	at, err := k.Canonical()
	if err != nil {
		return ""
	}
	return at.Abs
}

func (k *Key) String() string { return k.AbsPath() }

// Populate merges every value stored under the key into the tracked values,
// replacing same-named entries. Unless depth is DepthValuesOnly it then
// lists subkeys down to depth (see ListSubkeys) and, for each one, adds a
// new member populated with its values, or refreshes the values of the
// member already at that location. Existing members are never replaced or
// expanded further.
func (k *Key) Populate(depth int) error {
	c := k.client
	at, err := k.Canonical()
	if err != nil {
		return c.fail("populate", k.describe(), err)
	}

	values, err := c.listValues(at)
	if err != nil {
		return c.fail("populate", at.Abs, err)
	}
	for name, v := range values {
		k.values[name] = v
	}
	if depth == DepthValuesOnly {
		return nil
	}

	subkeys, err := c.listSubkeys(at, depth)
	if err != nil && (len(subkeys) == 0 || c.strict()) {
		return c.fail("populate", at.Abs, err)
	}
	var skipped []error
	if err != nil {
		skipped = append(skipped, c.fail("populate", at.Abs, err))
	}

	for _, sub := range subkeys {
		if _, member, ok := k.memberAt(sub); ok {
			if err := member.Populate(DepthValuesOnly); err != nil {
				if c.strict() {
					return err
				}
				skipped = append(skipped, err)
			}
			continue
		}

		child := c.NewKey(AbsolutePath(sub.Abs))
		if _, err := child.Canonical(); err != nil {
			err = c.fail("populate", sub.Abs, err)
			if c.strict() {
				return err
			}
			skipped = append(skipped, err)
			continue
		}
		k.AddMember(child)
		if err := child.Populate(DepthValuesOnly); err != nil {
			if c.strict() {
				return err
			}
			skipped = append(skipped, err)
		}
	}
	return errors.Join(skipped...)
}

// Load re-reads the tracked values from the store. Only names already
// tracked are read; a name the key no longer has becomes nil. If the key
// cannot be opened the tracked values are left as they are. With recurse
// every member is loaded too.
func (k *Key) Load(recurse bool) error {
	c := k.client
	var skipped []error

	at, err := k.Canonical()
	if err == nil {
		var values types.ValueMap
		values, err = c.loadValues(at, k.values.Names())
		if err == nil {
			k.values = values
		}
	}
	if err != nil {
		err = c.fail("load", k.describe(), err)
		if c.strict() {
			return err
		}
		skipped = append(skipped, err)
	}

	if recurse {
		for _, name := range k.order {
			if err := k.members[name].Load(true); err != nil {
				if c.strict() {
					return err
				}
				skipped = append(skipped, err)
			}
		}
	}
	return errors.Join(skipped...)
}

// Save writes the tracked values, creating the key if it is missing; nil
// entries delete the value. With recurse every member is saved too. The
// result lists every key that was written.
func (k *Key) Save(recurse bool) ([]string, error) {
	c := k.client
	var (
		modified []string
		skipped  []error
	)

	at, err := k.Canonical()
	if err == nil {
		err = c.saveValues(at, k.values)
	}
	if err != nil {
		err = c.fail("save", k.describe(), err)
		if c.strict() {
			return modified, err
		}
		skipped = append(skipped, err)
	} else {
		modified = append(modified, at.Abs)
	}

	if recurse {
		for _, name := range k.order {
			paths, err := k.members[name].Save(true)
			modified = append(modified, paths...)
			if err != nil {
				if c.strict() {
					return modified, err
				}
				skipped = append(skipped, err)
			}
		}
	}
	return modified, errors.Join(skipped...)
}

// Delete removes the key and its whole subtree from the store, as
// DeleteKey does. With recurse every member is deleted too; a member
// inside this key's subtree is normally gone already and contributes
// nothing, without an error. The result lists every deleted key.
func (k *Key) Delete(recurse bool) ([]string, error) {
	return k.delete(recurse, false)
}

// delete is Delete; a missing key is only an error for the key Delete was
// called on, not for its members.
func (k *Key) delete(recurse, member bool) ([]string, error) {
	c := k.client
	var (
		deleted []string
		skipped []error
	)

	at, err := k.Canonical()
	if err == nil {
		var keys []regpath.Canonical
		keys, err = c.deleteKey(at)
		deleted = append(deleted, absPaths(keys)...)
		if member && isNotFound(err) {
			err = nil
		}
	}
	if err != nil {
		err = c.fail("delete", k.describe(), err)
		if c.strict() {
			return deleted, err
		}
		skipped = append(skipped, err)
	}

	if recurse {
		for _, name := range k.order {
			paths, err := k.members[name].delete(true, true)
			deleted = append(deleted, paths...)
			if err != nil {
				if c.strict() {
					return deleted, err
				}
				skipped = append(skipped, err)
			}
		}
	}
	return deleted, errors.Join(skipped...)
}

// AddMember tracks child under a derived name and returns that name: the
// path relative to this key if child lies inside it, otherwise child's
// absolute path. A child whose location does not resolve is named by its
// raw location text. A member with the same name is replaced.
func (k *Key) AddMember(child *Key) string {
	at, err := child.Canonical()
	if err != nil {
		name := child.describe()
		k.AddNamedMember(name, child)
		return name
	}
	name := at.Abs
	if rel, err := regpath.RelativePath(k.AbsPath(), name); err == nil {
		name = rel
	}
	k.AddNamedMember(name, child)
	return name
}

// AddNamedMember tracks child under name, replacing any member with that name.
func (k *Key) AddNamedMember(name string, child *Key) {
	if _, ok := k.members[name]; !ok {
		k.order = append(k.order, name)
	}
	k.members[name] = child
}

// GetMember returns the member tracked under name.
func (k *Key) GetMember(name string) (*Key, bool) {
	m, ok := k.members[name]
	return m, ok
}

// GetMemberByLocation returns the member whose location resolves to the
// same key as loc, with the name it is tracked under.
func (k *Key) GetMemberByLocation(loc Location) (string, *Key, bool) {
	at, err := ParseLocation(loc, k.client.form)
	if err != nil {
		return "", nil, false
	}
	return k.memberAt(at)
}

func (k *Key) memberAt(at regpath.Canonical) (string, *Key, bool) {
	for _, name := range k.order {
		m := k.members[name]
		mat, err := m.Canonical()
		if err != nil {
			continue
		}
		if mat.Hive == at.Hive && strings.EqualFold(mat.Rel, at.Rel) {
			return name, m, true
		}
	}
	return "", nil, false
}

// RemoveMember stops tracking the named member. The store is not touched.
func (k *Key) RemoveMember(name string) (*Key, bool) {
	m, ok := k.members[name]
	if !ok {
		return nil, false
	}
	delete(k.members, name)
	for i, n := range k.order {
		if n == name {
			k.order = append(k.order[:i], k.order[i+1:]...)
			break
		}
	}
	return m, true
}

// MemberNames returns member names in the order they were added.
func (k *Key) MemberNames() []string {
	return append([]string(nil), k.order...)
}

// AddValue tracks a value; nil marks it for deletion on Save.
func (k *Key) AddValue(name string, v *types.Value) {
	k.values[name] = v
}

// GetValue returns a tracked value. ok is false when name is not tracked;
// a tracked nil means the value is absent or marked for deletion.
func (k *Key) GetValue(name string) (v *types.Value, ok bool) {
	v, ok = k.values[name]
	return v, ok
}

// RemoveValue stops tracking a value. The store is not touched.
func (k *Key) RemoveValue(name string) (*types.Value, bool) {
	v, ok := k.values[name]
	if ok {
		delete(k.values, name)
	}
	return v, ok
}

// Values returns a copy of the tracked values.
func (k *Key) Values() types.ValueMap {
	return k.values.Clone()
}

// describe names the key in log lines even when its location is invalid.
func (k *Key) describe() string {
	if at, err := k.Canonical(); err == nil {
		return at.Abs
	}
	switch l := k.loc.(type) {
	case AbsolutePath:
		return string(l)
	case RelativeToHive:
		return l.Hive.String() + ":" + l.Path
	case RelativeToKey:
		return l.Path
	default:
		return "<unresolved>"
	}
}
