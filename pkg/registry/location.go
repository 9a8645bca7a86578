package registry

import (
	"github.com/joshuapare/regkit/pkg/regpath"
	"github.com/joshuapare/regkit/pkg/types"
)

// maxLocationHops bounds how many keys a location may be chained through
// before resolution gives up, which also catches cycles.
const maxLocationHops = 64

// Location names a key. The variants are AbsolutePath, HiveRoot, AtKey,
// RelativeToKey and RelativeToHive; ParseLocation resolves any of them.
// Locations that refer to a Key follow that key's current location each
// time they are resolved.
type Location interface {
	isLocation()
}

// AbsolutePath is a full path in either hive name form, such as
// "HKCU:Software\Vendor" or "HKEY_CURRENT_USER\Software\Vendor".
type AbsolutePath string

// HiveRoot is the root key of a hive.
type HiveRoot types.Hive

// AtKey is the location of an existing Key.
type AtKey struct {
	Key *Key
}

// RelativeToKey is Path taken from Key's location. Path may use "." and
// ".." as long as the result stays inside the hive.
type RelativeToKey struct {
	Key  *Key
	Path string
}

// RelativeToHive is Path below a hive root.
type RelativeToHive struct {
	Hive types.Hive
	Path string
}

func (AbsolutePath) isLocation()   {}
func (HiveRoot) isLocation()       {}
func (AtKey) isLocation()          {}
func (RelativeToKey) isLocation()  {}
func (RelativeToHive) isLocation() {}

// ParseLocation resolves loc to a canonical path rendered in form.
func ParseLocation(loc Location, form types.NameForm) (regpath.Canonical, error) {
	return parseLocation(loc, form, 0)
}

func parseLocation(loc Location, form types.NameForm, hops int) (regpath.Canonical, error) {
	if hops > maxLocationHops {
		return regpath.Canonical{}, types.Errorf(types.ErrKindInvalidPath, nil, "location chained through more than %d keys", maxLocationHops)
	}

	switch l := loc.(type) {
	case AbsolutePath:
		return regpath.SplitAbsPath(string(l), form)

	case HiveRoot:
		return regpath.Resolve(types.Hive(l), "", form)

	case RelativeToHive:
		return regpath.Resolve(l.Hive, l.Path, form)

	case AtKey:
		if l.Key == nil {
			return regpath.Canonical{}, types.Errorf(types.ErrKindInvalidPath, nil, "location refers to a nil key")
		}
		return parseLocation(l.Key.loc, form, hops+1)

	case RelativeToKey:
		if l.Key == nil {
			return regpath.Canonical{}, types.Errorf(types.ErrKindInvalidPath, nil, "location refers to a nil key")
		}
		base, err := parseLocation(l.Key.loc, form, hops+1)
		if err != nil {
			return regpath.Canonical{}, err
		}
		abs, err := regpath.Join(base.Abs, l.Path, form)
		if err != nil {
			return regpath.Canonical{}, err
		}
		return regpath.SplitAbsPath(abs, form)

	case nil:
		return regpath.Canonical{}, types.Errorf(types.ErrKindInvalidPath, nil, "empty location")

	default:
		return regpath.Canonical{}, types.Errorf(types.ErrKindInvalidPath, nil, "unsupported location %T", loc)
	}
}
