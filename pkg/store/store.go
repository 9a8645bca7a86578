// Package store defines the boundary between regkit and the hierarchical
// key/value store it manages.
//
// A Store is deliberately small: it mirrors the primitive calls a registry
// offers and nothing more. Path parsing, recursive walks and batching live
// above it, in package registry. Implementations are provided for the
// native Windows registry (package winstore) and for an in-process tree
// (package memstore).
package store

import "github.com/joshuapare/regkit/pkg/types"

// Access selects the rights requested when opening a key.
type Access uint32

const (
	AccessRead Access = 1 << iota
	AccessWrite

	AccessReadWrite = AccessRead | AccessWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "read/write"
	default:
		return "none"
	}
}

// Errors every Store implementation maps its failures onto. They are typed
// so that errors.Is(err, types.ErrNotFound) also matches ErrNotExist.
var (
	// ErrNotExist is returned when a key or value does not exist, or a
	// handle refers to a key that has since been deleted.
	ErrNotExist = &types.Error{Kind: types.ErrKindNotFound, Msg: "registry key or value does not exist"}

	// ErrAccessDenied is returned when the store refuses the operation.
	ErrAccessDenied = &types.Error{Kind: types.ErrKindAccess, Msg: "registry access denied"}

	// ErrHasSubkeys is returned by DeleteKey for a key that still has children.
	ErrHasSubkeys = &types.Error{Kind: types.ErrKindAccess, Msg: "registry key has subkeys"}
)

// Store opens, creates and deletes keys. path is relative to hive, uses
// backslash separators and has already been normalized; "" names the hive
// root itself.
type Store interface {
	// OpenKey opens an existing key.
	OpenKey(hive types.Hive, path string, access Access) (Handle, error)

	// CreateKey opens a key, creating it and any missing ancestors.
	// existed reports whether the key was already present.
	CreateKey(hive types.Hive, path string, access Access) (h Handle, existed bool, err error)

	// DeleteKey removes a key that has no subkeys, along with its values.
	DeleteKey(hive types.Hive, path string) error
}

// Handle is an open key. Callers must Close it.
type Handle interface {
	// ReadSubKeyNames enumerates the direct subkeys.
	ReadSubKeyNames() ([]string, error)

	// ReadValueNames enumerates the key's value names; "" is the default value.
	ReadValueNames() ([]string, error)

	// GetValue reads one value. It returns ErrNotExist when absent.
	GetValue(name string) (*types.Value, error)

	// SetValue writes one value, replacing any existing one.
	SetValue(name string, v *types.Value) error

	// DeleteValue removes one value. It returns ErrNotExist when absent.
	DeleteValue(name string) error

	Close() error
}
