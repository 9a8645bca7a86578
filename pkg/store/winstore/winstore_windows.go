//go:build windows

package winstore

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/types"
)

var (
	advapi32          = windows.NewLazySystemDLL("advapi32.dll")
	procRegSetValueEx = advapi32.NewProc("RegSetValueExW")
)

var roots = map[types.Hive]registry.Key{
	types.HKLM: registry.LOCAL_MACHINE,
	types.HKCU: registry.CURRENT_USER,
	types.HKCR: registry.CLASSES_ROOT,
	types.HKU:  registry.USERS,
	types.HKPD: registry.PERFORMANCE_DATA,
	types.HKCC: registry.CURRENT_CONFIG,
	types.HKDD: registry.Key(windows.HKEY_DYN_DATA),
}

// Store is the live registry of the current machine.
type Store struct{}

var _ store.Store = Store{}

// New returns a Store backed by the native registry.
func New() Store { return Store{} }

// OpenKey opens an existing key.
func (Store) OpenKey(hive types.Hive, path string, access store.Access) (store.Handle, error) {
	root, ok := roots[hive]
	if !ok {
		return nil, store.ErrNotExist
	}
	k, err := registry.OpenKey(root, path, accessMask(access))
	if err != nil {
		return nil, mapErr(err)
	}
	return &handle{key: k}, nil
}

// CreateKey opens a key, creating it and missing ancestors.
func (Store) CreateKey(hive types.Hive, path string, access store.Access) (store.Handle, bool, error) {
	root, ok := roots[hive]
	if !ok {
		return nil, false, store.ErrNotExist
	}
	k, existed, err := registry.CreateKey(root, path, accessMask(access))
	if err != nil {
		return nil, false, mapErr(err)
	}
	return &handle{key: k}, existed, nil
}

// DeleteKey removes a childless key. The registry reports a key with
// subkeys as access denied; that case is told apart and returned as
// store.ErrHasSubkeys.
func (s Store) DeleteKey(hive types.Hive, path string) error {
	root, ok := roots[hive]
	if !ok {
		return store.ErrNotExist
	}
	if path == "" {
		return store.ErrAccessDenied
	}
	err := registry.DeleteKey(root, path)
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ERROR_ACCESS_DENIED) && s.hasSubkeys(root, path) {
		return store.ErrHasSubkeys
	}
	return mapErr(err)
}

func (Store) hasSubkeys(root registry.Key, path string) bool {
	k, err := registry.OpenKey(root, path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()
	info, err := k.Stat()
	if err != nil {
		return false
	}
	return info.SubKeyCount > 0
}

type handle struct {
	key registry.Key
}

func (h *handle) ReadSubKeyNames() ([]string, error) {
	names, err := h.key.ReadSubKeyNames(-1)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, mapErr(err)
	}
	return names, nil
}

func (h *handle) ReadValueNames() ([]string, error) {
	names, err := h.key.ReadValueNames(-1)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, mapErr(err)
	}
	return names, nil
}

func (h *handle) GetValue(name string) (*types.Value, error) {
	buf := make([]byte, 64)
	for {
		n, typ, err := h.key.GetValue(name, buf)
		switch {
		case err == nil:
			return types.RawValue(types.RegType(typ), buf[:n]), nil
		case errors.Is(err, registry.ErrShortBuffer) && n > len(buf):
			buf = make([]byte, n)
		default:
			return nil, mapErr(err)
		}
	}
}

func (h *handle) SetValue(name string, v *types.Value) error {
	if v == nil {
		return types.Errorf(types.ErrKindType, nil, "nil value for %q", name)
	}
	var err error
	switch v.Type {
	case types.REG_DWORD:
		var n uint32
		if n, err = v.Uint32(); err == nil {
			err = h.key.SetDWordValue(name, n)
		}
	case types.REG_QWORD:
		var n uint64
		if n, err = v.Uint64(); err == nil {
			err = h.key.SetQWordValue(name, n)
		}
	case types.REG_BINARY:
		err = h.key.SetBinaryValue(name, v.Data)
	default:
		err = h.setRaw(name, uint32(v.Type), v.Data)
	}
	return mapErr(err)
}

// setRaw writes data untouched; registry.Key only exposes setters for the
// common types and re-encodes strings.
func (h *handle) setRaw(name string, typ uint32, data []byte) error {
	p, err := syscall.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	var ptr *byte
	if len(data) > 0 {
		ptr = &data[0]
	}
	r, _, _ := procRegSetValueEx.Call(
		uintptr(h.key),
		uintptr(unsafe.Pointer(p)),
		0,
		uintptr(typ),
		uintptr(unsafe.Pointer(ptr)),
		uintptr(len(data)),
	)
	if r != 0 {
		return syscall.Errno(r)
	}
	return nil
}

func (h *handle) DeleteValue(name string) error {
	return mapErr(h.key.DeleteValue(name))
}

func (h *handle) Close() error {
	return h.key.Close()
}

func accessMask(a store.Access) uint32 {
	var mask uint32
	if a&store.AccessRead != 0 {
		mask |= registry.READ
	}
	if a&store.AccessWrite != 0 {
		mask |= registry.WRITE
	}
	return mask
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, registry.ErrNotExist):
		return store.ErrNotExist
	case errors.Is(err, syscall.ERROR_ACCESS_DENIED):
		return store.ErrAccessDenied
	default:
		return fmt.Errorf("registry: %w", err)
	}
}
