package types

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindInvalidPath ErrKind = iota // malformed or unresolvable location, rejected before store access
	ErrKindNotFound                   // missing key/value
	ErrKindAccess                     // store refused an open/create/delete/read/write
	ErrKindPartial                    // multi-step walk completed only some of its steps
	ErrKindType                       // requested decode doesn't match value RegType
	ErrKindUnsupported                // valid request the backend cannot serve
	ErrKindState                      // invalid operation for current state (e.g., hive root)
	ErrKindLimit                      // write would exceed a registry limit
)

// String returns a short lowercase name for the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindInvalidPath:
		return "invalid path"
	case ErrKindNotFound:
		return "not found"
	case ErrKindAccess:
		return "access"
	case ErrKindPartial:
		return "partial"
	case ErrKindType:
		return "type"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindState:
		return "state"
	case ErrKindLimit:
		return "limit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrNotFound) matches every not-found error regardless of
// its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations. Compare with errors.Is.
var (
	// ErrInvalidPath indicates a location that failed to parse or validate.
	ErrInvalidPath = &Error{Kind: ErrKindInvalidPath, Msg: "invalid registry path"}
	// ErrNotFound indicates a missing key or value.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrAccess indicates the store refused the operation.
	ErrAccess = &Error{Kind: ErrKindAccess, Msg: "registry access failed"}
	// ErrPartial indicates a walk stopped after completing only some steps.
	ErrPartial = &Error{Kind: ErrKindPartial, Msg: "operation partially completed"}
	// ErrTypeMismatch indicates the requested decode doesn't match the value type.
	ErrTypeMismatch = &Error{Kind: ErrKindType, Msg: "registry value has different type"}
	// ErrUnsupported indicates a recognized but unsupported request.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported"}
	// ErrHiveRoot indicates an operation that is not allowed on a bare hive root.
	ErrHiveRoot = &Error{Kind: ErrKindState, Msg: "operation not allowed on hive root"}
	// ErrLimit indicates a write that would exceed a registry limit.
	ErrLimit = &Error{Kind: ErrKindLimit, Msg: "registry limit exceeded"}
)

// Errorf builds a typed error of the given kind wrapping cause (which may be nil).
func Errorf(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Value types
// -----------------------------------------------------------------------------

// RegType enumerates Windows registry value types.
// (The numbers align with Windows definitions.)
type RegType uint32

const (
	REG_NONE                       RegType = 0
	REG_SZ                         RegType = 1
	REG_EXPAND_SZ                  RegType = 2
	REG_BINARY                     RegType = 3
	REG_DWORD                      RegType = 4
	REG_DWORD_LE                   RegType = 4 // alias for clarity
	REG_DWORD_BE                   RegType = 5
	REG_LINK                       RegType = 6
	REG_MULTI_SZ                   RegType = 7
	REG_RESOURCE_LIST              RegType = 8
	REG_FULL_RESOURCE_DESCRIPTOR   RegType = 9
	REG_RESOURCE_REQUIREMENTS_LIST RegType = 10
	REG_QWORD                      RegType = 11
	REG_QWORD_LE                   RegType = 11 // alias for clarity
)

// String implements the Stringer interface for RegType
func (t RegType) String() string {
	switch t {
	case REG_NONE:
		return "REG_NONE"
	case REG_SZ:
		return "REG_SZ"
	case REG_EXPAND_SZ:
		return "REG_EXPAND_SZ"
	case REG_BINARY:
		return "REG_BINARY"
	case REG_DWORD:
		return "REG_DWORD"
	case REG_DWORD_BE:
		return "REG_DWORD_BE"
	case REG_LINK:
		return "REG_LINK"
	case REG_MULTI_SZ:
		return "REG_MULTI_SZ"
	case REG_RESOURCE_LIST:
		return "REG_RESOURCE_LIST"
	case REG_FULL_RESOURCE_DESCRIPTOR:
		return "REG_FULL_RESOURCE_DESCRIPTOR"
	case REG_RESOURCE_REQUIREMENTS_LIST:
		return "REG_RESOURCE_REQUIREMENTS_LIST"
	case REG_QWORD:
		return "REG_QWORD"
	default:
		// Signed, so corrupt high-bit types read as negative numbers.
		return fmt.Sprintf("UNKNOWN_TYPE_%d", int32(t))
	}
}

// IsString reports whether values of this type carry UTF-16LE text.
func (t RegType) IsString() bool {
	return t == REG_SZ || t == REG_EXPAND_SZ || t == REG_LINK || t == REG_MULTI_SZ
}

// ParseRegType accepts "REG_SZ", "sz", "dword", "expand_sz" and friends,
// case-insensitively.
func ParseRegType(s string) (RegType, error) {
	switch normalizeTypeName(s) {
	case "NONE":
		return REG_NONE, nil
	case "SZ", "STRING":
		return REG_SZ, nil
	case "EXPAND_SZ":
		return REG_EXPAND_SZ, nil
	case "BINARY", "HEX":
		return REG_BINARY, nil
	case "DWORD", "DWORD_LE", "DWORD_LITTLE_ENDIAN":
		return REG_DWORD, nil
	case "DWORD_BE", "DWORD_BIG_ENDIAN":
		return REG_DWORD_BE, nil
	case "LINK":
		return REG_LINK, nil
	case "MULTI_SZ":
		return REG_MULTI_SZ, nil
	case "RESOURCE_LIST":
		return REG_RESOURCE_LIST, nil
	case "FULL_RESOURCE_DESCRIPTOR":
		return REG_FULL_RESOURCE_DESCRIPTOR, nil
	case "RESOURCE_REQUIREMENTS_LIST":
		return REG_RESOURCE_REQUIREMENTS_LIST, nil
	case "QWORD", "QWORD_LE", "QWORD_LITTLE_ENDIAN":
		return REG_QWORD, nil
	default:
		return 0, Errorf(ErrKindUnsupported, nil, "unsupported value type %q", s)
	}
}

// -----------------------------------------------------------------------------
// Edit operations
// -----------------------------------------------------------------------------

// EditOp represents a high-level registry edit. Paths are absolute and may
// use either hive name form.
type EditOp interface{ isEdit() }

type OpSetValue struct {
	Path  string
	Name  string
	Value Value
}

func (OpSetValue) isEdit() {}

type OpDeleteValue struct {
	Path string
	Name string
}

func (OpDeleteValue) isEdit() {}

type OpCreateKey struct {
	Path string
}

func (OpCreateKey) isEdit() {}

// OpDeleteKey always removes the whole subtree; the store can only delete
// childless keys, so deletion is ordered deepest first.
type OpDeleteKey struct {
	Path string
}

func (OpDeleteKey) isEdit() {}
