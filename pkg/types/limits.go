package types

import "unicode/utf8"

// ============================================================================
// Windows Registry Limits Constants
// ============================================================================
// These constants define the documented limits of the Windows Registry.
// Different Windows versions differ slightly; these are the common values.

const (
	// WindowsMaxKeyNameLen is the hard limit for a single key name
	// segment, in characters.
	WindowsMaxKeyNameLen = 255

	// WindowsMaxValueNameLen is the hard limit for value names, in characters.
	WindowsMaxValueNameLen = 16383

	// WindowsMaxValueNameLenSmall is a smaller limit for strict validation.
	WindowsMaxValueNameLenSmall = 255

	// WindowsMaxValues is the practical number of values per key.
	WindowsMaxValues = 16384

	// WindowsMaxValueSize1MB is the recommended maximum for a single value's data.
	WindowsMaxValueSize1MB = 1 << 20

	// WindowsMaxValueSize64KB is a conservative value size for strict validation.
	WindowsMaxValueSize64KB = 64 << 10

	// WindowsMaxTreeDepth is the documented nesting limit (512 levels).
	WindowsMaxTreeDepth = 512

	// WindowsMaxTreeDepthShallow is a conservative depth for strict validation.
	WindowsMaxTreeDepthShallow = 128

	// WindowsMaxSubkeysStrict bounds subkeys per key for strict validation.
	WindowsMaxSubkeysStrict = 512
)

// Limits defines the constraints an in-process store enforces so that data
// written there would also be accepted by a real registry. A zero field
// means "no limit".
type Limits struct {
	// MaxKeyNameLen is the maximum length of one key name segment in characters.
	MaxKeyNameLen int

	// MaxValueNameLen is the maximum length of a value name in characters.
	MaxValueNameLen int

	// MaxValueSize is the maximum size of a single value's data in bytes.
	MaxValueSize int

	// MaxValues is the maximum number of values a key can hold.
	MaxValues int

	// MaxSubkeys is the maximum number of direct subkeys a key can hold.
	MaxSubkeys int

	// MaxTreeDepth is the maximum number of segments in a hive-relative path.
	MaxTreeDepth int
}

// DefaultLimits returns the documented Windows registry limits.
func DefaultLimits() Limits {
	return Limits{
		MaxKeyNameLen:   WindowsMaxKeyNameLen,
		MaxValueNameLen: WindowsMaxValueNameLen,
		MaxValueSize:    WindowsMaxValueSize1MB,
		MaxValues:       WindowsMaxValues,
		MaxTreeDepth:    WindowsMaxTreeDepth,
	}
}

// RelaxedLimits only enforces the hard name-length limits.
func RelaxedLimits() Limits {
	return Limits{
		MaxKeyNameLen:   WindowsMaxKeyNameLen,
		MaxValueNameLen: WindowsMaxValueNameLen,
	}
}

// StrictLimits returns conservative limits for constrained environments.
func StrictLimits() Limits {
	return Limits{
		MaxKeyNameLen:   WindowsMaxKeyNameLen,
		MaxValueNameLen: WindowsMaxValueNameLenSmall,
		MaxValueSize:    WindowsMaxValueSize64KB,
		MaxValues:       WindowsMaxValues / 16,
		MaxSubkeys:      WindowsMaxSubkeysStrict,
		MaxTreeDepth:    WindowsMaxTreeDepthShallow,
	}
}

// CheckKeyName validates one key name segment.
func (l Limits) CheckKeyName(name string) error {
	if l.MaxKeyNameLen > 0 && utf8.RuneCountInString(name) > l.MaxKeyNameLen {
		return Errorf(ErrKindLimit, nil, "key name %q exceeds %d characters", name, l.MaxKeyNameLen)
	}
	return nil
}

// CheckDepth validates the number of segments in a hive-relative path.
func (l Limits) CheckDepth(depth int) error {
	if l.MaxTreeDepth > 0 && depth > l.MaxTreeDepth {
		return Errorf(ErrKindLimit, nil, "key depth %d exceeds %d", depth, l.MaxTreeDepth)
	}
	return nil
}

// CheckSubkeys validates the subkey count of a key after an insertion.
func (l Limits) CheckSubkeys(n int) error {
	if l.MaxSubkeys > 0 && n > l.MaxSubkeys {
		return Errorf(ErrKindLimit, nil, "subkey count %d exceeds %d", n, l.MaxSubkeys)
	}
	return nil
}

// CheckValue validates a value about to be written; count is the number of
// values the key will hold afterwards.
func (l Limits) CheckValue(name string, v *Value, count int) error {
	if l.MaxValueNameLen > 0 && utf8.RuneCountInString(name) > l.MaxValueNameLen {
		return Errorf(ErrKindLimit, nil, "value name exceeds %d characters", l.MaxValueNameLen)
	}
	if l.MaxValueSize > 0 && v != nil && len(v.Data) > l.MaxValueSize {
		return Errorf(ErrKindLimit, nil, "value %q is %d bytes, limit %d", name, len(v.Data), l.MaxValueSize)
	}
	if l.MaxValues > 0 && count > l.MaxValues {
		return Errorf(ErrKindLimit, nil, "value count %d exceeds %d", count, l.MaxValues)
	}
	return nil
}
