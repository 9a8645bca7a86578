package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// DefaultValueName is the name of a key's unnamed "(Default)" value.
const DefaultValueName = ""

// Value is a typed registry datum. Its name lives in the enclosing ValueMap.
// Data holds the raw bytes exactly as the store returns them; strings are
// NUL-terminated UTF-16LE.
type Value struct {
	Type RegType
	Data []byte
}

// ValueMap maps value names to values. A nil entry marks a value that should
// be deleted on save, or that did not exist on load.
type ValueMap map[string]*Value

// Names returns the map's keys in sorted order.
func (m ValueMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone deep-copies the map and its values.
func (m ValueMap) Clone() ValueMap {
	if m == nil {
		return nil
	}
	out := make(ValueMap, len(m))
	for name, v := range m {
		out[name] = v.Clone()
	}
	return out
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeUTF16 encodes s as NUL-terminated UTF-16LE.
func EncodeUTF16(s string) []byte {
	// Invalid UTF-8 is replaced up front so the encoder cannot fail.
	b, _ := utf16le.NewEncoder().Bytes([]byte(strings.ToValidUTF8(s, "�")))
	return append(b, 0, 0)
}

// DecodeUTF16 decodes UTF-16LE data up to the first NUL code unit.
func DecodeUTF16(data []byte) string {
	if len(data)%2 == 1 {
		data = data[:len(data)-1]
	}
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			data = data[:i]
			break
		}
	}
	b, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		return ""
	}
	return string(b)
}

// StringValue builds a REG_SZ value.
func StringValue(s string) *Value {
	return &Value{Type: REG_SZ, Data: EncodeUTF16(s)}
}

// ExpandStringValue builds a REG_EXPAND_SZ value ("%SystemRoot%\...").
func ExpandStringValue(s string) *Value {
	return &Value{Type: REG_EXPAND_SZ, Data: EncodeUTF16(s)}
}

// LinkValue builds a REG_LINK value.
func LinkValue(target string) *Value {
	return &Value{Type: REG_LINK, Data: EncodeUTF16(target)}
}

// MultiStringValue builds a REG_MULTI_SZ value. Each element is
// NUL-terminated and the list ends with an extra NUL.
func MultiStringValue(items ...string) *Value {
	var buf bytes.Buffer
	for _, s := range items {
		buf.Write(EncodeUTF16(s))
	}
	buf.Write([]byte{0, 0})
	return &Value{Type: REG_MULTI_SZ, Data: buf.Bytes()}
}

// DWordValue builds a little-endian REG_DWORD value.
func DWordValue(n uint32) *Value {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, n)
	return &Value{Type: REG_DWORD, Data: data}
}

// DWordBEValue builds a REG_DWORD_BE value.
func DWordBEValue(n uint32) *Value {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, n)
	return &Value{Type: REG_DWORD_BE, Data: data}
}

// QWordValue builds a little-endian REG_QWORD value.
func QWordValue(n uint64) *Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, n)
	return &Value{Type: REG_QWORD, Data: data}
}

// BinaryValue builds a REG_BINARY value. data is copied.
func BinaryValue(data []byte) *Value {
	return &Value{Type: REG_BINARY, Data: bytes.Clone(data)}
}

// RawValue builds a value of any type from raw bytes. data is copied.
func RawValue(t RegType, data []byte) *Value {
	return &Value{Type: t, Data: bytes.Clone(data)}
}

// NoneValue builds a REG_NONE value with no data.
func NoneValue() *Value {
	return &Value{Type: REG_NONE}
}

// Clone returns a deep copy; nil stays nil.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	return &Value{Type: v.Type, Data: bytes.Clone(v.Data)}
}

// Bytes returns a copy of the raw data.
func (v *Value) Bytes() []byte {
	if v == nil {
		return nil
	}
	return bytes.Clone(v.Data)
}

// Equal compares type and data.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.Type == o.Type && bytes.Equal(v.Data, o.Data)
}

// Text decodes REG_SZ, REG_EXPAND_SZ and REG_LINK data.
func (v *Value) Text() (string, error) {
	switch v.Type {
	case REG_SZ, REG_EXPAND_SZ, REG_LINK:
		return DecodeUTF16(v.Data), nil
	default:
		return "", fmt.Errorf("%s as string: %w", v.Type, ErrTypeMismatch)
	}
}

// Strings decodes REG_MULTI_SZ data. The list ends at the first empty string.
func (v *Value) Strings() ([]string, error) {
	if v.Type != REG_MULTI_SZ {
		return nil, fmt.Errorf("%s as multi-string: %w", v.Type, ErrTypeMismatch)
	}
	data := v.Data
	if len(data)%2 == 1 {
		data = data[:len(data)-1]
	}
	var out []string
	start := 0
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] != 0 || data[i+1] != 0 {
			continue
		}
		if i == start {
			break
		}
		out = append(out, DecodeUTF16(data[start:i]))
		start = i + 2
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// Uint32 decodes REG_DWORD and REG_DWORD_BE data.
func (v *Value) Uint32() (uint32, error) {
	if (v.Type == REG_DWORD || v.Type == REG_DWORD_BE) && len(v.Data) != 4 {
		return 0, Errorf(ErrKindType, nil, "%s with %d bytes of data", v.Type, len(v.Data))
	}
	switch v.Type {
	case REG_DWORD:
		return binary.LittleEndian.Uint32(v.Data), nil
	case REG_DWORD_BE:
		return binary.BigEndian.Uint32(v.Data), nil
	default:
		return 0, fmt.Errorf("%s as dword: %w", v.Type, ErrTypeMismatch)
	}
}

// Uint64 decodes REG_QWORD data, widening DWORDs.
func (v *Value) Uint64() (uint64, error) {
	switch v.Type {
	case REG_QWORD:
		if len(v.Data) != 8 {
			return 0, Errorf(ErrKindType, nil, "%s with %d bytes of data", v.Type, len(v.Data))
		}
		return binary.LittleEndian.Uint64(v.Data), nil
	case REG_DWORD, REG_DWORD_BE:
		n, err := v.Uint32()
		return uint64(n), err
	default:
		return 0, fmt.Errorf("%s as qword: %w", v.Type, ErrTypeMismatch)
	}
}

// String renders the value for humans: strings quoted, integers in decimal
// and hex, everything else as hex bytes.
func (v *Value) String() string {
	if v == nil {
		return "<absent>"
	}
	switch v.Type {
	case REG_SZ, REG_EXPAND_SZ, REG_LINK:
		s, _ := v.Text()
		return strconv.Quote(s)
	case REG_MULTI_SZ:
		items, _ := v.Strings()
		quoted := make([]string, len(items))
		for i, s := range items {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case REG_DWORD, REG_DWORD_BE:
		if n, err := v.Uint32(); err == nil {
			return fmt.Sprintf("%d (0x%08x)", n, n)
		}
	case REG_QWORD:
		if n, err := v.Uint64(); err == nil {
			return fmt.Sprintf("%d (0x%016x)", n, n)
		}
	}
	return hex.EncodeToString(v.Data)
}

// ParseValue converts user text into a value of the named type. Integers
// accept any strconv base prefix; binary accepts hex with optional "0x",
// spaces, commas or colons; multi-strings split on sep.
func ParseValue(text, typeName, sep string) (*Value, error) {
	t, err := ParseRegType(typeName)
	if err != nil {
		return nil, err
	}
	switch t {
	case REG_SZ:
		return StringValue(text), nil
	case REG_EXPAND_SZ:
		return ExpandStringValue(text), nil
	case REG_LINK:
		return LinkValue(text), nil
	case REG_MULTI_SZ:
		if text == "" {
			return MultiStringValue(), nil
		}
		return MultiStringValue(strings.Split(text, sep)...), nil
	case REG_DWORD, REG_DWORD_BE:
		n, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return nil, Errorf(ErrKindType, err, "invalid DWORD value %q", text)
		}
		if t == REG_DWORD_BE {
			return DWordBEValue(uint32(n)), nil
		}
		return DWordValue(uint32(n)), nil
	case REG_QWORD:
		n, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return nil, Errorf(ErrKindType, err, "invalid QWORD value %q", text)
		}
		return QWordValue(n), nil
	case REG_NONE:
		if text == "" {
			return NoneValue(), nil
		}
	}
	data, err := parseHexString(text)
	if err != nil {
		return nil, Errorf(ErrKindType, err, "invalid %s value %q", t, text)
	}
	return &Value{Type: t, Data: data}, nil
}

// parseHexString parses a hex string (with or without 0x prefix, with or without separators)
func parseHexString(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.NewReplacer(" ", "", ",", "", ":", "").Replace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of characters")
	}
	return hex.DecodeString(s)
}

func normalizeTypeName(s string) string {
	return strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "REG_")
}
