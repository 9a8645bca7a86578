package regtext

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/regkit/pkg/types"
)

// ParseOptions controls .reg parsing.
type ParseOptions struct {
	// InputEncoding applies when the data has no byte order mark:
	// EncodingUTF8 (default), EncodingUTF16LE or EncodingWindows1252.
	// REGEDIT4 files without a mark are read as Windows-1252.
	InputEncoding string
}

// ParseReg converts .reg text into edit operations, in file order. Each
// section yields an OpCreateKey the first time it appears, [-path] yields
// an OpDeleteKey, "name"=- an OpDeleteValue and every other value line an
// OpSetValue. Paths are returned as written.
func ParseReg(data []byte, opts ParseOptions) ([]types.EditOp, error) {
	text, err := decodeInput(data, opts.InputEncoding)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, ScannerInitialBufferSize), ScannerMaxLineSize)

	seenHeader := false
	var ops []types.EditOp
	seenKeys := make(map[string]bool)
	var current string
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), CR)

		// Join continuation lines (hex data ending in a backslash)
		for continues(line) && scanner.Scan() {
			lineNo++
			line = strings.TrimSuffix(strings.TrimRight(line, " \t"), Backslash) +
				strings.TrimSpace(strings.TrimRight(scanner.Text(), CR))
		}

		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, CommentPrefix) {
			continue
		}
		if !seenHeader {
			if trim != RegFileHeader && trim != RegFileHeaderV4 {
				return nil, errors.New("regtext: missing header")
			}
			seenHeader = true
			continue
		}
		if strings.HasPrefix(trim, KeyOpenBracket) {
			if !strings.HasSuffix(trim, KeyCloseBracket) {
				return nil, fmt.Errorf("regtext: line %d: malformed section %q", lineNo, trim)
			}
			section := strings.TrimSuffix(strings.TrimPrefix(trim, KeyOpenBracket), KeyCloseBracket)
			if strings.HasPrefix(section, DeleteKeyPrefix) {
				path := strings.TrimSpace(section[1:])
				ops = append(ops, types.OpDeleteKey{Path: path})
				current = ""
				continue
			}
			current = strings.TrimSpace(section)
			if !seenKeys[strings.ToLower(current)] {
				ops = append(ops, types.OpCreateKey{Path: current})
				seenKeys[strings.ToLower(current)] = true
			}
			continue
		}
		if current == "" {
			return nil, fmt.Errorf("regtext: line %d: value without section: %q", lineNo, trim)
		}
		op, err := parseValueLine(current, trim)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !seenHeader {
		return nil, errors.New("regtext: missing header")
	}
	return ops, nil
}

// continues reports whether a value line carries on onto the next line.
func continues(line string) bool {
	trim := strings.TrimSpace(line)
	if strings.HasPrefix(trim, KeyOpenBracket) || strings.HasPrefix(trim, CommentPrefix) {
		return false
	}
	return strings.HasSuffix(trim, Backslash)
}

func parseValueLine(path, line string) (types.EditOp, error) {
	if strings.HasPrefix(line, DefaultValuePrefix) {
		return parseValue(path, types.DefaultValueName, line[len(DefaultValuePrefix):])
	}
	if !strings.HasPrefix(line, Quote) {
		return nil, fmt.Errorf("regtext: malformed value line %q", line)
	}
	end := findClosingQuote(line)
	if end < 0 {
		return nil, fmt.Errorf("regtext: unterminated value name in %q", line)
	}
	name := unescapeRegString(line[1:end])
	rest := strings.TrimLeft(line[end+1:], " \t")
	if !strings.HasPrefix(rest, ValueAssignment) {
		return nil, fmt.Errorf("regtext: missing '=' in %q", line)
	}
	return parseValue(path, name, rest[1:])
}

func parseValue(path, name, payload string) (types.EditOp, error) {
	payload = strings.TrimSpace(payload)
	if payload == DeleteValueToken {
		return types.OpDeleteValue{Path: path, Name: name}, nil
	}
	if strings.HasPrefix(payload, Quote) {
		end := findClosingQuote(payload)
		if end != len(payload)-1 {
			return nil, fmt.Errorf("regtext: unterminated string %q", payload)
		}
		value := unescapeRegString(payload[1:end])
		return types.OpSetValue{Path: path, Name: name, Value: *types.StringValue(value)}, nil
	}
	if strings.HasPrefix(payload, DWORDPrefix) {
		hexPart := payload[len(DWORDPrefix):]
		if len(hexPart) != DWORDHexLength {
			return nil, fmt.Errorf("regtext: invalid dword %q", payload)
		}
		n, err := strconv.ParseUint(hexPart, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("regtext: invalid dword %q: %w", payload, err)
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(n))
		return types.OpSetValue{Path: path, Name: name, Value: types.Value{Type: types.REG_DWORD, Data: buf}}, nil
	}
	if strings.HasPrefix(payload, HexPrefix) || strings.HasPrefix(payload, HexTypedPrefix) {
		typ, data, err := parseHexPayload(payload)
		if err != nil {
			return nil, err
		}
		return types.OpSetValue{Path: path, Name: name, Value: types.Value{Type: typ, Data: data}}, nil
	}
	return nil, fmt.Errorf("regtext: unsupported value %q", payload)
}

func parseHexPayload(payload string) (types.RegType, []byte, error) {
	typ := types.REG_BINARY

	// Check for typed hex values like hex(2), hex(7), hex(b)
	if strings.HasPrefix(payload, HexTypedPrefix) {
		t, err := parseHexValueType(payload)
		if err != nil {
			return 0, nil, err
		}
		typ = t
	}

	data, err := parseHexBytes(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("regtext: %w", err)
	}
	return typ, data, nil
}
