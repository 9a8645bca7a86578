package regtext

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/joshuapare/regkit/pkg/types"
)

// Source is the read side of an export. Paths are the absolute paths
// written into section headers; Subkeys returns child names, which the
// exporter appends with a backslash.
type Source interface {
	Subkeys(path string) ([]string, error)
	Values(path string) (types.ValueMap, error)
}

// ExportOptions controls .reg export.
type ExportOptions struct {
	// OutputEncoding is EncodingUTF8 (default) or EncodingUTF16LE.
	OutputEncoding string

	// WithBOM prefixes the output with a byte order mark.
	WithBOM bool
}

// ExportRegRoots walks the subtree at each root and emits textual .reg
// output under a single header: values sorted by name, subkeys
// depth-first in case-insensitive order.
func ExportRegRoots(src Source, roots []string, opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(RegFileHeader + CRLF + CRLF)
	for _, root := range roots {
		if err := exportKey(&buf, src, root); err != nil {
			return nil, err
		}
	}
	return encodeOutput(buf.String(), opts.OutputEncoding, opts.WithBOM)
}

func exportKey(buf *bytes.Buffer, src Source, path string) error {
	buf.WriteString(KeyOpenBracket)
	buf.WriteString(path)
	buf.WriteString(KeyCloseBracket + CRLF)

	values, err := src.Values(path)
	if err != nil {
		return err
	}
	for _, name := range values.Names() {
		if v := values[name]; v != nil {
			emitValue(buf, name, v)
		}
	}
	buf.WriteString(CRLF)

	children, err := src.Subkeys(path)
	if err != nil {
		return err
	}
	children = append([]string(nil), children...)
	sort.Slice(children, func(i, j int) bool {
		return strings.ToLower(children[i]) < strings.ToLower(children[j])
	})
	for _, name := range children {
		if err := exportKey(buf, src, path+Backslash+name); err != nil {
			return err
		}
	}
	return nil
}

func emitValue(buf *bytes.Buffer, name string, v *types.Value) {
	start := buf.Len()
	if name == types.DefaultValueName {
		buf.WriteString(DefaultValuePrefix)
	} else {
		buf.WriteString(Quote)
		buf.WriteString(escapeString(name))
		buf.WriteString(Quote + ValueAssignment)
	}

	switch {
	case v.Type == types.REG_SZ && isPlainString(v.Data):
		s, _ := v.Text()
		buf.WriteString(Quote)
		buf.WriteString(escapeString(s))
		buf.WriteString(Quote)
	case v.Type == types.REG_DWORD && len(v.Data) == 4:
		n, _ := v.Uint32()
		buf.WriteString(DWORDPrefix)
		fmt.Fprintf(buf, DWORDHexFormat, n)
	case v.Type == types.REG_BINARY:
		buf.WriteString(HexPrefix)
		writeHex(buf, v.Data, buf.Len()-start)
	default:
		fmt.Fprintf(buf, HexTypeFormat, uint32(v.Type))
		writeHex(buf, v.Data, buf.Len()-start)
	}
	buf.WriteString(CRLF)
}

// isPlainString reports whether data is exactly what StringValue would
// produce and fits on one line, so the quoted form reproduces it byte for
// byte.
func isPlainString(data []byte) bool {
	s := types.DecodeUTF16(data)
	return !strings.ContainsAny(s, "\r\n") && bytes.Equal(types.EncodeUTF16(s), data)
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, Backslash, EscapedBackslash)
	s = strings.ReplaceAll(s, Quote, EscapedQuote)
	return s
}

// writeHex writes comma separated bytes, wrapping onto indented
// continuation lines once a line passes HexLineWidth. col is the width of
// the line written so far.
func writeHex(buf *bytes.Buffer, data []byte, col int) {
	for i, b := range data {
		fmt.Fprintf(buf, HexByteFormat, b)
		col += 2
		if i == len(data)-1 {
			break
		}
		buf.WriteString(HexByteSeparator)
		col++
		if col >= HexLineWidth {
			buf.WriteString(Backslash + CRLF + HexContinuationIndent)
			col = len(HexContinuationIndent)
		}
	}
}
