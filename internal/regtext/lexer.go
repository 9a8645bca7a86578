package regtext

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	errUnsupportedEncoding = errors.New("regtext: unsupported encoding")
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeInput converts .reg file bytes to UTF-8 text.
//
// A UTF-16LE or UTF-8 byte order mark wins over enc. Without one, a file
// starting with the REGEDIT4 header is read as Windows-1252, the ANSI code
// page regedit used for that format; anything else follows enc.
func decodeInput(data []byte, enc string) (string, error) {
	// Check for UTF-16LE BOM
	if bytes.HasPrefix(data, UTF16LEBOM) {
		return decodeUTF16LE(data[len(UTF16LEBOM):])
	}
	// Check for UTF-8 BOM - just skip it
	if bytes.HasPrefix(data, UTF8BOM) {
		return string(data[len(UTF8BOM):]), nil
	}
	if bytes.HasPrefix(data, []byte(RegFileHeaderV4)) && enc == "" {
		enc = EncodingWindows1252
	}
	switch strings.ToUpper(enc) {
	case "", EncodingUTF8:
		return string(data), nil
	case EncodingUTF16LE:
		return decodeUTF16LE(data)
	case EncodingWindows1252:
		return decodeWith(charmap.Windows1252, data)
	default:
		return "", errUnsupportedEncoding
	}
}

// decodeUTF16LE drops a dangling odd byte before decoding.
func decodeUTF16LE(data []byte) (string, error) {
	if len(data)%2 == 1 {
		data = data[:len(data)-1]
	}
	return decodeWith(utf16le, data)
}

func decodeWith(e encoding.Encoding, data []byte) (string, error) {
	out, _, err := transform.Bytes(e.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodeOutput converts UTF-8 .reg text to the requested encoding.
func encodeOutput(text string, enc string, withBOM bool) ([]byte, error) {
	switch strings.ToUpper(enc) {
	case "", EncodingUTF8:
		if withBOM {
			return append(append([]byte(nil), UTF8BOM...), text...), nil
		}
		return []byte(text), nil
	case EncodingUTF16LE:
		out, _, err := transform.Bytes(utf16le.NewEncoder(), []byte(text))
		if err != nil {
			return nil, err
		}
		if withBOM {
			out = append(append([]byte(nil), UTF16LEBOM...), out...)
		}
		return out, nil
	default:
		return nil, errUnsupportedEncoding
	}
}
