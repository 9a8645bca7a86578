package regtext

// Headers.
const (
	RegFileHeader   = "Windows Registry Editor Version 5.00"
	RegFileHeaderV4 = "REGEDIT4" // ANSI format, read as Windows-1252
)

// Section and value syntax.
const (
	KeyOpenBracket     = "["
	KeyCloseBracket    = "]"
	DeleteKeyPrefix    = "-" // [-HKEY_CURRENT_USER\x] removes the subtree
	ValueAssignment    = "="
	DefaultValuePrefix = "@="
	DeleteValueToken   = "-" // "name"=- removes the value
	CommentPrefix      = ";"

	Quote            = "\""
	Backslash        = "\\" // path separator, escape and line continuation
	EscapedQuote     = "\\\""
	EscapedBackslash = "\\\\"

	CRLF = "\r\n"
	CR   = "\r"
)

// Value payloads.
const (
	DWORDPrefix    = "dword:"
	DWORDHexFormat = "%08x"
	DWORDHexLength = 8

	HexPrefix        = "hex:"
	HexTypedPrefix   = "hex("
	HexTypeFormat    = "hex(%x):" // type number in hex: hex(2):, hex(b):
	HexByteFormat    = "%02x"
	HexByteSeparator = ","

	// Hex data wraps after this column onto indented continuation lines,
	// as regedit writes it.
	HexLineWidth          = 76
	HexContinuationIndent = "  "
)

// Encoding names accepted in options. Matching is case-insensitive.
const (
	EncodingUTF8        = "UTF-8"
	EncodingUTF16LE     = "UTF-16LE"
	EncodingWindows1252 = "WINDOWS-1252"
)

// Scanner limits.
const (
	ScannerInitialBufferSize = 64 * 1024
	ScannerMaxLineSize       = 1024 * 1024
)

var (
	UTF16LEBOM = []byte{0xFF, 0xFE}
	UTF8BOM    = []byte{0xEF, 0xBB, 0xBF}
)
