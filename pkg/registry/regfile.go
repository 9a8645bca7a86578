package registry

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/regkit/internal/regtext"
	"github.com/joshuapare/regkit/pkg/regpath"
	"github.com/joshuapare/regkit/pkg/types"
)

// Encodings accepted by ExportOptions and ImportOptions.
const (
	EncodingUTF8    = regtext.EncodingUTF8
	EncodingUTF16LE = regtext.EncodingUTF16LE
)

// ExportOptions controls .reg export behavior.
type ExportOptions struct {
	// Encoding specifies output encoding.
	// Supported values: "UTF-16LE" (what regedit writes), "UTF-8"
	// Default: "UTF-8"
	Encoding string

	// WithBOM includes byte-order mark in output.
	// Always on for UTF-16LE.
	WithBOM bool
}

// ImportOptions controls .reg import behavior.
type ImportOptions struct {
	// Encoding is used when the file has no byte-order mark.
	// Default: UTF-8, or Windows-1252 for REGEDIT4 files.
	Encoding string
}

// Export writes the key at path and its subtree to w in .reg format.
// Section headers use long hive names, as regedit expects.
//
// Example:
//
//	f, _ := os.Create("vendor.reg")
//	defer f.Close()
//	err := c.Export(f, `HKCU:Software\Vendor`, &registry.ExportOptions{Encoding: registry.EncodingUTF16LE})
func (c *Client) Export(w io.Writer, path string, opts *ExportOptions) error {
	return c.ExportKeys(w, []string{path}, opts)
}

// ExportKeys is Export for several subtrees written into one file. A hive
// root exports the whole hive.
func (c *Client) ExportKeys(w io.Writer, paths []string, opts *ExportOptions) error {
	src := &exportSource{client: c, keys: make(map[string]regpath.Canonical)}
	roots := make([]string, 0, len(paths))
	for _, path := range paths {
		at, err := c.resolve(path)
		if err != nil {
			return c.fail("export", path, err)
		}
		root := at.In(types.LongNames)
		src.keys[root.Abs] = root
		roots = append(roots, root.Abs)
	}

	// Apply defaults
	if opts == nil {
		opts = &ExportOptions{}
	}
	withBOM := opts.WithBOM || strings.EqualFold(opts.Encoding, EncodingUTF16LE)

	out, err := regtext.ExportRegRoots(src, roots, regtext.ExportOptions{
		OutputEncoding: opts.Encoding,
		WithBOM:        withBOM,
	})
	if err != nil {
		return c.fail("export", strings.Join(roots, ", "), err)
	}
	if _, err := w.Write(out); err != nil {
		return c.fail("export", strings.Join(roots, ", "), fmt.Errorf("write .reg output: %w", err))
	}
	return nil
}

// exportSource feeds the .reg exporter from the store. It remembers the
// canonical form of every key handed out so that subkey names are never
// re-parsed; names such as "Windows NT" are valid in the store even though
// the path parser rejects spaces.
type exportSource struct {
	client *Client
	keys   map[string]regpath.Canonical
}

func (s *exportSource) Subkeys(path string) ([]string, error) {
	at, ok := s.keys[path]
	if !ok {
		return nil, types.Errorf(types.ErrKindInvalidPath, nil, "export: unknown key %s", path)
	}
	names, err := s.client.subkeyNames(at)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		child := at.Child(name)
		s.keys[child.Abs] = child
	}
	return names, nil
}

func (s *exportSource) Values(path string) (types.ValueMap, error) {
	at, ok := s.keys[path]
	if !ok {
		return nil, types.Errorf(types.ErrKindInvalidPath, nil, "export: unknown key %s", path)
	}
	return s.client.listValues(at)
}

// Import reads .reg text from r and applies it with Apply.
func (c *Client) Import(r io.Reader, opts *ImportOptions) ([]string, error) {
	if opts == nil {
		opts = &ImportOptions{}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, c.fail("import", "", fmt.Errorf("read .reg input: %w", err))
	}
	ops, err := regtext.ParseReg(data, regtext.ParseOptions{InputEncoding: opts.Encoding})
	if err != nil {
		return nil, c.fail("import", "", types.Errorf(types.ErrKindInvalidPath, err, "parse .reg input"))
	}
	return c.Apply(ops)
}

// Apply performs edit operations in order and returns the keys they
// touched, each once, in first-touched order. Deleting a key that does not
// exist succeeds, and creating a hive root is a no-op. Application stops at
// the first failure; earlier edits stay applied and the error is of kind
// types.ErrKindPartial if there were any.
func (c *Client) Apply(ops []types.EditOp) ([]string, error) {
	var (
		touched []string
		seen    = make(map[string]bool)
	)
	record := func(paths ...string) {
		for _, p := range paths {
			if k := strings.ToLower(p); !seen[k] {
				seen[k] = true
				touched = append(touched, p)
			}
		}
	}

	for i, op := range ops {
		var err error
		switch op := op.(type) {
		case types.OpCreateKey:
			var p string
			if p, err = c.CreateKey(op.Path); err == nil {
				record(p)
			} else if errors.Is(err, types.ErrHiveRoot) {
				err = nil
			}
		case types.OpDeleteKey:
			var paths []string
			paths, err = c.DeleteKey(op.Path)
			record(paths...)
			if isNotFound(err) && !errors.Is(err, types.ErrPartial) {
				err = nil
			}
		case types.OpSetValue:
			var p string
			if p, err = c.SaveValue(op.Path, op.Name, op.Value.Clone()); err == nil {
				record(p)
			}
		case types.OpDeleteValue:
			var p string
			if p, err = c.DeleteValue(op.Path, op.Name); err == nil {
				record(p)
			}
		default:
			err = types.Errorf(types.ErrKindUnsupported, nil, "unsupported edit %T", op)
		}

		if err != nil {
			if len(touched) == 0 {
				return nil, err
			}
			return touched, types.Errorf(types.ErrKindPartial, err, "apply: stopped at edit %d of %d", i+1, len(ops))
		}
	}
	return touched, nil
}
