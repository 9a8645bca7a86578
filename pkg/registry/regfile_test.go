package registry

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/types"
)

func TestExportImportRoundTrip(t *testing.T) {
	src, _ := newTestClient(t, nil)
	const root = `HKCU:Software\Vendor`
	mustSave(t, src, root, types.DefaultValueName, types.StringValue(`C:\Program Files\Vendor`))
	mustSave(t, src, root, "Count", types.DWordValue(42))
	mustSave(t, src, root, "Big", types.QWordValue(1<<40))
	mustSave(t, src, root, "Paths", types.MultiStringValue(`C:\a`, `D:\b`))
	mustSave(t, src, root, "Blob", types.BinaryValue(bytes.Repeat([]byte{0x5a}, 90)))
	mustSave(t, src, root+`\Sub`, "Home", types.ExpandStringValue(`%USERPROFILE%\x`))
	mustCreate(t, src, root+`\Sub\Deep`, root+`\Alpha`)

	for _, enc := range []string{EncodingUTF8, EncodingUTF16LE} {
		t.Run(enc, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, src.Export(&buf, root, &ExportOptions{Encoding: enc}))
			if enc == EncodingUTF16LE {
				assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xFF, 0xFE}), "UTF-16LE output carries a BOM")
			}

			dst, _ := newTestClient(t, nil)
			touched, err := dst.Import(&buf, nil)
			require.NoError(t, err)

			want, err := src.ListSubkeys(root, DepthUnbounded)
			require.NoError(t, err)
			got, err := dst.ListSubkeys(root, DepthUnbounded)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.ElementsMatch(t, append([]string{root}, want...), touched)

			for _, key := range append([]string{root}, want...) {
				wantValues, err := src.ListValues(key)
				require.NoError(t, err)
				gotValues, err := dst.ListValues(key)
				require.NoError(t, err)
				require.Equal(t, wantValues.Names(), gotValues.Names(), key)
				for name, v := range wantValues {
					assert.True(t, v.Equal(gotValues[name]), "%s %q: want %s, got %s", key, name, v, gotValues[name])
				}
			}
		})
	}
}

func TestExport_NamesWithSpaces(t *testing.T) {
	c, s := newTestClient(t, nil)
	h, _, err := s.CreateKey(types.HKLM, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, store.AccessReadWrite)
	require.NoError(t, err)
	require.NoError(t, h.SetValue("ProductName", types.StringValue("Windows")))
	require.NoError(t, h.Close())

	var buf bytes.Buffer
	require.NoError(t, c.Export(&buf, `HKLM:SOFTWARE\Microsoft`, nil))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Windows Registry Editor Version 5.00\r\n"))
	assert.Contains(t, out, `[HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows NT\CurrentVersion]`)
	assert.Contains(t, out, `"ProductName"="Windows"`)
}

func TestExport_Errors(t *testing.T) {
	c, _ := newTestClient(t, nil)
	var buf bytes.Buffer

	err := c.Export(&buf, `HKCU:missing`, nil)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	err = c.Export(&buf, `HKCU:bad path`, nil)
	assert.True(t, errors.Is(err, types.ErrInvalidPath))

	mustCreate(t, c, `HKCU:x`)
	err = c.Export(&buf, `HKCU:x`, &ExportOptions{Encoding: "EBCDIC"})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestImport(t *testing.T) {
	c, _ := newTestClient(t, nil)
	mustSave(t, c, `HKCU:old\child`, "x", types.DWordValue(1))
	mustSave(t, c, `HKCU:keep`, "drop", types.DWordValue(1))

	reg := strings.Join([]string{
		"Windows Registry Editor Version 5.00",
		"",
		`[-HKEY_CURRENT_USER\old]`,
		"",
		`[HKEY_CURRENT_USER\keep]`,
		`"drop"=-`,
		`"name"="value"`,
		"",
	}, "\r\n")

	touched, err := c.Import(strings.NewReader(reg), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`HKCU:old\child`, `HKCU:old`, `HKCU:keep`}, touched)

	_, err = c.ListValues(`HKCU:old`)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	values, err := c.ListValues(`HKCU:keep`)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, values.Names())

	_, err = c.Import(strings.NewReader("not a registry file"), nil)
	assert.True(t, errors.Is(err, types.ErrInvalidPath))
}

func TestApply(t *testing.T) {
	c, _ := newTestClient(t, nil)

	touched, err := c.Apply([]types.EditOp{
		types.OpCreateKey{Path: `HKCU:a\b`},
		types.OpSetValue{Path: `HKCU:a`, Name: "v", Value: *types.DWordValue(1)},
		types.OpSetValue{Path: `HKEY_CURRENT_USER\A`, Name: "w", Value: *types.StringValue("w")},
		types.OpDeleteKey{Path: `HKCU:missing`},
		types.OpCreateKey{Path: "HKCU:"},
		types.OpDeleteValue{Path: `HKCU:a`, Name: "nope"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`HKCU:a\b`, `HKCU:a`}, touched)

	values, err := c.ListValues(`HKCU:a`)
	require.NoError(t, err)
	assert.Equal(t, []string{"v", "w"}, values.Names())
}

func TestApply_StopsAtFailure(t *testing.T) {
	c, _ := newTestClient(t, nil)

	touched, err := c.Apply([]types.EditOp{
		types.OpCreateKey{Path: `HKCU:x`},
		types.OpSetValue{Path: `HKCU:bad key`, Name: "v", Value: *types.DWordValue(1)},
		types.OpCreateKey{Path: `HKCU:never`},
	})
	assert.Equal(t, []string{`HKCU:x`}, touched)
	assert.True(t, errors.Is(err, types.ErrPartial))
	assert.True(t, errors.Is(err, types.ErrInvalidPath))

	_, err = c.ListValues(`HKCU:never`)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	touched, err = c.Apply([]types.EditOp{types.OpDeleteValue{Path: "nowhere", Name: "v"}})
	assert.Nil(t, touched)
	assert.True(t, errors.Is(err, types.ErrInvalidPath))
	assert.False(t, errors.Is(err, types.ErrPartial))
}

func TestExportKeys_WholeHives(t *testing.T) {
	src, _ := newTestClient(t, nil)
	mustSave(t, src, "HKCU:", "RootValue", types.DWordValue(1))
	mustSave(t, src, `HKCU:Software\A`, "a", types.StringValue("a"))
	mustSave(t, src, `HKLM:SOFTWARE\B`, "b", types.StringValue("b"))

	var buf bytes.Buffer
	require.NoError(t, src.ExportKeys(&buf, []string{"HKCU:", `HKLM:SOFTWARE`}, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "Windows Registry Editor"))

	dst, _ := newTestClient(t, nil)
	_, err := dst.Import(&buf, nil)
	require.NoError(t, err)

	root, err := dst.LoadValue("HKCU:", "RootValue")
	require.NoError(t, err)
	assert.True(t, types.DWordValue(1).Equal(root))
	for path, name := range map[string]string{`HKCU:Software\A`: "a", `HKLM:SOFTWARE\B`: "b"} {
		v, err := dst.LoadValue(path, name)
		require.NoError(t, err, path)
		assert.True(t, types.StringValue(name).Equal(v))
	}
}
