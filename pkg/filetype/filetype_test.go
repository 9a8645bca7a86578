package filetype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkit/pkg/registry"
	"github.com/joshuapare/regkit/pkg/store/memstore"
	"github.com/joshuapare/regkit/pkg/types"
)

const choiceTxt = `HKCU:SOFTWARE\Microsoft\Windows\CurrentVersion\Explorer\FileExts\.txt\UserChoice`

func newTestAssociations(t *testing.T) (*Associations, *registry.Client) {
	t.Helper()
	c := registry.New(memstore.New(), nil)
	return New(c), c
}

// seedTxt registers .txt in all three layers.
func seedTxt(t *testing.T, c *registry.Client) {
	t.Helper()
	seed := []struct{ path, name, value string }{
		{`HKLM:SOFTWARE\Classes\.txt`, "", "txtfile"},
		{`HKLM:SOFTWARE\Classes\txtfile\DefaultIcon`, "", `%SystemRoot%\system32\imageres.dll,-102`},
		{`HKLM:SOFTWARE\Classes\txtfile\shell\open\command`, "", `notepad.exe "%1"`},
		{`HKLM:SOFTWARE\Classes\txtfile\shell\print\command`, "", `notepad.exe /p "%1"`},
		{`HKCU:Software\Classes\.txt`, "", "MyEditor.txt"},
		{`HKCU:Software\Classes\MyEditor.txt\shell\open\command`, "", `myeditor.exe "%1"`},
		{choiceTxt, "ProgId", "Code.txt"},
		{`HKCU:Software\Classes\Code.txt\DefaultIcon`, "", `code.ico`},
		{`HKCU:Software\Classes\Code.txt\shell\edit\command`, "", `code.exe "%1"`},
	}
	for _, s := range seed {
		_, err := c.SaveValue(s.path, s.name, types.StringValue(s.value))
		require.NoError(t, err, s.path)
	}
}

func TestLookup(t *testing.T) {
	a, c := newTestAssociations(t)
	seedTxt(t, c)

	tests := []struct {
		priority Priority
		want     Association
	}{
		{SystemDefault, Association{
			Ext: ".txt", Priority: SystemDefault, ProgID: "txtfile",
			Icon:  `%SystemRoot%\system32\imageres.dll,-102`,
			Verbs: map[string]string{"open": `notepad.exe "%1"`, "print": `notepad.exe /p "%1"`},
		}},
		{UserDefault, Association{
			Ext: ".txt", Priority: UserDefault, ProgID: "MyEditor.txt",
			Verbs: map[string]string{"open": `myeditor.exe "%1"`},
		}},
		{UserChoice, Association{
			Ext: ".txt", Priority: UserChoice, ProgID: "Code.txt", Icon: "code.ico",
			Verbs: map[string]string{"edit": `code.exe "%1"`},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.priority.String(), func(t *testing.T) {
			got, err := a.Lookup(".txt", tt.priority)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestLookup_ExtensionKeyOverridesClass(t *testing.T) {
	a, c := newTestAssociations(t)
	seedTxt(t, c)
	_, err := c.SaveValue(`HKLM:SOFTWARE\Classes\.txt\shell\open\command`, "", types.StringValue("wordpad.exe"))
	require.NoError(t, err)

	got, err := a.Lookup(".txt", SystemDefault)
	require.NoError(t, err)
	assert.Equal(t, "wordpad.exe", got.Verbs["open"])
	assert.Equal(t, `notepad.exe /p "%1"`, got.Verbs["print"])
}

func TestLayersAndResolve(t *testing.T) {
	a, c := newTestAssociations(t)
	seedTxt(t, c)

	layers, err := a.Layers(".txt")
	require.NoError(t, err)
	require.Len(t, layers, 3)
	assert.Equal(t, UserChoice, layers[0].Priority)
	assert.Equal(t, UserDefault, layers[1].Priority)
	assert.Equal(t, SystemDefault, layers[2].Priority)

	got, err := a.Resolve(".txt")
	require.NoError(t, err)
	assert.Equal(t, &Association{
		Ext:      ".txt",
		Priority: UserChoice,
		ProgID:   "Code.txt",
		Icon:     "code.ico",
		Verbs: map[string]string{
			"open":  `myeditor.exe "%1"`,
			"print": `notepad.exe /p "%1"`,
			"edit":  `code.exe "%1"`,
		},
	}, got)

	// Without a user choice the user default wins, and the icon falls
	// through to the system layer.
	_, err = a.Delete(".txt", UserChoice)
	require.NoError(t, err)
	got, err = a.Resolve(".txt")
	require.NoError(t, err)
	assert.Equal(t, UserDefault, got.Priority)
	assert.Equal(t, "MyEditor.txt", got.ProgID)
	assert.Equal(t, `%SystemRoot%\system32\imageres.dll,-102`, got.Icon)
}

func TestNotFound(t *testing.T) {
	a, _ := newTestAssociations(t)

	_, err := a.Lookup(".none", UserChoice)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	layers, err := a.Layers(".none")
	require.NoError(t, err)
	assert.Empty(t, layers)

	_, err = a.Resolve(".none")
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestValidateExt(t *testing.T) {
	require.NoError(t, ValidateExt(".txt"))
	require.NoError(t, ValidateExt(".tar.gz"))

	for _, ext := range []string{"", ".", "txt", `.a\b`, ".a/b", ".a b", ".a:b", ".."} {
		t.Run(ext, func(t *testing.T) {
			assert.True(t, errors.Is(ValidateExt(ext), types.ErrInvalidPath))
		})
	}

	a, _ := newTestAssociations(t)
	_, err := a.Lookup("txt", SystemDefault)
	assert.True(t, errors.Is(err, types.ErrInvalidPath))
	_, err = a.Delete(".a b", UserDefault)
	assert.True(t, errors.Is(err, types.ErrInvalidPath))
}

func TestSave(t *testing.T) {
	a, _ := newTestAssociations(t)

	assoc := &Association{
		Ext:      ".md",
		Priority: UserDefault,
		ProgID:   "Markdown.File",
		Icon:     "md.ico",
		Verbs:    map[string]string{"open": "mdview.exe", "edit": "mdedit.exe"},
	}
	written, err := a.Save(assoc)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`HKCU:Software\Classes\.md`,
		`HKCU:Software\Classes\.md\DefaultIcon`,
		`HKCU:Software\Classes\.md\shell\edit\command`,
		`HKCU:Software\Classes\.md\shell\open\command`,
	}, written)

	got, err := a.Lookup(".md", UserDefault)
	require.NoError(t, err)
	assert.Equal(t, assoc, got)

	written, err = a.Save(&Association{Ext: ".md", Priority: UserChoice, ProgID: "Other.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{`HKCU:SOFTWARE\Microsoft\Windows\CurrentVersion\Explorer\FileExts\.md\UserChoice`}, written)

	resolved, err := a.Resolve(".md")
	require.NoError(t, err)
	assert.Equal(t, "Other.md", resolved.ProgID)
	assert.Equal(t, "md.ico", resolved.Icon)
}

func TestSave_BadVerbs(t *testing.T) {
	a, _ := newTestAssociations(t)

	written, err := a.Save(&Association{
		Ext:      ".md",
		Priority: UserDefault,
		Verbs:    map[string]string{"bad verb": "x.exe", "odd:verb": "y.exe", "open": "mdview.exe"},
	})
	assert.Equal(t, []string{`HKCU:Software\Classes\.md`, `HKCU:Software\Classes\.md\shell\open\command`}, written)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidPath), "got %v", err)
	assert.Contains(t, err.Error(), "bad verb")
	assert.Contains(t, err.Error(), "odd:verb")
}

func TestSave_Rejected(t *testing.T) {
	a, _ := newTestAssociations(t)

	tests := []struct {
		name  string
		assoc *Association
		want  *types.Error
	}{
		{"nil", nil, types.ErrInvalidPath},
		{"bad ext", &Association{Ext: "md", Priority: UserDefault}, types.ErrInvalidPath},
		{"choice with icon", &Association{Ext: ".md", Priority: UserChoice, ProgID: "x", Icon: "i"}, types.ErrUnsupported},
		{"choice with verbs", &Association{Ext: ".md", Priority: UserChoice, ProgID: "x", Verbs: map[string]string{"open": "x"}}, types.ErrUnsupported},
		{"choice without progid", &Association{Ext: ".md", Priority: UserChoice}, types.ErrInvalidPath},
		{"unknown layer", &Association{Ext: ".md", Priority: Priority(7)}, types.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			written, err := a.Save(tt.assoc)
			assert.Nil(t, written)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestDelete(t *testing.T) {
	a, c := newTestAssociations(t)
	seedTxt(t, c)

	deleted, err := a.Delete(".txt", UserChoice)
	require.NoError(t, err)
	assert.Equal(t, []string{choiceTxt}, deleted)
	_, err = c.ListSubkeys(`HKCU:SOFTWARE\Microsoft\Windows\CurrentVersion\Explorer\FileExts\.txt`, registry.DepthUnbounded)
	require.NoError(t, err, "only the UserChoice key is removed")

	deleted, err = a.Delete(".txt", SystemDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{`HKLM:SOFTWARE\Classes\.txt`}, deleted)

	_, err = a.Lookup(".txt", SystemDefault)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	// The ProgID class key is untouched.
	_, err = c.LoadValue(`HKLM:SOFTWARE\Classes\txtfile\shell\open\command`, "")
	require.NoError(t, err)

	_, err = a.Delete(".txt", SystemDefault)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestParsePriority(t *testing.T) {
	for _, p := range Priorities() {
		got, err := ParsePriority(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParsePriority("CHOICE")
	require.NoError(t, err)
	assert.Equal(t, UserChoice, got)

	_, err = ParsePriority("global")
	assert.True(t, errors.Is(err, types.ErrUnsupported))
}
