package registry

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/types"
)

func seedApp(t *testing.T, c *Client) {
	t.Helper()
	mustSave(t, c, `HKCU:app`, "v1", types.StringValue("one"))
	mustSave(t, c, `HKCU:app\x`, "xv", types.DWordValue(2))
	mustCreate(t, c, `HKCU:app\x\y`)
}

func TestKeyPopulate(t *testing.T) {
	c, _ := newTestClient(t, nil)
	seedApp(t, c)

	k := c.NewKey(AbsolutePath(`HKCU:app`))
	require.NoError(t, k.Populate(DepthUnbounded))

	v, ok := k.GetValue("v1")
	require.True(t, ok)
	assert.True(t, types.StringValue("one").Equal(v))
	assert.Equal(t, []string{"x", `x\y`}, k.MemberNames())

	x, ok := k.GetMember("x")
	require.True(t, ok)
	assert.Equal(t, `HKCU:app\x`, x.AbsPath())
	assert.True(t, types.DWordValue(2).Equal(x.Values()["xv"]))
	assert.Empty(t, x.MemberNames())
}

func TestNewKey_Options(t *testing.T) {
	c, _ := newTestClient(t, nil)
	seedApp(t, c)
	loc := AbsolutePath(`HKCU:app`)

	k := c.NewKey(loc,
		WithValues(types.ValueMap{"a": types.DWordValue(1)}),
		WithMembers(c.NewKey(AbsolutePath(`HKCU:app\x`)), c.NewKey(AbsolutePath(`HKLM:z`))),
	)
	assert.Equal(t, []string{"a"}, k.Values().Names())
	assert.Equal(t, []string{"x", `HKLM:z`}, k.MemberNames())

	tests := []struct {
		name string
		opts []KeyOption
		want string
	}{
		{"store wins when populated last", []KeyOption{WithValues(types.ValueMap{"v1": types.StringValue("mine")}), WithPopulate(DepthChildren)}, "one"},
		{"values win when given last", []KeyOption{WithPopulate(DepthChildren), WithValues(types.ValueMap{"v1": types.StringValue("mine")})}, "mine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := c.NewKey(loc, tt.opts...)
			v, ok := k.GetValue("v1")
			require.True(t, ok)
			assert.True(t, types.StringValue(tt.want).Equal(v), "got %v", v)
			assert.Equal(t, []string{"x"}, k.MemberNames())
		})
	}
}

func TestNewKey_PopulateFailure(t *testing.T) {
	var buf bytes.Buffer
	c, _ := newTestClient(t, &Options{
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		Debug:  DebugLog,
	})

	k := c.NewKey(AbsolutePath(`HKCU:nope`), WithPopulate(DepthUnbounded))
	require.NotNil(t, k)
	assert.Empty(t, k.MemberNames())
	assert.Contains(t, buf.String(), "op=populate")

	k, err := c.OpenKey(AbsolutePath(`HKCU:nope`), DepthUnbounded)
	require.NotNil(t, k)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestOpenKey(t *testing.T) {
	c, _ := newTestClient(t, nil)
	seedApp(t, c)

	k, err := c.OpenKey(AbsolutePath(`HKCU:app`), DepthUnbounded, WithValues(types.ValueMap{"extra": nil}))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", `x\y`}, k.MemberNames())
	assert.Equal(t, []string{"extra", "v1"}, k.Values().Names())
}

func TestKeyPopulate_Depth(t *testing.T) {
	c, _ := newTestClient(t, nil)
	seedApp(t, c)

	k := c.NewKey(AbsolutePath(`HKCU:app`))
	require.NoError(t, k.Populate(DepthValuesOnly))
	assert.Empty(t, k.MemberNames())
	assert.Len(t, k.Values(), 1)

	require.NoError(t, k.Populate(DepthChildren))
	assert.Equal(t, []string{"x"}, k.MemberNames())
}

func TestKeyPopulate_ExistingMember(t *testing.T) {
	c, _ := newTestClient(t, nil)
	seedApp(t, c)

	k := c.NewKey(AbsolutePath(`HKCU:app`))
	custom := c.NewKey(RelativeToKey{Key: k, Path: "X"})
	custom.AddValue("keep", types.StringValue("k"))
	k.AddNamedMember("custom", custom)

	require.NoError(t, k.Populate(DepthChildren))

	assert.Equal(t, []string{"custom"}, k.MemberNames())
	got, ok := k.GetMember("custom")
	require.True(t, ok)
	assert.Same(t, custom, got)
	assert.Equal(t, []string{"keep", "xv"}, custom.Values().Names())
}

func TestKeyPopulate_Failures(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		c, _ := newTestClient(t, nil)
		err := c.NewKey(AbsolutePath(`HKCU:nope`)).Populate(DepthUnbounded)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})

	t.Run("unparseable subkey", func(t *testing.T) {
		c, s := newTestClient(t, nil)
		seedApp(t, c)
		h, _, err := s.CreateKey(types.HKCU, `app\Has Space`, store.AccessWrite)
		require.NoError(t, err)
		require.NoError(t, h.Close())

		k := c.NewKey(AbsolutePath(`HKCU:app`))
		err = k.Populate(DepthChildren)
		assert.True(t, errors.Is(err, types.ErrInvalidPath))
		assert.Equal(t, []string{"x"}, k.MemberNames())

		strict := New(s, &Options{Debug: DebugStrict})
		k = strict.NewKey(AbsolutePath(`HKCU:app`))
		err = k.Populate(DepthChildren)
		assert.True(t, errors.Is(err, types.ErrInvalidPath))
	})
}

func TestKeyLoad(t *testing.T) {
	c, _ := newTestClient(t, nil)
	mustSave(t, c, `HKCU:ld`, "a", types.DWordValue(1))
	mustSave(t, c, `HKCU:ld`, "b", types.DWordValue(2))

	k := c.NewKey(AbsolutePath(`HKCU:ld`))
	k.AddValue("a", types.DWordValue(100))
	k.AddValue("missing", types.DWordValue(5))

	require.NoError(t, k.Load(false))
	assert.Equal(t, []string{"a", "missing"}, k.Values().Names())
	assert.True(t, types.DWordValue(1).Equal(k.Values()["a"]))
	v, ok := k.GetValue("missing")
	assert.True(t, ok)
	assert.Nil(t, v)

	gone := c.NewKey(AbsolutePath(`HKCU:gone`))
	gone.AddValue("z", types.DWordValue(9))
	k.AddMember(gone)

	err := k.Load(true)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	assert.True(t, types.DWordValue(9).Equal(gone.Values()["z"]), "unopenable key keeps its values")
}

func TestKeySave(t *testing.T) {
	c, _ := newTestClient(t, nil)

	root := c.NewKey(AbsolutePath(`HKCU:new`))
	root.AddValue("v", types.DWordValue(1))
	child := c.NewKey(RelativeToKey{Key: root, Path: "child"})
	child.AddValue("w", types.StringValue("w"))
	assert.Equal(t, "child", root.AddMember(child))

	modified, err := root.Save(true)
	require.NoError(t, err)
	assert.Equal(t, []string{`HKCU:new`, `HKCU:new\child`}, modified)

	w, err := c.LoadValue(`HKCU:new\child`, "w")
	require.NoError(t, err)
	text, err := w.Text()
	require.NoError(t, err)
	assert.Equal(t, "w", text)

	root.AddValue("v", nil)
	modified, err = root.Save(false)
	require.NoError(t, err)
	assert.Equal(t, []string{`HKCU:new`}, modified)
	_, err = c.LoadValue(`HKCU:new`, "v")
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestKeySave_SkipsAndStrict(t *testing.T) {
	build := func(c *Client) *Key {
		root := c.NewKey(AbsolutePath(`HKCU:s`))
		bad := c.NewKey(AbsolutePath(`HKCU:bad key`))
		good := c.NewKey(AbsolutePath(`HKCU:good`))
		good.AddValue("g", types.DWordValue(1))
		root.AddNamedMember("bad", bad)
		root.AddNamedMember("good", good)
		return root
	}

	t.Run("soft", func(t *testing.T) {
		c, _ := newTestClient(t, nil)
		modified, err := build(c).Save(true)
		assert.Equal(t, []string{`HKCU:s`, `HKCU:good`}, modified)
		assert.True(t, errors.Is(err, types.ErrInvalidPath))
	})

	t.Run("strict", func(t *testing.T) {
		c, _ := newTestClient(t, &Options{Debug: DebugStrict})
		modified, err := build(c).Save(true)
		assert.Equal(t, []string{`HKCU:s`}, modified)
		assert.True(t, errors.Is(err, types.ErrInvalidPath))

		_, err = c.ListValues(`HKCU:good`)
		assert.True(t, errors.Is(err, types.ErrNotFound), "walk stopped before good")
	})
}

func TestKeyDelete(t *testing.T) {
	c, _ := newTestClient(t, nil)
	mustCreate(t, c, `HKCU:d\a`, `HKCU:other`)

	root := c.NewKey(AbsolutePath(`HKCU:d`))
	root.AddMember(c.NewKey(RelativeToKey{Key: root, Path: "a"}))
	root.AddMember(c.NewKey(AbsolutePath(`HKCU:other`)))

	deleted, err := root.Delete(true)
	require.NoError(t, err, "a member already removed with its owner is not a failure")
	assert.Equal(t, []string{`HKCU:d\a`, `HKCU:d`, `HKCU:other`}, deleted)

	deleted, err = root.Delete(false)
	assert.Empty(t, deleted)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestKeyDelete_MembersLogNothing(t *testing.T) {
	var buf bytes.Buffer
	c, _ := newTestClient(t, &Options{
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		Debug:  DebugLog,
	})
	mustCreate(t, c, `HKCU:d\a\b`)

	root := c.NewKey(AbsolutePath(`HKCU:d`))
	a := c.NewKey(RelativeToKey{Key: root, Path: "a"})
	a.AddMember(c.NewKey(RelativeToKey{Key: a, Path: "b"}))
	root.AddMember(a)

	deleted, err := root.Delete(true)
	require.NoError(t, err)
	assert.Equal(t, []string{`HKCU:d\a\b`, `HKCU:d\a`, `HKCU:d`}, deleted)
	assert.Empty(t, buf.String())

	// The key Delete is called on still reports its own absence.
	_, err = a.Delete(true)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Contains(t, buf.String(), "op=delete")
}

func TestKeyMembers(t *testing.T) {
	c, _ := newTestClient(t, nil)
	root := c.NewKey(AbsolutePath(`HKCU:r`))

	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{"descendant", AbsolutePath(`HKCU:r\x\y`), `x\y`},
		{"other hive", AbsolutePath(`HKLM:z`), `HKLM:z`},
		{"sibling", AbsolutePath(`HKCU:s`), `HKCU:s`},
		{"same key", AtKey{Key: root}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, root.AddMember(c.NewKey(tt.loc)))
		})
	}
	assert.Equal(t, []string{`x\y`, `HKLM:z`, `HKCU:s`, ""}, root.MemberNames())

	name, m, ok := root.GetMemberByLocation(AbsolutePath(`HKCU:R\X\Y`))
	require.True(t, ok)
	assert.Equal(t, `x\y`, name)
	assert.Equal(t, `HKCU:r\x\y`, m.AbsPath())

	_, _, ok = root.GetMemberByLocation(AbsolutePath(`HKCU:r\nope`))
	assert.False(t, ok)

	removed, ok := root.RemoveMember(`HKLM:z`)
	require.True(t, ok)
	assert.Equal(t, `HKLM:z`, removed.AbsPath())
	assert.Equal(t, []string{`x\y`, `HKCU:s`, ""}, root.MemberNames())
	_, ok = root.RemoveMember(`HKLM:z`)
	assert.False(t, ok)
}

func TestKeyMembers_Unresolvable(t *testing.T) {
	c, _ := newTestClient(t, nil)
	root := c.NewKey(AbsolutePath(`HKCU:r`))

	assert.Equal(t, "nowhere", root.AddMember(c.NewKey(AbsolutePath("nowhere"))))
	assert.Equal(t, `shell\has space`, root.AddMember(c.NewKey(RelativeToKey{Key: root, Path: `shell\has space`})))
	assert.Equal(t, `shell\odd:verb`, root.AddMember(c.NewKey(RelativeToKey{Key: root, Path: `shell\odd:verb`})))
	assert.Equal(t, []string{"nowhere", `shell\has space`, `shell\odd:verb`}, root.MemberNames())

	mustCreate(t, c, `HKCU:r`)
	_, err := root.Save(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidPath)
	for _, s := range []string{"nowhere", "has space", "odd:verb"} {
		assert.Contains(t, err.Error(), s)
	}
}

func TestKeyMembers_LongNames(t *testing.T) {
	c, _ := newTestClient(t, &Options{NameForm: types.LongNames})
	root := c.NewKey(AbsolutePath(`HKCU:r`))
	assert.Equal(t, `HKEY_LOCAL_MACHINE\z`, root.AddMember(c.NewKey(AbsolutePath(`HKLM:z`))))
	assert.Equal(t, `HKEY_CURRENT_USER\r`, root.String())
}

func TestKeyValues(t *testing.T) {
	c, _ := newTestClient(t, nil)
	k := c.NewKey(HiveRoot(types.HKCU))

	k.AddValue("a", types.DWordValue(1))
	values := k.Values()
	values["b"] = types.DWordValue(2)
	_, ok := k.GetValue("b")
	assert.False(t, ok, "Values returns a copy")

	v, ok := k.RemoveValue("a")
	require.True(t, ok)
	n, err := v.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)
	_, ok = k.RemoveValue("a")
	assert.False(t, ok)

	bad := c.NewKey(AbsolutePath("nowhere"))
	assert.Empty(t, bad.AbsPath())
	assert.Empty(t, bad.RelPath())
	assert.Equal(t, types.Hive(0), bad.Hive())
}
