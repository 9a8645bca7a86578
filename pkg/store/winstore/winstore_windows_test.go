//go:build windows

package winstore

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/types"
)

func scratchKey(t *testing.T) string {
	t.Helper()
	path := `Software\regkit-test-` + uuid.NewString()
	t.Cleanup(func() {
		s := New()
		_ = s.DeleteKey(types.HKCU, path+`\child`)
		_ = s.DeleteKey(types.HKCU, path)
	})
	return path
}

func TestRoundTripValues(t *testing.T) {
	s := New()
	path := scratchKey(t)

	h, existed, err := s.CreateKey(types.HKCU, path, store.AccessReadWrite)
	require.NoError(t, err)
	defer h.Close()
	assert.False(t, existed)

	values := map[string]*types.Value{
		"":       types.StringValue("default"),
		"expand": types.ExpandStringValue(`%TEMP%\x`),
		"multi":  types.MultiStringValue("a", "b"),
		"dword":  types.DWordValue(42),
		"be":     types.DWordBEValue(42),
		"qword":  types.QWordValue(1 << 40),
		"bin":    types.BinaryValue([]byte{1, 2, 3}),
		"none":   types.NoneValue(),
	}
	for name, v := range values {
		require.NoError(t, h.SetValue(name, v), name)
	}

	for name, want := range values {
		got, err := h.GetValue(name)
		require.NoError(t, err, name)
		assert.True(t, want.Equal(got), "%s: got %s want %s", name, got, want)
	}

	names, err := h.ReadValueNames()
	require.NoError(t, err)
	assert.Len(t, names, len(values))

	require.NoError(t, h.DeleteValue("dword"))
	_, err = h.GetValue("dword")
	assert.True(t, errors.Is(err, store.ErrNotExist))
}

func TestDeleteKeyWithSubkeys(t *testing.T) {
	s := New()
	path := scratchKey(t)

	h, _, err := s.CreateKey(types.HKCU, path+`\child`, store.AccessWrite)
	require.NoError(t, err)
	h.Close()

	assert.True(t, errors.Is(s.DeleteKey(types.HKCU, path), store.ErrHasSubkeys))
	require.NoError(t, s.DeleteKey(types.HKCU, path+`\child`))
	require.NoError(t, s.DeleteKey(types.HKCU, path))

	_, err = s.OpenKey(types.HKCU, path, store.AccessRead)
	assert.True(t, errors.Is(err, store.ErrNotExist))
}
