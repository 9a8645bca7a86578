package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/store/memstore"
	"github.com/joshuapare/regkit/pkg/types"
)

// faultyStore refuses to open the listed keys ("HKCU:a\b" style, any case).
type faultyStore struct {
	store.Store
	failOpen map[string]bool
}

func newFaultyStore(inner store.Store, paths ...string) *faultyStore {
	f := &faultyStore{Store: inner, failOpen: make(map[string]bool)}
	for _, p := range paths {
		f.failOpen[strings.ToLower(p)] = true
	}
	return f
}

func (f *faultyStore) OpenKey(hive types.Hive, path string, access store.Access) (store.Handle, error) {
	if f.failOpen[strings.ToLower(hive.ShortName()+":"+path)] {
		return nil, store.ErrAccessDenied
	}
	return f.Store.OpenKey(hive, path, access)
}

func newTestClient(t *testing.T, opts *Options) (*Client, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	return New(s, opts), s
}

func mustCreate(t *testing.T, c *Client, paths ...string) {
	t.Helper()
	for _, p := range paths {
		_, err := c.CreateKey(p)
		require.NoError(t, err, p)
	}
}

func mustSave(t *testing.T, c *Client, path, name string, v *types.Value) {
	t.Helper()
	_, err := c.SaveValue(path, name, v)
	require.NoError(t, err, path)
}
