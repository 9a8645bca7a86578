// Package memstore is an in-process store.Store.
//
// It behaves like the registry where it matters to callers: key and value
// names are case-insensitive but case-preserving, subkeys enumerate in
// case-insensitive order, only childless keys can be deleted, hive roots
// always exist and cannot be deleted, and writes are checked against
// types.Limits. Handles to a deleted key go stale and fail with
// store.ErrNotExist.
//
// Deny marks a key as protected so tests can exercise access failures.
package memstore

import (
	"sort"
	"strings"
	"sync"

	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/types"
)

type valueEntry struct {
	name  string
	value *types.Value
}

type node struct {
	name     string
	parent   *node
	children map[string]*node // keyed by lowercase name
	values   map[string]*valueEntry
	denied   bool
	detached bool
}

func newNode(name string, parent *node) *node {
	return &node{
		name:     name,
		parent:   parent,
		children: make(map[string]*node),
		values:   make(map[string]*valueEntry),
	}
}

// Stats contains counts over the whole store.
type Stats struct {
	Keys   int // keys below the hive roots
	Values int
	Bytes  int // total value data
}

// Option configures a Store.
type Option func(*Store)

// WithLimits enforces l on every write instead of types.DefaultLimits.
func WithLimits(l types.Limits) Option {
	return func(s *Store) { s.limits = l }
}

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	roots  map[types.Hive]*node
	limits types.Limits
}

var _ store.Store = (*Store)(nil)

// New creates an empty store with every hive root present.
func New(opts ...Option) *Store {
	s := &Store{
		roots:  make(map[types.Hive]*node),
		limits: types.DefaultLimits(),
	}
	for _, h := range types.Hives() {
		s.roots[h] = newNode(h.LongName(), nil)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenKey opens an existing key.
func (s *Store) OpenKey(hive types.Hive, path string, access store.Access) (store.Handle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.lookup(hive, path)
	if err != nil {
		return nil, err
	}
	if access&store.AccessWrite != 0 && n.denied {
		return nil, store.ErrAccessDenied
	}
	return &handle{store: s, node: n, access: access}, nil
}

// CreateKey opens a key, creating missing ancestors on the way.
func (s *Store) CreateKey(hive types.Hive, path string, access store.Access) (store.Handle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.roots[hive]
	if !ok {
		return nil, false, store.ErrNotExist
	}
	segs := split(path)
	if err := s.limits.CheckDepth(len(segs)); err != nil {
		return nil, false, err
	}

	existed := true
	for _, seg := range segs {
		child, ok := n.children[strings.ToLower(seg)]
		if !ok {
			if n.denied {
				return nil, false, store.ErrAccessDenied
			}
			if err := s.limits.CheckKeyName(seg); err != nil {
				return nil, false, err
			}
			if err := s.limits.CheckSubkeys(len(n.children) + 1); err != nil {
				return nil, false, err
			}
			child = newNode(seg, n)
			n.children[strings.ToLower(seg)] = child
			existed = false
		}
		n = child
	}
	if access&store.AccessWrite != 0 && n.denied {
		return nil, existed, store.ErrAccessDenied
	}
	return &handle{store: s, node: n, access: access}, existed, nil
}

// DeleteKey removes a childless key.
func (s *Store) DeleteKey(hive types.Hive, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.lookup(hive, path)
	if err != nil {
		return err
	}
	if n.parent == nil || n.denied {
		return store.ErrAccessDenied
	}
	if len(n.children) > 0 {
		return store.ErrHasSubkeys
	}
	delete(n.parent.children, strings.ToLower(n.name))
	n.detached = true
	return nil
}

// Deny protects a key: it can still be read, but not written, deleted or
// given new subkeys. The key must exist.
func (s *Store) Deny(hive types.Hive, path string) error {
	return s.setDenied(hive, path, true)
}

// Allow lifts a Deny.
func (s *Store) Allow(hive types.Hive, path string) error {
	return s.setDenied(hive, path, false)
}

func (s *Store) setDenied(hive types.Hive, path string, denied bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.lookup(hive, path)
	if err != nil {
		return err
	}
	n.denied = denied
	return nil
}

// Stats returns counts over every hive.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	var walk func(n *node)
	walk = func(n *node) {
		for _, v := range n.values {
			st.Values++
			st.Bytes += len(v.value.Data)
		}
		for _, c := range n.children {
			st.Keys++
			walk(c)
		}
	}
	for _, root := range s.roots {
		walk(root)
	}
	return st
}

// lookup must be called with s.mu held.
func (s *Store) lookup(hive types.Hive, path string) (*node, error) {
	n, ok := s.roots[hive]
	if !ok {
		return nil, store.ErrNotExist
	}
	for _, seg := range split(path) {
		child, ok := n.children[strings.ToLower(seg)]
		if !ok {
			return nil, store.ErrNotExist
		}
		n = child
	}
	return n, nil
}

func split(path string) []string {
	var segs []string
	for _, seg := range strings.Split(path, `\`) {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

type handle struct {
	store  *Store
	node   *node
	access store.Access
	closed bool
}

// check must be called with the store lock held.
func (h *handle) check(need store.Access) error {
	if h.closed || h.node.detached {
		return store.ErrNotExist
	}
	if h.access&need == 0 {
		return store.ErrAccessDenied
	}
	if need&store.AccessWrite != 0 && h.node.denied {
		return store.ErrAccessDenied
	}
	return nil
}

func (h *handle) ReadSubKeyNames() ([]string, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	if err := h.check(store.AccessRead); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(h.node.children))
	for _, c := range h.node.children {
		names = append(names, c.name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}

func (h *handle) ReadValueNames() ([]string, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	if err := h.check(store.AccessRead); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(h.node.values))
	for _, v := range h.node.values {
		names = append(names, v.name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}

func (h *handle) GetValue(name string) (*types.Value, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	if err := h.check(store.AccessRead); err != nil {
		return nil, err
	}
	v, ok := h.node.values[strings.ToLower(name)]
	if !ok {
		return nil, store.ErrNotExist
	}
	return v.value.Clone(), nil
}

func (h *handle) SetValue(name string, v *types.Value) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if err := h.check(store.AccessWrite); err != nil {
		return err
	}
	if v == nil {
		return types.Errorf(types.ErrKindType, nil, "nil value for %q", name)
	}
	key := strings.ToLower(name)
	count := len(h.node.values)
	existing, ok := h.node.values[key]
	if !ok {
		count++
	}
	if err := h.store.limits.CheckValue(name, v, count); err != nil {
		return err
	}
	if ok {
		existing.value = v.Clone()
		return nil
	}
	h.node.values[key] = &valueEntry{name: name, value: v.Clone()}
	return nil
}

func (h *handle) DeleteValue(name string) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if err := h.check(store.AccessWrite); err != nil {
		return err
	}
	key := strings.ToLower(name)
	if _, ok := h.node.values[key]; !ok {
		return store.ErrNotExist
	}
	delete(h.node.values, key)
	return nil
}

func (h *handle) Close() error {
	h.closed = true
	return nil
}
