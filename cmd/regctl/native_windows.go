//go:build windows

package main

import (
	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/store/winstore"
)

// nativeStore opens the live registry.
func nativeStore() (store.Store, error) {
	return winstore.New(), nil
}
