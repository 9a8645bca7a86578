//go:build !windows

package main

import (
	"errors"

	"github.com/joshuapare/regkit/pkg/store"
)

var errNoNativeRegistry = errors.New("the live registry is only available on Windows; use --file to work on a .reg file")

func nativeStore() (store.Store, error) {
	return nil, errNoNativeRegistry
}
