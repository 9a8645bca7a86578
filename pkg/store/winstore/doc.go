// Package winstore implements store.Store on top of the native Windows
// registry through golang.org/x/sys/windows/registry.
//
// The package only builds on Windows. Values are read and written as raw
// bytes so that every registry type, including the ones the registry
// package has no setter for, round-trips unchanged.
package winstore
