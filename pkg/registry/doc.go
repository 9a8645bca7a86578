// Package registry provides path-based operations on a registry store and
// an in-memory Key tree that can be populated from it and saved back.
//
// # Overview
//
// All operations hang off a Client, created over any store.Store:
//
//	c := registry.New(winstore.New(), nil)   // the live registry (Windows)
//	c := registry.New(memstore.New(), nil)   // an in-process tree
//
// Paths are absolute and may use either hive spelling; returned paths use
// the Client's NameForm:
//
//	c.CreateKey(`HKCU:Software\Vendor\App`)
//	c.CreateKey(`HKEY_CURRENT_USER/Software/Vendor/App`) // same key
//
// # Primitive operations
//
//   - CreateKey, DeleteKey: create with ancestors; delete a whole subtree
//     deepest first
//   - ListSubkeys, ListValues: enumerate
//   - LoadValue, LoadValues, SaveValue, SaveValues, DeleteValue,
//     DeleteAllValues: read and write values; a nil *types.Value deletes
//   - Apply, Import, Export: batches of types.EditOp and .reg files
//
// Every operation returns its result and an error. Errors are *types.Error
// values, so callers can branch with errors.Is(err, types.ErrNotFound) and
// friends. Invalid paths are rejected before the store is touched.
//
// # Failure policy
//
// Options.Debug replaces a process-wide verbosity switch:
//
//   - DebugSilent: failures are returned only
//   - DebugLog: failures are also logged through Options.Logger
//   - DebugStrict: as DebugLog, and multi-key walks stop at the first failure
//
// Walks never roll back. DeleteKey, Apply and the Key operations return what
// they completed next to an error of kind types.ErrKindPartial or a joined
// list of skipped failures.
//
// # Key tree
//
// A Key pairs a Location with tracked values and member keys:
//
//	root := c.NewKey(registry.AbsolutePath(`HKCU:Software\Vendor`))
//	_ = root.Populate(registry.DepthChildren)
//	app := c.NewKey(registry.RelativeToKey{Key: root, Path: "App"})
//	root.AddMember(app) // tracked as "App"
//	app.AddValue("Enabled", types.DWordValue(1))
//	modified, err := root.Save(true)
//
// NewKey also takes options for initial values, members and population;
// OpenKey populates and returns the error:
//
//	root, err := c.OpenKey(registry.AbsolutePath(`HKCU:Software\Vendor`), registry.DepthChildren,
//	    registry.WithValues(types.ValueMap{"Enabled": types.DWordValue(1)}))
//
// Locations are resolved every time they are used, so a key located
// relative to another follows it when it moves.
package registry
