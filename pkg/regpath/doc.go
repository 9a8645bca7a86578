// Package regpath parses, validates and normalizes registry paths.
//
// Two spellings of an absolute path are accepted:
//
//	HKLM:SOFTWARE\Vendor\App                (short hive name, colon)
//	HKEY_LOCAL_MACHINE\SOFTWARE\Vendor\App  (long hive name, backslash)
//
// Forward slashes are treated as backslashes, padding is trimmed and "."
// and ".." segments are resolved before validation. Every path that reaches
// a store has been through SplitAbsPath or JoinAbsPath, so callers further
// down never deal with separator style, hive spelling or relative segments.
//
// A relative part containing a space or a colon is rejected, as is one that
// climbs above its hive.
package regpath
