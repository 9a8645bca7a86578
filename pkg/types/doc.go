// Package types defines the vocabulary shared by every regkit package:
// registry hives and their two name forms, value type tags, typed values,
// typed errors, store limits and edit operations.
//
// Errors carry a stable ErrKind so callers can branch on intent rather
// than text:
//
//	if errors.Is(err, types.ErrNotFound) { ... }
//
// Values keep the raw bytes a registry returns. Strings are NUL-terminated
// UTF-16LE; use the constructors (StringValue, DWordValue, ...) and the
// accessors (Text, Strings, Uint32, Uint64) instead of encoding by hand.
package types
