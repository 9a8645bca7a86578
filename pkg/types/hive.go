package types

import "fmt"

// Hive identifies one of the fixed top-level roots of the registry.
type Hive int

const (
	HKLM Hive = iota + 1 // HKEY_LOCAL_MACHINE
	HKCU                 // HKEY_CURRENT_USER
	HKCR                 // HKEY_CLASSES_ROOT
	HKU                  // HKEY_USERS
	HKPD                 // HKEY_PERFORMANCE_DATA
	HKCC                 // HKEY_CURRENT_CONFIG
	HKDD                 // HKEY_DYN_DATA, unused after Windows 98
)

// NameForm selects how a hive is spelled in an absolute path.
type NameForm int

const (
	// ShortNames renders "HKLM:relative\path" and "HKLM:" for the root.
	ShortNames NameForm = iota
	// LongNames renders "HKEY_LOCAL_MACHINE\relative\path" and
	// "HKEY_LOCAL_MACHINE" for the root.
	LongNames
)

var hiveNames = map[Hive][2]string{
	HKLM: {"HKLM", "HKEY_LOCAL_MACHINE"},
	HKCU: {"HKCU", "HKEY_CURRENT_USER"},
	HKCR: {"HKCR", "HKEY_CLASSES_ROOT"},
	HKU:  {"HKU", "HKEY_USERS"},
	HKPD: {"HKPD", "HKEY_PERFORMANCE_DATA"},
	HKCC: {"HKCC", "HKEY_CURRENT_CONFIG"},
	HKDD: {"HKDD", "HKEY_DYN_DATA"},
}

var (
	hivesByShort = make(map[string]Hive, len(hiveNames))
	hivesByLong  = make(map[string]Hive, len(hiveNames))
)

func init() {
	for h, names := range hiveNames {
		hivesByShort[names[0]] = h
		hivesByLong[names[1]] = h
	}
}

// Hives lists every known hive in declaration order.
func Hives() []Hive {
	return []Hive{HKLM, HKCU, HKCR, HKU, HKPD, HKCC, HKDD}
}

// Valid reports whether h is one of the known hives.
func (h Hive) Valid() bool {
	_, ok := hiveNames[h]
	return ok
}

// ShortName returns "HKLM", "HKCU", ... or "" for an unknown hive.
func (h Hive) ShortName() string { return hiveNames[h][0] }

// LongName returns "HKEY_LOCAL_MACHINE", ... or "" for an unknown hive.
func (h Hive) LongName() string { return hiveNames[h][1] }

// Name returns the hive spelled in the requested form.
func (h Hive) Name(form NameForm) string {
	if form == LongNames {
		return h.LongName()
	}
	return h.ShortName()
}

func (h Hive) String() string {
	if !h.Valid() {
		return fmt.Sprintf("Hive(%d)", int(h))
	}
	return h.ShortName()
}

// HiveByShortName resolves an exact short name ("HKCU").
func HiveByShortName(name string) (Hive, bool) {
	h, ok := hivesByShort[name]
	return h, ok
}

// HiveByLongName resolves an exact long name ("HKEY_CURRENT_USER").
func HiveByLongName(name string) (Hive, bool) {
	h, ok := hivesByLong[name]
	return h, ok
}

// ParseHive accepts either name form; the match is case-sensitive.
func ParseHive(name string) (Hive, bool) {
	if h, ok := hivesByShort[name]; ok {
		return h, true
	}
	return HiveByLongName(name)
}
