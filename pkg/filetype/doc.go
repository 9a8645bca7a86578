// Package filetype reads and writes file-type associations, the registry
// data that tells the shell which program opens a file extension.
//
// An extension can be associated in three layers, lowest priority first:
//
//   - SystemDefault: HKLM:SOFTWARE\Classes\<ext>, machine-wide
//   - UserDefault: HKCU:Software\Classes\<ext>, per user
//   - UserChoice: the ProgId value of
//     HKCU:SOFTWARE\Microsoft\Windows\CurrentVersion\Explorer\FileExts\<ext>\UserChoice
//
// Lookup reads one layer, Layers reads all of them and Resolve merges them
// into the association in effect:
//
//	a := filetype.New(registry.New(winstore.New(), nil))
//	assoc, err := a.Resolve(".txt")
//	fmt.Println(assoc.ProgID, assoc.Verbs["open"])
package filetype
