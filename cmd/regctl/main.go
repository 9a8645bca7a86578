// Command regctl lists, reads and edits the Windows registry, or a .reg
// file standing in for it.
package main

func main() {
	execute()
}
