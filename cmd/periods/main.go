// Command periods resolves fiscal years and lists selectable fiscal periods
// from the terminal.
package main

func main() {
	Execute()
}
