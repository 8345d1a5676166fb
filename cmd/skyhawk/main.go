package main

import "github.com/tgienger/skyhawk/cmd/skyhawk/root"

func main() {
	root.Execute()
}
