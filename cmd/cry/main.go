package main

import "crystalline/cmd/cry/root"

func main() {
	root.Execute()
}
