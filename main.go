package main

import "github.com/embeval/facedim/cmd"

func main() {
	cmd.Execute()
}
