package main

import "github.com/notargets/meshstore/cmd"

func main() {
	cmd.Execute()
}
