package main

import "github.com/Alexsimulation/fvhyper/cmd"

func main() {
	cmd.Execute()
}
