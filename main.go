package main

import (
	"github.com/landsim/landsim/cmd"
)

func main() {
	cmd.Execute()
}
