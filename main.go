package main

import (
	"github.com/jjtimmons/tpfasta/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
