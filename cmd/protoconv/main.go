package main

import (
	"github.com/pentops/protoconv/internal/cli"
)

func main() {
	cmdGroup := cli.CommandSet()
	cmdGroup.RunMain("protoconv", cli.Version)
}
