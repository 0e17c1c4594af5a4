package main

import (
	"github.com/dyike/EquilibriumGo/internal/cli"
)

func main() {
	cli.Run()
}
