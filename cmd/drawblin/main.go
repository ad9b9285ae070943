package main

import (
	"github.com/drawblin/drawblin/internal/cli"
)

func main() {
	cli.Execute()
}
