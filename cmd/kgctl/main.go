package main

import (
	"github.com/kingsgambit/kingsgambit-go/internal/cli"
)

func main() {
	cli.Execute()
}
