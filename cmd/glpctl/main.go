package main

import "github.com/andrescamacho/glp-fleet-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
