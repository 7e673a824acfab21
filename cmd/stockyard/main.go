package main

import "github.com/aalvaropc/stockyard/internal/cli"

func main() {
	cli.Execute()
}
