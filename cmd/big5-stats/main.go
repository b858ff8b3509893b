package main

import "github.com/pfrederiksen/big5-stats/internal/cli"

func main() {
	cli.Execute()
}
