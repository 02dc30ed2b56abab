package main

import "github.com/RishiKendai/aegis-text/internal/cli"

func main() {
	cli.Execute()
}
