package main

import "github.com/BukiOffor/concordium-dapp-examples/internal/cli"

func main() {
	cli.Execute()
}
