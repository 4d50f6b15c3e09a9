package main

import "github.com/mselser95/nft-market/cmd"

func main() {
	cmd.Execute()
}
