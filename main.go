package main

import "gortc.io/ipsetd/internal/cli"

func main() {
	cli.Execute()
}
