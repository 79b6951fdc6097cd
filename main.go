package main

import "manimwatch/internal/cli"

func main() {
	cli.Execute()
}
