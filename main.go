package main

import "idlectl/cli"

func main() {
	cli.Execute()
}
