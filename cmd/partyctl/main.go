package main

import "github.com/partyroom/partyroom/internal/cli"

func main() {
	cli.Execute()
}
