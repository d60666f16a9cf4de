package main

import "github.com/pfrederiksen/dance-events/internal/cli"

func main() {
	cli.Execute()
}
