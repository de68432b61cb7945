package main

import (
	cmd "github.com/veriscan-ai/veriscan/cmd/veriscan"
)

func main() {
	cmd.Execute()
}
