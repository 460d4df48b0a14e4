package main

import "github.com/agentic-research/seedstamp/cmd"

func main() {
	cmd.Execute()
}
