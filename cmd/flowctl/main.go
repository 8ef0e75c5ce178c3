package main

import "flow-ai/chatcore/internal/cli"

func main() {
	cli.Execute()
}
