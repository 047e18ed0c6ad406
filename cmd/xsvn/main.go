package main

import "github.com/emiliopalmerini/xsvn/internal/cli"

func main() {
	cli.Execute()
}
