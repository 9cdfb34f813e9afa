package main

import "github.com/mvp-joe/drift/internal/cli"

func main() {
	cli.Execute()
}
