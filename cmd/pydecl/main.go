package main

import "github.com/mvp-joe/pydecl/internal/cli"

func main() {
	cli.Execute()
}
